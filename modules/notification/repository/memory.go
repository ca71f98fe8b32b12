package repository

import (
	"context"
	"slices"
	"sync"

	coreEntity "go-musician-booking/core/entity"
	"go-musician-booking/core/params"
	"go-musician-booking/modules/notification/entity"

	"github.com/google/uuid"
)

type memoryNotificationRepository struct {
	mu    sync.Mutex
	items []entity.Notification
}

func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepository{}
}

func (r *memoryNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *n)
	return nil
}

func (r *memoryNotificationRepository) ListInbox(ctx context.Context, userID uuid.UUID, filter entity.InboxFilter, page params.QueryParams) (*entity.Inbox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Notification
	for _, n := range r.items {
		if n.UserID == userID && filter.Match(n) {
			out = append(out, n)
		}
	}
	slices.SortStableFunc(out, func(a, b entity.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return coreEntity.Paginate(out, page.PageNumber, page.PageSize), nil
}

func (r *memoryNotificationRepository) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for i := range r.items {
		n := &r.items[i]
		if n.UserID != userID || n.IsRead {
			continue
		}
		if len(ids) > 0 && !slices.Contains(ids, n.ID) {
			continue
		}
		n.IsRead = true
		updated++
	}
	return updated, nil
}

func (r *memoryNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
