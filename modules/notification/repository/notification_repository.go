package repository

import (
	"context"
	"fmt"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/params"
	"go-musician-booking/modules/notification/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListInbox(ctx context.Context, userID uuid.UUID, filter entity.InboxFilter, page params.QueryParams) (*entity.Inbox, error)
	// MarkAsRead flags the given ids, or every unread item when ids is empty,
	// and returns how many rows changed.
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

type notificationRepository struct {
	db *database.Database
}

func NewNotificationRepository(db *database.Database) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, data, is_read, created_at, updated_at)
		VALUES (:id, :user_id, :type, :title, :message, :data, :is_read, :created_at, :updated_at)`, n)
	if err != nil {
		logger.Error("NotificationRepository:Create:Error:", err)
	}
	return err
}

func (r *notificationRepository) ListInbox(ctx context.Context, userID uuid.UUID, filter entity.InboxFilter, page params.QueryParams) (*entity.Inbox, error) {
	where := "user_id = $1"
	args := []any{userID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.UnreadOnly {
		where += " AND is_read = false"
	}

	inbox := &entity.Inbox{PageNumber: page.PageNumber, PageSize: page.PageSize}
	if err := r.db.GetContext(ctx, &inbox.TotalItems, "SELECT COUNT(*) FROM notifications WHERE "+where, args...); err != nil {
		logger.Error("NotificationRepository:ListInbox:Count:Error:", err)
		return nil, err
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT id, user_id, type, title, message, data, is_read, created_at, updated_at
		FROM notifications WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, n+1, n+2)
	args = append(args, page.PageSize, (page.PageNumber-1)*page.PageSize)
	if err := r.db.SelectContext(ctx, &inbox.Items, query, args...); err != nil {
		logger.Error("NotificationRepository:ListInbox:Select:Error:", err)
		return nil, err
	}
	return inbox, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET is_read = true, updated_at = NOW() WHERE user_id = ? AND is_read = false`
	args := []any{userID}
	if len(ids) > 0 {
		var err error
		query, args, err = sqlx.In(query+` AND id IN (?)`, userID, ids)
		if err != nil {
			return 0, err
		}
	}

	res, err := r.db.ExecResultContext(ctx, r.db.SQLx().Rebind(query), args...)
	if err != nil {
		logger.Error("NotificationRepository:MarkAsRead:Error:", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		logger.Error("NotificationRepository:CountUnread:Error:", err)
	}
	return count, err
}
