package service

import (
	"context"
	"time"

	coreEntity "go-musician-booking/core/entity"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/params"
	"go-musician-booking/modules/notification/dto"
	"go-musician-booking/modules/notification/entity"
	"go-musician-booking/modules/notification/repository"

	"github.com/google/uuid"
)

// NotificationService owns the staff inbox.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	if req.UserID == uuid.Nil {
		return errors.NewAppError(errors.ErrInvalidInput, "user_id is required", nil)
	}
	now := time.Now()
	n := &entity.Notification{
		BaseEntity: coreEntity.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:     req.UserID,
		Type:       req.Type,
		Title:      req.Title,
		Message:    req.Message,
		Data:       entity.Payload(req.Data),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return errors.NewAppError(errors.ErrCreateFailed, "failed to create notification", err)
	}
	logger.Info("NotificationService:Create:Success", "user_id", req.UserID, "type", req.Type)
	return nil
}

func (s *NotificationService) Inbox(ctx context.Context, userID uuid.UUID, filter entity.InboxFilter, page params.QueryParams) (*entity.Inbox, error) {
	inbox, err := s.repo.ListInbox(ctx, userID, filter, page)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list notifications", err)
	}
	return inbox, nil
}

// MarkAsRead flags ids as read. An empty ids marks the whole inbox.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAsRead(ctx, userID, ids)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrUpdateFailed, "failed to mark notifications as read", err)
	}
	return updated, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "failed to count unread notifications", err)
	}
	return count, nil
}
