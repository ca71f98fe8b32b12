package service

import (
	"context"
	"time"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/database"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/modules/activity/entity"
	"go-musician-booking/modules/activity/repository"

	"github.com/google/uuid"
)

type ActivityService struct {
	repo repository.ActivityRepository
	tx   database.Transactor
}

func NewActivityService(repo repository.ActivityRepository, tx database.Transactor) *ActivityService {
	return &ActivityService{repo: repo, tx: tx}
}

// Record appends an audit entry. A failed append is logged and never fails
// the caller's mutation: inside a transaction the insert runs in its own
// savepoint so a rejected row leaves the outer transaction usable.
func (s *ActivityService) Record(ctx context.Context, a *entity.Activity) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	err := s.tx.Savepoint(ctx, func(ctx context.Context) error {
		return s.repo.Append(ctx, a)
	})
	if err != nil {
		logger.Error("ActivityService:Record:Error",
			"entity_type", a.EntityType,
			"entity_id", a.EntityID,
			"action", a.Action,
			"error", err,
		)
	}
}

func (s *ActivityService) List(ctx context.Context, entityType string, entityID uuid.UUID) ([]entity.Activity, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	items, err := s.repo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list activity", err)
	}
	return items, nil
}
