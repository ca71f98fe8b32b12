package repository

import (
	"context"
	"sort"
	"sync"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/modules/activity/entity"

	"github.com/google/uuid"
)

type ActivityRepository interface {
	Append(ctx context.Context, a *entity.Activity) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]entity.Activity, error)
}

type activityRepository struct {
	db *database.Database
}

func NewActivityRepository(db *database.Database) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(ctx context.Context, a *entity.Activity) error {
	query := `
		INSERT INTO activities (id, entity_type, entity_id, action, actor, detail, created_at)
		VALUES (:id, :entity_type, :entity_id, :action, :actor, :detail, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		logger.Error("ActivityRepository:Append:Error:", err)
		return err
	}
	return nil
}

func (r *activityRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]entity.Activity, error) {
	query := `
		SELECT id, entity_type, entity_id, action, actor, detail, created_at
		FROM activities
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at
	`
	var items []entity.Activity
	if err := r.db.SelectContext(ctx, &items, query, entityType, entityID); err != nil {
		logger.Error("ActivityRepository:ListByEntity:Error:", err)
		return nil, err
	}
	return items, nil
}

type memoryActivityRepository struct {
	mu    sync.Mutex
	items []entity.Activity
}

func NewMemoryActivityRepository() ActivityRepository {
	return &memoryActivityRepository{}
}

func (r *memoryActivityRepository) Append(ctx context.Context, a *entity.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *a)
	return nil
}

func (r *memoryActivityRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Activity
	for _, a := range r.items {
		if a.EntityType == entityType && a.EntityID == entityID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
