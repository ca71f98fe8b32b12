package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	"go-musician-booking/modules/availability/entity"

	"github.com/google/uuid"
)

type AvailabilityRepository interface {
	// Get returns nil, nil when no row exists.
	Get(ctx context.Context, musicianID uuid.UUID, date time.Time) (*entity.Availability, error)
	Upsert(ctx context.Context, a *entity.Availability) error
	ListRange(ctx context.Context, musicianID uuid.UUID, from, to time.Time) ([]entity.Availability, error)
	// Lock serialises writers of one (musician, date) until the transaction ends.
	Lock(ctx context.Context, musicianID uuid.UUID, date time.Time) error
}

type availabilityRepository struct {
	db *database.Database
}

func NewAvailabilityRepository(db *database.Database) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) Get(ctx context.Context, musicianID uuid.UUID, date time.Time) (*entity.Availability, error) {
	query := `
		SELECT musician_id, date, is_available, note, updated_at
		FROM availability
		WHERE musician_id = $1 AND date = $2
	`
	var a entity.Availability
	err := r.db.GetContext(ctx, &a, query, musicianID, utils.FormatDate(date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("AvailabilityRepository:Get:Error:", err)
		return nil, err
	}
	a.Date = utils.DateOnly(a.Date)
	return &a, nil
}

func (r *availabilityRepository) Upsert(ctx context.Context, a *entity.Availability) error {
	query := `
		INSERT INTO availability (musician_id, date, is_available, note, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (musician_id, date)
		DO UPDATE SET is_available = EXCLUDED.is_available, note = EXCLUDED.note, updated_at = EXCLUDED.updated_at
	`
	err := r.db.ExecContext(ctx, query, a.MusicianID, utils.FormatDate(a.Date), a.IsAvailable, a.Note, a.UpdatedAt)
	if err != nil {
		logger.Error("AvailabilityRepository:Upsert:Error:", err)
		return err
	}
	return nil
}

func (r *availabilityRepository) ListRange(ctx context.Context, musicianID uuid.UUID, from, to time.Time) ([]entity.Availability, error) {
	query := `
		SELECT musician_id, date, is_available, note, updated_at
		FROM availability
		WHERE musician_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`
	var items []entity.Availability
	if err := r.db.SelectContext(ctx, &items, query, musicianID, utils.FormatDate(from), utils.FormatDate(to)); err != nil {
		logger.Error("AvailabilityRepository:ListRange:Error:", err)
		return nil, err
	}
	for i := range items {
		items[i].Date = utils.DateOnly(items[i].Date)
	}
	return items, nil
}

func (r *availabilityRepository) Lock(ctx context.Context, musicianID uuid.UUID, date time.Time) error {
	key := fmt.Sprintf("availability:%s:%s", musicianID, utils.FormatDate(date))
	if err := r.db.AdvisoryXactLock(ctx, key); err != nil {
		logger.Error("AvailabilityRepository:Lock:Error:", err)
		return err
	}
	return nil
}
