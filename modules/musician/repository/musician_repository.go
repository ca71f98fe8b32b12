package repository

import (
	"context"
	"database/sql"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/params"
	"go-musician-booking/modules/musician/entity"

	"github.com/google/uuid"
)

type MusicianRepository interface {
	Create(ctx context.Context, m *entity.Musician) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Musician, error)
	List(ctx context.Context, params params.QueryParams) (*entity.PaginatedMusicianEntity, error)
	UpsertPayRate(ctx context.Context, rate *entity.PayRate) error
	GetPayRate(ctx context.Context, musicianID, categoryID uuid.UUID) (*entity.PayRate, error)
}

type musicianRepository struct {
	db *database.Database
}

func NewMusicianRepository(db *database.Database) MusicianRepository {
	return &musicianRepository{db: db}
}

func (r *musicianRepository) Create(ctx context.Context, m *entity.Musician) error {
	query := `
		INSERT INTO musicians (id, name, email, phone, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		logger.Error("MusicianRepository:Create:Error:", err)
		return err
	}
	return nil
}

func (r *musicianRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Musician, error) {
	var m entity.Musician
	err := r.db.GetContext(ctx, &m, `SELECT id, name, email, phone, created_at, updated_at FROM musicians WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("MusicianRepository:GetByID:Error:", err)
		return nil, err
	}
	return &m, nil
}

func (r *musicianRepository) List(ctx context.Context, params params.QueryParams) (*entity.PaginatedMusicianEntity, error) {
	offset := (params.PageNumber - 1) * params.PageSize
	baseQuery := `FROM musicians WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var totalItems int
	if err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, params.Search); err != nil {
		logger.Error("MusicianRepository:List:Count:Error:", err)
		return nil, err
	}

	query := `SELECT id, name, email, phone, created_at, updated_at ` + baseQuery + ` ORDER BY name LIMIT $2 OFFSET $3`
	var items []entity.Musician
	if err := r.db.SelectContext(ctx, &items, query, params.Search, params.PageSize, offset); err != nil {
		logger.Error("MusicianRepository:List:Select:Error:", err)
		return nil, err
	}

	return &entity.PaginatedMusicianEntity{
		Items:      items,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *musicianRepository) UpsertPayRate(ctx context.Context, rate *entity.PayRate) error {
	query := `
		INSERT INTO pay_rates (id, musician_id, category_id, hourly_rate, day_rate, event_rate, created_at, updated_at)
		VALUES (:id, :musician_id, :category_id, :hourly_rate, :day_rate, :event_rate, :created_at, :updated_at)
		ON CONFLICT (musician_id, category_id)
		DO UPDATE SET hourly_rate = EXCLUDED.hourly_rate, day_rate = EXCLUDED.day_rate,
			event_rate = EXCLUDED.event_rate, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.NamedExecContext(ctx, query, rate); err != nil {
		logger.Error("MusicianRepository:UpsertPayRate:Error:", err)
		return err
	}
	return nil
}

func (r *musicianRepository) GetPayRate(ctx context.Context, musicianID, categoryID uuid.UUID) (*entity.PayRate, error) {
	query := `
		SELECT id, musician_id, category_id, hourly_rate, day_rate, event_rate, created_at, updated_at
		FROM pay_rates
		WHERE musician_id = $1 AND category_id = $2
	`
	var rate entity.PayRate
	err := r.db.GetContext(ctx, &rate, query, musicianID, categoryID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("MusicianRepository:GetPayRate:Error:", err)
		return nil, err
	}
	return &rate, nil
}
