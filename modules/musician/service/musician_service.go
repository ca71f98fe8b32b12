package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go-musician-booking/core/constants"
	coreEntity "go-musician-booking/core/entity"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/params"
	"go-musician-booking/modules/musician/dto"
	"go-musician-booking/modules/musician/entity"
	"go-musician-booking/modules/musician/repository"

	"github.com/google/uuid"
)

type MusicianService struct {
	repo repository.MusicianRepository
}

func NewMusicianService(repo repository.MusicianRepository) *MusicianService {
	return &MusicianService{repo: repo}
}

func (s *MusicianService) Create(ctx context.Context, req *dto.CreateMusicianRequest) (*entity.Musician, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "name is required", nil)
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid email", err)
		}
	}

	now := time.Now()
	m := &entity.Musician{
		Name:       name,
		Email:      req.Email,
		Phone:      req.Phone,
		BaseEntity: coreEntity.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create musician", err)
	}
	logger.Info("MusicianService:Create:Success", "musician_id", m.ID)
	return m, nil
}

// GetByID returns NotFound when the musician does not exist.
func (s *MusicianService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Musician, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get musician", err)
	}
	if m == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "musician not found", nil)
	}
	return m, nil
}

func (s *MusicianService) List(ctx context.Context, p params.QueryParams) (*entity.PaginatedMusicianEntity, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	result, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list musicians", err)
	}
	return result, nil
}

func (s *MusicianService) SetPayRate(ctx context.Context, musicianID uuid.UUID, req *dto.PayRateRequest) (*entity.PayRate, error) {
	if req.CategoryID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "category_id is required", nil)
	}
	for _, v := range []*int64{req.HourlyRate, req.DayRate, req.EventRate} {
		if v != nil && *v < 0 {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "rates must not be negative", nil)
		}
	}
	if _, err := s.GetByID(ctx, musicianID); err != nil {
		return nil, err
	}

	now := time.Now()
	rate := &entity.PayRate{
		MusicianID: musicianID,
		CategoryID: req.CategoryID,
		HourlyRate: req.HourlyRate,
		DayRate:    req.DayRate,
		EventRate:  req.EventRate,
		BaseEntity: coreEntity.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
	}
	if err := s.repo.UpsertPayRate(ctx, rate); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to save pay rate", err)
	}
	return rate, nil
}

func (s *MusicianService) GetPayRate(ctx context.Context, musicianID, categoryID uuid.UUID) (*entity.PayRate, error) {
	return s.repo.GetPayRate(ctx, musicianID, categoryID)
}
