package service

import (
	"context"
	"time"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/database"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	activityEntity "go-musician-booking/modules/activity/entity"
	"go-musician-booking/modules/availability/dto"
	"go-musician-booking/modules/availability/entity"
	"go-musician-booking/modules/availability/repository"

	"github.com/google/uuid"
)

type ActivityRecorder interface {
	Record(ctx context.Context, a *activityEntity.Activity)
}

// ClaimSource counts live commitments of a musician on a date, ignoring
// those that belong to exclude.
type ClaimSource interface {
	CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error)
}

type AvailabilityService struct {
	repo     repository.AvailabilityRepository
	tx       database.Transactor
	activity ActivityRecorder
	claims   []ClaimSource
}

func NewAvailabilityService(repo repository.AvailabilityRepository, tx database.Transactor, activity ActivityRecorder) *AvailabilityService {
	return &AvailabilityService{repo: repo, tx: tx, activity: activity}
}

// AddClaimSource registers a module whose commitments keep a date blocked.
func (s *AvailabilityService) AddClaimSource(c ClaimSource) {
	s.claims = append(s.claims, c)
}

// IsAvailable reports the ledger value for a date, true when no row exists.
func (s *AvailabilityService) IsAvailable(ctx context.Context, musicianID uuid.UUID, date time.Time) (bool, error) {
	a, err := s.repo.Get(ctx, musicianID, utils.DateOnly(date))
	if err != nil {
		return false, errors.NewAppError(errors.ErrGetFailed, "failed to read availability", err)
	}
	if a == nil {
		return true, nil
	}
	return a.IsAvailable, nil
}

// Set writes the ledger row and records who changed it. A date cannot be
// opened while a sent or signed commitment still holds it.
func (s *AvailabilityService) Set(ctx context.Context, musicianID uuid.UUID, date time.Time, available bool, note, actor string) error {
	if musicianID == uuid.Nil || date.IsZero() {
		return errors.NewAppError(errors.ErrInvalidInput, "musician and date are required", nil)
	}

	row := &entity.Availability{
		MusicianID:  musicianID,
		Date:        utils.DateOnly(date),
		IsAvailable: available,
		UpdatedAt:   time.Now(),
	}
	if note != "" {
		row.Note = &note
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Lock(ctx, musicianID, row.Date); err != nil {
			return errors.NewAppError(errors.ErrInternalServer, "failed to lock availability", err)
		}
		if available {
			claims, err := s.countClaims(ctx, musicianID, row.Date)
			if err != nil {
				return errors.NewAppError(errors.ErrGetFailed, "failed to check commitments", err)
			}
			if claims > 0 {
				return errors.NewAppError(errors.ErrInvalidState, "date is held by a sent or signed contract", nil)
			}
		}
		if err := s.repo.Upsert(ctx, row); err != nil {
			return errors.NewAppError(errors.ErrUpdateFailed, "failed to update availability", err)
		}

		s.activity.Record(ctx, &activityEntity.Activity{
			EntityType: activityEntity.EntityAvailability,
			EntityID:   musicianID,
			Action:     "availability.set",
			Actor:      actor,
			Detail: activityEntity.Detail{
				"date":         utils.FormatDate(row.Date),
				"is_available": available,
				"note":         note,
			},
		})
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("AvailabilityService:Set", "musician_id", musicianID, "date", utils.FormatDate(row.Date), "is_available", available)
	return nil
}

func (s *AvailabilityService) countClaims(ctx context.Context, musicianID uuid.UUID, date time.Time) (int, error) {
	total := 0
	for _, c := range s.claims {
		n, err := c.CountClaims(ctx, musicianID, date, uuid.Nil)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Range returns one entry per day in [from, to], filling absent days as available.
func (s *AvailabilityService) Range(ctx context.Context, musicianID uuid.UUID, from, to time.Time) ([]dto.DayAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	from, to = utils.DateOnly(from), utils.DateOnly(to)
	if to.Before(from) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "to must not be before from", nil)
	}
	if int(to.Sub(from).Hours()/24) >= constants.MaxAvailabilityRangeDays {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "range too large", nil)
	}

	rows, err := s.repo.ListRange(ctx, musicianID, from, to)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list availability", err)
	}

	byDate := make(map[string]entity.Availability, len(rows))
	for _, r := range rows {
		byDate[utils.FormatDate(r.Date)] = r
	}

	var out []dto.DayAvailability
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := utils.FormatDate(d)
		day := dto.DayAvailability{Date: key, IsAvailable: true}
		if r, ok := byDate[key]; ok {
			day.IsAvailable = r.IsAvailable
			day.Note = r.Note
			day.Explicit = true
		}
		out = append(out, day)
	}
	return out, nil
}
