package service

import (
	"context"
	"encoding/json"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/saga"
	"go-musician-booking/core/telemetry"
	"go-musician-booking/core/utils"
	activityEntity "go-musician-booking/modules/activity/entity"
	availabilityEntity "go-musician-booking/modules/availability/entity"
	availabilityRepo "go-musician-booking/modules/availability/repository"
	contractEntity "go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

const (
	SagaAvailability     = "availability"
	StepAvailabilitySync = "availability.sync"
)

// Transition is one date of one commitment changing status.
type Transition struct {
	MusicianID uuid.UUID                 `json:"musician_id"`
	Date       time.Time                 `json:"date"`
	OldStatus  contractEntity.DateStatus `json:"old_status"`
	NewStatus  contractEntity.DateStatus `json:"new_status"`
	// Owner identifies the commitment: a booking id for contract links, a
	// monthly contract musician id for monthly contracts.
	Owner     uuid.UUID `json:"owner"`
	OwnerType string    `json:"owner_type"`
	Actor     string    `json:"actor"`
}

// ClaimSource counts live commitments of a musician on a date, ignoring
// those that belong to exclude.
type ClaimSource interface {
	CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, a *activityEntity.Activity)
}

type Scheduler interface {
	Schedule(ctx context.Context, sagaName, step string, payload any, cause error) (*saga.DeadLetter, error)
}

type Synchronizer struct {
	ledger    availabilityRepo.AvailabilityRepository
	activity  ActivityRecorder
	tx        database.Transactor
	scheduler Scheduler
	claims    []ClaimSource
}

func NewSynchronizer(ledger availabilityRepo.AvailabilityRepository, activity ActivityRecorder, tx database.Transactor, scheduler Scheduler) *Synchronizer {
	return &Synchronizer{
		ledger:    ledger,
		activity:  activity,
		tx:        tx,
		scheduler: scheduler,
	}
}

// AddClaimSource registers a module whose commitments block a release.
func (s *Synchronizer) AddClaimSource(c ClaimSource) {
	s.claims = append(s.claims, c)
}

// Reconcile applies t inside a savepoint of the caller's transaction. A
// failure rolls back only the savepoint and parks the transition for replay.
func (s *Synchronizer) Reconcile(ctx context.Context, t Transition) {
	err := s.tx.Savepoint(ctx, func(ctx context.Context) error {
		return s.Apply(ctx, t)
	})
	if err == nil {
		return
	}

	logger.Error("Synchronizer:Reconcile:Error",
		"musician_id", t.MusicianID,
		"date", utils.FormatDate(t.Date),
		"new_status", t.NewStatus,
		"error", err,
	)
	if _, perr := s.scheduler.Schedule(ctx, SagaAvailability, StepAvailabilitySync, t, err); perr != nil {
		logger.Error("Synchronizer:Reconcile:Schedule:Error:", perr)
	}
}

// HandleStep replays a parked transition.
func (s *Synchronizer) HandleStep(ctx context.Context, payload json.RawMessage) error {
	var t Transition
	if err := json.Unmarshal(payload, &t); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		return s.Apply(ctx, t)
	})
}

// Apply moves the availability ledger to match t.
func (s *Synchronizer) Apply(ctx context.Context, t Transition) error {
	t.Date = utils.DateOnly(t.Date)

	switch t.NewStatus {
	case contractEntity.DateStatusSigned:
		return s.hold(ctx, t, "availability.block", "signed contract")
	case contractEntity.DateStatusSent:
		return s.hold(ctx, t, "availability.hold", "contract sent")
	case contractEntity.DateStatusRejected, contractEntity.DateStatusCancelled:
		// Only a date that took a hold has anything to release.
		if t.OldStatus != contractEntity.DateStatusSent && t.OldStatus != contractEntity.DateStatusSigned {
			return nil
		}
		return s.release(ctx, t)
	default:
		return nil
	}
}

func (s *Synchronizer) hold(ctx context.Context, t Transition, action, note string) error {
	if err := s.ledger.Lock(ctx, t.MusicianID, t.Date); err != nil {
		return err
	}

	row := &availabilityEntity.Availability{
		MusicianID:  t.MusicianID,
		Date:        t.Date,
		IsAvailable: false,
		Note:        &note,
		UpdatedAt:   time.Now(),
	}
	if err := s.ledger.Upsert(ctx, row); err != nil {
		return err
	}

	s.record(ctx, t, action, nil)
	return nil
}

func (s *Synchronizer) release(ctx context.Context, t Transition) error {
	if err := s.ledger.Lock(ctx, t.MusicianID, t.Date); err != nil {
		return err
	}

	total := 0
	for _, c := range s.claims {
		n, err := c.CountClaims(ctx, t.MusicianID, t.Date, t.Owner)
		if err != nil {
			return err
		}
		total += n
	}

	if total > 0 {
		s.record(ctx, t, "availability.release_skipped", activityEntity.Detail{"other_claims": total})
		return nil
	}

	row := &availabilityEntity.Availability{
		MusicianID:  t.MusicianID,
		Date:        t.Date,
		IsAvailable: true,
		UpdatedAt:   time.Now(),
	}
	if err := s.ledger.Upsert(ctx, row); err != nil {
		return err
	}

	s.record(ctx, t, "availability.release", nil)
	return nil
}

func (s *Synchronizer) record(ctx context.Context, t Transition, action string, extra activityEntity.Detail) {
	telemetry.AvailabilityChanges.WithLabelValues(action).Inc()
	detail := activityEntity.Detail{
		"date":       utils.FormatDate(t.Date),
		"owner":      t.Owner.String(),
		"owner_type": t.OwnerType,
		"from":       string(t.OldStatus),
		"to":         string(t.NewStatus),
	}
	for k, v := range extra {
		detail[k] = v
	}
	s.activity.Record(ctx, &activityEntity.Activity{
		EntityType: activityEntity.EntityAvailability,
		EntityID:   t.MusicianID,
		Action:     action,
		Actor:      t.Actor,
		Detail:     detail,
	})
}
