package service

import (
	"context"
	"time"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	activityEntity "go-musician-booking/modules/activity/entity"
	"go-musician-booking/modules/booking/entity"
	"go-musician-booking/modules/booking/repository"
	contractEntity "go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

type ActivityRecorder interface {
	Record(ctx context.Context, a *activityEntity.Activity)
}

type BookingService struct {
	repo     repository.BookingRepository
	activity ActivityRecorder
}

func NewBookingService(repo repository.BookingRepository, activity ActivityRecorder) *BookingService {
	return &BookingService{repo: repo, activity: activity}
}

// CreateInput materialises an accepted invitation.
type CreateInput struct {
	InvitationID *uuid.UUID
	EventID      uuid.UUID
	MusicianID   uuid.UUID
	Date         time.Time
	Fee          int64
	Actor        string
}

func (s *BookingService) Create(ctx context.Context, in CreateInput) (*entity.Booking, error) {
	if in.EventID == uuid.Nil || in.MusicianID == uuid.Nil || in.Date.IsZero() {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "event, musician and date are required", nil)
	}

	now := time.Now()
	b := &entity.Booking{
		ID:            uuid.New(),
		InvitationID:  in.InvitationID,
		EventID:       in.EventID,
		MusicianID:    in.MusicianID,
		Date:          utils.DateOnly(in.Date),
		Status:        entity.BookingStatusConfirmed,
		PaymentStatus: entity.PaymentStatusUnpaid,
		Fee:           in.Fee,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create booking", err)
	}

	s.record(ctx, b.ID, "booking.create", in.Actor, activityEntity.Detail{
		"musician_id": b.MusicianID.String(),
		"date":        utils.FormatDate(b.Date),
	})
	logger.Info("BookingService:Create", "booking_id", b.ID, "musician_id", b.MusicianID)
	return b, nil
}

func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get booking", err)
	}
	if b == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "booking not found", nil)
	}
	return b, nil
}

func (s *BookingService) ListByMusician(ctx context.Context, musicianID uuid.UUID) ([]entity.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	items, err := s.repo.ListByMusician(ctx, musicianID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list bookings", err)
	}
	return items, nil
}

func (s *BookingService) MarkPaid(ctx context.Context, id uuid.UUID, actor string) (*entity.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	ok, err := s.repo.MarkPaid(ctx, id, time.Now())
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to mark booking paid", err)
	}
	if !ok {
		b, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, errors.NewAppError(errors.ErrInvalidState, "booking is "+string(b.Status)+" and "+string(b.PaymentStatus), nil)
	}

	s.record(ctx, id, "booking.paid", actor, nil)
	return s.GetByID(ctx, id)
}

// ApplyLinkStatus mirrors a contract link outcome onto its booking. It runs
// inside the link's transaction.
func (s *BookingService) ApplyLinkStatus(ctx context.Context, bookingID, linkID uuid.UUID, status contractEntity.ContractStatus, actor string) error {
	now := time.Now()
	meta := contractEntity.NewBookingMetadata(linkID, status, now)

	switch status {
	case contractEntity.ContractStatusSigned:
		if err := s.repo.SetContractSigned(ctx, bookingID, meta, now); err != nil {
			return err
		}
		s.record(ctx, bookingID, "booking.contract_signed", actor, activityEntity.Detail{"link_id": linkID.String()})
	case contractEntity.ContractStatusRejected, contractEntity.ContractStatusCancelled:
		cancelled, err := s.repo.Cancel(ctx, bookingID, meta, now)
		if err != nil {
			return err
		}
		if cancelled {
			s.record(ctx, bookingID, "booking.cancel", actor, activityEntity.Detail{
				"link_id":     linkID.String(),
				"link_status": string(status),
			})
		}
	}
	return nil
}

// CountClaims counts confirmed bookings with a signed contract on date.
func (s *BookingService) CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error) {
	return s.repo.CountClaims(ctx, musicianID, utils.DateOnly(date), exclude)
}

func (s *BookingService) record(ctx context.Context, id uuid.UUID, action, actor string, detail activityEntity.Detail) {
	s.activity.Record(ctx, &activityEntity.Activity{
		EntityType: activityEntity.EntityBooking,
		EntityID:   id,
		Action:     action,
		Actor:      actor,
		Detail:     detail,
	})
}
