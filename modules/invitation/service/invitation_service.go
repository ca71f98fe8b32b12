package service

import (
	"context"
	"fmt"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	activityEntity "go-musician-booking/modules/activity/entity"
	bookingEntity "go-musician-booking/modules/booking/entity"
	bookingService "go-musician-booking/modules/booking/service"
	"go-musician-booking/modules/invitation/dto"
	"go-musician-booking/modules/invitation/entity"
	"go-musician-booking/modules/invitation/repository"
	notifDto "go-musician-booking/modules/notification/dto"
	notifEntity "go-musician-booking/modules/notification/entity"

	"github.com/google/uuid"
)

type BookingCreator interface {
	Create(ctx context.Context, in bookingService.CreateInput) (*bookingEntity.Booking, error)
}

type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, musicianID uuid.UUID, date time.Time) (bool, error)
}

type Notifier interface {
	Create(ctx context.Context, req *notifDto.CreateNotificationRequest) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, a *activityEntity.Activity)
}

type InvitationService struct {
	repo         repository.InvitationRepository
	bookings     BookingCreator
	availability AvailabilityChecker
	notifier     Notifier
	tx           database.Transactor
	activity     ActivityRecorder
}

func NewInvitationService(repo repository.InvitationRepository, bookings BookingCreator, availability AvailabilityChecker, notifier Notifier, tx database.Transactor, activity ActivityRecorder) *InvitationService {
	return &InvitationService{
		repo:         repo,
		bookings:     bookings,
		availability: availability,
		notifier:     notifier,
		tx:           tx,
		activity:     activity,
	}
}

// CreateInvitations invites every listed musician to the event date. Musicians
// who are unavailable or already invited are reported as skipped.
func (s *InvitationService) CreateInvitations(ctx context.Context, req *dto.CreateInvitationRequest, creatorID uuid.UUID) (*dto.CreateInvitationsResponse, error) {
	if req.EventID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "event_id is required", nil)
	}
	if len(req.MusicianIDs) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "at least one musician is required", nil)
	}
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid date", err)
	}

	resp := &dto.CreateInvitationsResponse{
		Invitations: []entity.Invitation{},
		Skipped:     []dto.SkippedInvitation{},
	}
	seen := make(map[uuid.UUID]bool, len(req.MusicianIDs))
	for _, musicianID := range req.MusicianIDs {
		if musicianID == creatorID || seen[musicianID] {
			continue
		}
		seen[musicianID] = true

		if reason := s.skipReason(ctx, musicianID, req.EventID, date); reason != "" {
			resp.Skipped = append(resp.Skipped, dto.SkippedInvitation{MusicianID: musicianID, Reason: reason})
			continue
		}

		now := time.Now()
		inv := &entity.Invitation{
			ID:         uuid.New(),
			EventID:    req.EventID,
			MusicianID: musicianID,
			Date:       date,
			Status:     entity.InvitationStatusPending,
			Fee:        req.Fee,
			EventData: entity.EventData{
				Title:       req.EventData.Title,
				Description: req.EventData.Description,
				Venue:       req.EventData.Venue,
				StartTime:   req.EventData.StartTime,
				EndTime:     req.EventData.EndTime,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if creatorID != uuid.Nil {
			inv.CreatedBy = &creatorID
		}

		if err := s.repo.Create(ctx, inv); err != nil {
			logger.Error("InvitationService:CreateInvitations:Create:Error:", err)
			resp.Skipped = append(resp.Skipped, dto.SkippedInvitation{MusicianID: musicianID, Reason: "create_failed"})
			continue
		}
		resp.Invitations = append(resp.Invitations, *inv)
		s.record(ctx, inv.ID, "invitation.create", creatorID.String(), activityEntity.Detail{
			"musician_id": musicianID.String(),
			"event_id":    req.EventID.String(),
			"date":        req.Date,
		})

		s.notify(ctx, &notifDto.CreateNotificationRequest{
			UserID:  musicianID,
			Title:   "New event invitation",
			Message: fmt.Sprintf("You are invited to play %s on %s", inv.EventData.Title, req.Date),
			Type:    notifEntity.TypeInvitation,
			Data: map[string]any{
				"invitation_id": inv.ID.String(),
				"event_id":      req.EventID.String(),
			},
		})
	}

	logger.Info("InvitationService:CreateInvitations", "event_id", req.EventID,
		"created", len(resp.Invitations), "skipped", len(resp.Skipped))
	return resp, nil
}

func (s *InvitationService) skipReason(ctx context.Context, musicianID, eventID uuid.UUID, date time.Time) string {
	open, err := s.repo.FindOpen(ctx, musicianID, eventID, date)
	if err != nil {
		return "lookup_failed"
	}
	if open != nil {
		return "already_invited"
	}
	ok, err := s.availability.IsAvailable(ctx, musicianID, date)
	if err != nil {
		return "lookup_failed"
	}
	if !ok {
		return "unavailable"
	}
	return ""
}

func (s *InvitationService) GetPendingInvitations(ctx context.Context, musicianID uuid.UUID) (*dto.PendingInvitationsResponse, error) {
	invitations, err := s.repo.GetPendingByMusician(ctx, musicianID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list invitations", err)
	}
	return &dto.PendingInvitationsResponse{Invitations: invitations, Total: len(invitations)}, nil
}

func (s *InvitationService) CountPending(ctx context.Context, musicianID uuid.UUID) (int, error) {
	n, err := s.repo.CountPendingByMusician(ctx, musicianID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "failed to count invitations", err)
	}
	return n, nil
}

// AcceptInvitation accepts on behalf of the invited musician and books them.
func (s *InvitationService) AcceptInvitation(ctx context.Context, invitationID, musicianID uuid.UUID) (*entity.Invitation, *bookingEntity.Booking, error) {
	inv, err := s.pendingFor(ctx, invitationID, musicianID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	var booking *bookingEntity.Booking
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := s.repo.Respond(ctx, invitationID, entity.InvitationStatusAccepted, now)
		if err != nil {
			return err
		}
		if !ok {
			return errors.NewAppError(errors.ErrInvalidState, "invitation already responded", nil)
		}
		booking, err = s.bookings.Create(ctx, bookingService.CreateInput{
			InvitationID: &inv.ID,
			EventID:      inv.EventID,
			MusicianID:   inv.MusicianID,
			Date:         inv.Date,
			Fee:          inv.Fee,
			Actor:        "musician:" + musicianID.String(),
		})
		return err
	})
	if err != nil {
		if errors.CodeOf(err) == errors.ErrInvalidState {
			return nil, nil, err
		}
		return nil, nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to accept invitation", err)
	}

	inv.Status = entity.InvitationStatusAccepted
	inv.RespondedAt = &now
	s.record(ctx, inv.ID, "invitation.accept", "musician:"+musicianID.String(), activityEntity.Detail{"booking_id": booking.ID.String()})
	s.notifyCreator(ctx, inv, "accepted")
	return inv, booking, nil
}

func (s *InvitationService) DeclineInvitation(ctx context.Context, invitationID, musicianID uuid.UUID) (*entity.Invitation, error) {
	inv, err := s.pendingFor(ctx, invitationID, musicianID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ok, err := s.repo.Respond(ctx, invitationID, entity.InvitationStatusDeclined, now)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to decline invitation", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrInvalidState, "invitation already responded", nil)
	}

	inv.Status = entity.InvitationStatusDeclined
	inv.RespondedAt = &now
	s.record(ctx, inv.ID, "invitation.decline", "musician:"+musicianID.String(), nil)
	s.notifyCreator(ctx, inv, "declined")
	return inv, nil
}

func (s *InvitationService) pendingFor(ctx context.Context, invitationID, musicianID uuid.UUID) (*entity.Invitation, error) {
	inv, err := s.repo.GetByID(ctx, invitationID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get invitation", err)
	}
	if inv == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "invitation not found", nil)
	}
	if inv.MusicianID != musicianID {
		return nil, errors.NewAppError(errors.ErrForbidden, "not the invited musician", nil)
	}
	if inv.Status != entity.InvitationStatusPending {
		return nil, errors.NewAppError(errors.ErrInvalidState, "invitation already "+string(inv.Status), nil)
	}
	return inv, nil
}

func (s *InvitationService) notifyCreator(ctx context.Context, inv *entity.Invitation, verb string) {
	if inv.CreatedBy == nil {
		return
	}
	s.notify(ctx, &notifDto.CreateNotificationRequest{
		UserID:  *inv.CreatedBy,
		Title:   "Invitation " + verb,
		Message: fmt.Sprintf("Your invitation for %s on %s was %s", inv.EventData.Title, utils.FormatDate(inv.Date), verb),
		Type:    notifEntity.TypeInvitationReply,
		Data: map[string]any{
			"invitation_id": inv.ID.String(),
			"musician_id":   inv.MusicianID.String(),
			"status":        string(inv.Status),
		},
	})
}

func (s *InvitationService) notify(ctx context.Context, req *notifDto.CreateNotificationRequest) {
	if err := s.notifier.Create(ctx, req); err != nil {
		logger.Error("InvitationService:Notify:Error:", err)
	}
}

func (s *InvitationService) record(ctx context.Context, id uuid.UUID, action, actor string, detail activityEntity.Detail) {
	s.activity.Record(ctx, &activityEntity.Activity{
		EntityType: activityEntity.EntityInvitation,
		EntityID:   id,
		Action:     action,
		Actor:      actor,
		Detail:     detail,
	})
}
