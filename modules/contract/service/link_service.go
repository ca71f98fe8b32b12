package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/storage"
	"go-musician-booking/core/telemetry"
	"go-musician-booking/core/utils"
	activityEntity "go-musician-booking/modules/activity/entity"
	bookingEntity "go-musician-booking/modules/booking/entity"
	"go-musician-booking/modules/contract/dto"
	"go-musician-booking/modules/contract/entity"
	notificationDto "go-musician-booking/modules/notification/dto"
	notificationEntity "go-musician-booking/modules/notification/entity"
	syncService "go-musician-booking/modules/synchronizer/service"

	"github.com/google/uuid"
)

const (
	StepLinkEmail  = "contract_link.email.send"
	StepLinkNotify = "contract_link.response.notify"

	ownerBooking = "booking"
)

// LinkService drives single-event contract links. The booking is the owner
// of a link's date.
type LinkService struct {
	deps Dependencies
}

func NewLinkService(deps Dependencies) *LinkService {
	s := &LinkService{deps: deps}
	deps.Runner.Register(StepLinkEmail, s.handleEmailStep)
	deps.Runner.Register(StepLinkNotify, s.handleNotifyStep)
	deps.Runner.Register(StepArtifactUpload, uploadArtifactStep(deps.Artifacts))
	return s
}

// CreateLink issues a pending link for a confirmed booking. A booking holds
// at most one live link.
func (s *LinkService) CreateLink(ctx context.Context, bookingID uuid.UUID, actor string) (*entity.ContractLink, error) {
	booking, err := s.deps.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != bookingEntity.BookingStatusConfirmed {
		return nil, errors.NewAppError(errors.ErrInvalidState, "booking is "+string(booking.Status), nil)
	}

	existing, err := s.deps.Links.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list contract links", err)
	}
	for _, l := range existing {
		if l.Status == entity.ContractStatusSigned {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "booking already has a signed contract", nil)
		}
		if l.Status.Respondable() {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "booking already has an open contract link", nil)
		}
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate token", err)
	}

	now := time.Now()
	link := &entity.ContractLink{
		ID:         uuid.New(),
		BookingID:  booking.ID,
		MusicianID: booking.MusicianID,
		EventID:    booking.EventID,
		Date:       booking.Date,
		Token:      token,
		Status:     entity.ContractStatusPending,
		Fee:        booking.Fee,
		CreatedBy:  actor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.deps.Links.Create(ctx, link); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create contract link", err)
	}

	s.record(ctx, link.ID, "contract_link.create", actor, activityEntity.Detail{"booking_id": bookingID.String()})
	return link, nil
}

func (s *LinkService) SendLink(ctx context.Context, id uuid.UUID, actor string) (*SendResult, error) {
	link, err := s.getLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.Status != entity.ContractStatusPending {
		return &SendResult{Skipped: true, Status: link.Status, SentAt: link.SentAt}, nil
	}

	now := time.Now()
	sent := false
	err = s.deps.Tx.WithTx(ctx, func(ctx context.Context) error {
		meta := entity.NewContractMetadata(actor, entity.ContractStatusPending, entity.ContractStatusSent, now)
		ok, err := s.deps.Links.MarkSent(ctx, id, meta, now)
		if err != nil || !ok {
			return err
		}
		sent = true
		s.reconcile(ctx, link, entity.DateStatusPending, entity.DateStatusSent, actor)
		return nil
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to send contract link", err)
	}
	if !sent {
		current, err := s.getLink(ctx, id)
		if err != nil {
			return nil, err
		}
		return &SendResult{Skipped: true, Status: current.Status, SentAt: current.SentAt}, nil
	}

	s.record(ctx, id, "contract_link.send", actor, nil)

	result := &SendResult{Status: entity.ContractStatusSent, SentAt: &now, EmailSent: true}
	if err := s.deps.Runner.Run(ctx, SagaContract, StepLinkEmail, linkPayload{LinkID: id}); err != nil {
		logger.Error("LinkService:SendLink:Email:Error", "link_id", id, "error", err)
		result.EmailSent = false
	}
	return result, nil
}

func (s *LinkService) RespondLink(ctx context.Context, in RespondInput) (*entity.ContractLink, error) {
	if err := validateRespond(in.Token, in.Action); err != nil {
		return nil, err
	}
	if err := s.deps.Guard.Allow(ctx, in.Token, in.IPAddress); err != nil {
		return nil, err
	}

	link, err := s.deps.Links.GetByToken(ctx, in.Token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract link", err)
	}
	if link == nil || (in.ContractID != nil && *in.ContractID != link.ID) {
		return nil, errors.NewAppError(errors.ErrNotFound, "contract not found", nil)
	}
	if !link.Status.Respondable() {
		return nil, errors.NewAppError(errors.ErrInvalidState, "contract has already been "+string(link.Status), nil)
	}

	musician, err := s.deps.Musicians.GetByID(ctx, link.MusicianID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	status := entity.ContractStatusRejected
	if in.Action == ActionSign {
		status = entity.ContractStatusSigned
	}
	signer := strings.TrimSpace(in.SignerName)
	if signer == "" {
		signer = musician.Name
	}

	meta := entity.MusicianMetadata{
		Action:     in.Action,
		SignerName: signer,
		UserAgent:  in.UserAgent,
		Comments:   in.Comments,
		At:         now,
	}
	update := entity.ResponseUpdate{
		Token:     in.Token,
		Status:    status,
		Response:  in.Comments,
		IPAddress: in.IPAddress,
		At:        now,
	}

	var artifact *artifactPayload
	if status == entity.ContractStatusSigned {
		body, hash, err := SignatureArtifact{
			Kind:       "contract_link",
			ID:         link.ID,
			MusicianID: link.MusicianID,
			SignerName: signer,
			IPAddress:  in.IPAddress,
			UserAgent:  in.UserAgent,
			Dates:      []string{utils.FormatDate(link.Date)},
			TotalFee:   link.Fee,
			Terms:      s.deps.Options.TermsAndConditions,
			SignedAt:   now,
		}.Seal()
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build signature", err)
		}
		meta.ArtifactKey = storage.SignatureKey(signer, link.ID, now)
		update.SignatureHash = &hash
		artifact = &artifactPayload{Key: meta.ArtifactKey, Body: body}
	}
	update.Metadata = entity.NewMusicianMetadata(meta)

	actor := "musician:" + link.MusicianID.String()
	var updated *entity.ContractLink
	err = s.deps.Tx.WithTx(ctx, func(ctx context.Context) error {
		row, err := s.deps.Links.Respond(ctx, update)
		if err != nil {
			return err
		}
		if row == nil {
			return errors.NewAppError(errors.ErrInvalidState, "contract has already been answered", nil)
		}
		updated = row
		if err := s.deps.Bookings.ApplyLinkStatus(ctx, row.BookingID, row.ID, status, actor); err != nil {
			return err
		}
		s.reconcile(ctx, row, entity.DateStatusFor(link.Status), entity.DateStatusFor(status), actor)
		return nil
	})
	if err != nil {
		if errors.CodeOf(err) == errors.ErrInvalidState {
			return nil, err
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to record response", err)
	}

	s.record(ctx, link.ID, "contract_link."+in.Action, actor, activityEntity.Detail{
		"ip_address": in.IPAddress,
		"comments":   in.Comments,
	})

	if artifact != nil {
		if err := s.deps.Runner.Run(ctx, SagaContract, StepArtifactUpload, artifact); err != nil {
			logger.Error("LinkService:RespondLink:Artifact:Error", "link_id", link.ID, "error", err)
		}
	}
	notify := linkPayload{LinkID: link.ID, Action: in.Action, Comments: in.Comments}
	if err := s.deps.Runner.Run(ctx, SagaContract, StepLinkNotify, notify); err != nil {
		logger.Error("LinkService:RespondLink:Notify:Error", "link_id", link.ID, "error", err)
	}
	return updated, nil
}

// CancelLink withdraws a non-terminal link and cancels its booking.
func (s *LinkService) CancelLink(ctx context.Context, id uuid.UUID, actor, reason string) (*entity.ContractLink, error) {
	link, err := s.getLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(link.Status, entity.ContractStatusCancelled) {
		return nil, errors.NewAppError(errors.ErrInvalidState, "contract link is already "+string(link.Status), nil)
	}

	now := time.Now()
	meta := entity.NewContractMetadata(actor, link.Status, entity.ContractStatusCancelled, now)
	meta.Contract.Reason = reason

	err = s.deps.Tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := s.deps.Links.Cancel(ctx, id, meta, now)
		if err != nil {
			return err
		}
		if !ok {
			return errors.NewAppError(errors.ErrInvalidState, "contract link was answered concurrently", nil)
		}
		if err := s.deps.Bookings.ApplyLinkStatus(ctx, link.BookingID, link.ID, entity.ContractStatusCancelled, actor); err != nil {
			return err
		}
		s.reconcile(ctx, link, entity.DateStatusFor(link.Status), entity.DateStatusCancelled, actor)
		return nil
	})
	if err != nil {
		if errors.CodeOf(err) == errors.ErrInvalidState {
			return nil, err
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to cancel contract link", err)
	}

	s.record(ctx, id, "contract_link.cancel", actor, activityEntity.Detail{"from": string(link.Status), "reason": reason})
	return s.getLink(ctx, id)
}

func (s *LinkService) ViewByToken(ctx context.Context, token string) (*dto.LinkView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if strings.TrimSpace(token) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "token is required", nil)
	}
	link, err := s.deps.Links.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract link", err)
	}
	if link == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "contract not found", nil)
	}
	musician, err := s.deps.Musicians.GetByID(ctx, link.MusicianID)
	if err != nil {
		return nil, err
	}

	return &dto.LinkView{
		ID:                 link.ID,
		BookingID:          link.BookingID,
		MusicianID:         link.MusicianID,
		MusicianName:       musician.Name,
		EventID:            link.EventID,
		Date:               utils.FormatDate(link.Date),
		Fee:                link.Fee,
		Status:             link.Status,
		TermsAndConditions: s.deps.Options.TermsAndConditions,
		SentAt:             link.SentAt,
		RespondedAt:        link.RespondedAt,
		CompletedAt:        link.CompletedAt,
	}, nil
}

func (s *LinkService) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]entity.ContractLink, error) {
	items, err := s.deps.Links.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list contract links", err)
	}
	return items, nil
}

func (s *LinkService) reconcile(ctx context.Context, link *entity.ContractLink, from, to entity.DateStatus, actor string) {
	s.deps.Sync.Reconcile(ctx, syncService.Transition{
		MusicianID: link.MusicianID,
		Date:       link.Date,
		OldStatus:  from,
		NewStatus:  to,
		Owner:      link.BookingID,
		OwnerType:  ownerBooking,
		Actor:      actor,
	})
}

func (s *LinkService) getLink(ctx context.Context, id uuid.UUID) (*entity.ContractLink, error) {
	link, err := s.deps.Links.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract link", err)
	}
	if link == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "contract link not found", nil)
	}
	return link, nil
}

func (s *LinkService) record(ctx context.Context, id uuid.UUID, action, actor string, detail activityEntity.Detail) {
	telemetry.ContractTransitions.WithLabelValues("link", strings.TrimPrefix(action, "contract_link.")).Inc()
	s.deps.Activity.Record(ctx, &activityEntity.Activity{
		EntityType: activityEntity.EntityContractLink,
		EntityID:   id,
		Action:     action,
		Actor:      actor,
		Detail:     detail,
	})
}

type linkPayload struct {
	LinkID   uuid.UUID `json:"link_id"`
	Action   string    `json:"action,omitempty"`
	Comments string    `json:"comments,omitempty"`
}

func (s *LinkService) handleEmailStep(ctx context.Context, payload json.RawMessage) error {
	var p linkPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	link, err := s.getLink(ctx, p.LinkID)
	if err != nil {
		return err
	}
	musician, err := s.deps.Musicians.GetByID(ctx, link.MusicianID)
	if err != nil {
		return err
	}

	msg := notificationEntity.ContractEmail{
		To:           musician.Email,
		MusicianName: musician.Name,
		Subject:      "Your contract for " + utils.FormatDate(link.Date),
		Dates:        []notificationEntity.EmailDate{{Date: link.Date, Fee: link.Fee}},
		TotalFee:     link.Fee,
		ResponseURL:  responseURL(s.deps.Options.ResponseBaseURL, link.Token, nil),
	}
	if !s.deps.Mailer.SendContractEmail(ctx, msg) {
		return errors.NewAppError(errors.ErrDownstream, "contract email was not delivered", nil)
	}
	return nil
}

func (s *LinkService) handleNotifyStep(ctx context.Context, payload json.RawMessage) error {
	var p linkPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	link, err := s.getLink(ctx, p.LinkID)
	if err != nil {
		return err
	}
	musician, err := s.deps.Musicians.GetByID(ctx, link.MusicianID)
	if err != nil {
		return err
	}

	label := "the contract for " + utils.FormatDate(link.Date)
	if s.deps.Options.NotifyEmail != "" && !s.deps.Mailer.SendContractResponseNotification(ctx, notificationEntity.ContractResponse{
		To:           s.deps.Options.NotifyEmail,
		MusicianName: musician.Name,
		Contract:     label,
		Action:       p.Action,
		Comments:     p.Comments,
	}) {
		return errors.NewAppError(errors.ErrDownstream, "response notification was not delivered", nil)
	}

	owner, err := uuid.Parse(link.CreatedBy)
	if err != nil || owner == uuid.Nil {
		return nil
	}
	return s.deps.Notifier.Create(ctx, &notificationDto.CreateNotificationRequest{
		UserID:  owner,
		Title:   "Contract " + pastTense(p.Action),
		Message: musician.Name + " " + pastTense(p.Action) + " " + label + ".",
		Type:    notificationType(p.Action),
		Data: map[string]any{
			"link_id":    link.ID.String(),
			"booking_id": link.BookingID.String(),
			"comments":   p.Comments,
		},
	})
}
