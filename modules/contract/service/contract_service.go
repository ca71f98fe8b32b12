package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/database"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/storage"
	"go-musician-booking/core/telemetry"
	"go-musician-booking/core/utils"
	activityEntity "go-musician-booking/modules/activity/entity"
	"go-musician-booking/modules/contract/dto"
	"go-musician-booking/modules/contract/entity"
	"go-musician-booking/modules/contract/repository"
	notificationDto "go-musician-booking/modules/notification/dto"
	notificationEntity "go-musician-booking/modules/notification/entity"
	notificationService "go-musician-booking/modules/notification/service"
	plannerEntity "go-musician-booking/modules/planner/entity"
	syncService "go-musician-booking/modules/synchronizer/service"

	"github.com/google/uuid"
)

const (
	StepContractEmail  = "contract.email.send"
	StepContractNotify = "contract.response.notify"

	ownerMonthlyContract = "monthly_contract_musician"
)

const (
	ActionSign   = "sign"
	ActionReject = "reject"
)

type Dependencies struct {
	Contracts repository.MonthlyContractRepository
	Links     repository.ContractLinkRepository
	Musicians MusicianLookup
	Bookings  BookingLifecycle
	Planner   AssignmentTracker
	Tx        database.Transactor
	Sync      Reconciler
	Activity  ActivityRecorder
	Runner    SagaRunner
	Mailer    notificationService.EmailDispatcher
	Artifacts storage.ArtifactStore
	Notifier  Notifier
	Guard     *ResponseGuard
	Options   Options
}

// ContractService drives the per-musician slices of monthly contracts.
type ContractService struct {
	deps Dependencies
}

func NewContractService(deps Dependencies) *ContractService {
	s := &ContractService{deps: deps}
	deps.Runner.Register(StepContractEmail, s.handleEmailStep)
	deps.Runner.Register(StepContractNotify, s.handleNotifyStep)
	deps.Runner.Register(StepArtifactUpload, uploadArtifactStep(deps.Artifacts))
	return s
}

type DateEntry struct {
	AssignmentID *uuid.UUID
	Date         time.Time
	VenueName    string
	StartTime    string
	EndTime      string
	Fee          int64
}

type GenerateInput struct {
	ContractID uuid.UUID
	MusicianID uuid.UUID
	Dates      []DateEntry
	Actor      string
}

type SendResult struct {
	Skipped   bool                  `json:"skipped"`
	Status    entity.ContractStatus `json:"status"`
	SentAt    *time.Time            `json:"sent_at"`
	EmailSent bool                  `json:"email_sent"`
}

type RespondInput struct {
	Token      string
	ContractID *uuid.UUID
	Action     string
	Comments   string
	IPAddress  string
	SignerName string
	UserAgent  string
}

// Generate creates one pending contract musician with its dates.
func (s *ContractService) Generate(ctx context.Context, in GenerateInput) (*entity.MonthlyContractMusician, error) {
	if len(in.Dates) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "at least one date is required", nil)
	}

	contract, err := s.deps.Contracts.GetContract(ctx, in.ContractID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract", err)
	}
	if contract == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "contract not found", nil)
	}

	if _, err := s.deps.Musicians.GetByID(ctx, in.MusicianID); err != nil {
		if errors.Is(err, errors.NotFound) {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "musician could not be resolved", err)
		}
		return nil, err
	}

	existing, err := s.deps.Contracts.GetMusicianByPair(ctx, in.ContractID, in.MusicianID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to check existing contract", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "musician already has a contract for this month", nil)
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to generate token", err)
	}

	now := time.Now()
	m := &entity.MonthlyContractMusician{
		ID:         uuid.New(),
		ContractID: in.ContractID,
		MusicianID: in.MusicianID,
		Token:      token,
		Status:     entity.ContractStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	dates := make([]entity.MonthlyContractDate, 0, len(in.Dates))
	for _, d := range in.Dates {
		if d.Date.IsZero() {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "every date entry needs a date", nil)
		}
		dates = append(dates, entity.MonthlyContractDate{
			ID:                 uuid.New(),
			ContractMusicianID: m.ID,
			AssignmentID:       d.AssignmentID,
			Date:               utils.DateOnly(d.Date),
			VenueName:          d.VenueName,
			StartTime:          d.StartTime,
			EndTime:            d.EndTime,
			Fee:                d.Fee,
			Status:             entity.DateStatusPending,
		})
		m.TotalFee += d.Fee
	}

	err = s.deps.Tx.WithTx(ctx, func(ctx context.Context) error {
		return s.deps.Contracts.CreateMusician(ctx, m, dates)
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create contract", err)
	}

	s.record(ctx, m.ID, "contract.generate", in.Actor, activityEntity.Detail{
		"contract_id": in.ContractID.String(),
		"musician_id": in.MusicianID.String(),
		"dates":       len(dates),
		"total_fee":   m.TotalFee,
	})
	logger.Info("ContractService:Generate", "contract_musician_id", m.ID, "dates", len(dates))
	return m, nil
}

// Send moves a pending contract musician to sent and dispatches the email
// once. Anything other than pending is reported as skipped.
func (s *ContractService) Send(ctx context.Context, id uuid.UUID, actor string) (*SendResult, error) {
	m, err := s.getMusician(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != entity.ContractStatusPending {
		return &SendResult{Skipped: true, Status: m.Status, SentAt: m.SentAt}, nil
	}

	now := time.Now()
	sent := false
	err = s.deps.Tx.WithTx(ctx, func(ctx context.Context) error {
		meta := entity.NewContractMetadata(actor, entity.ContractStatusPending, entity.ContractStatusSent, now)
		ok, err := s.deps.Contracts.MarkSent(ctx, id, meta, now)
		if err != nil || !ok {
			return err
		}
		sent = true
		return s.moveDates(ctx, m, entity.DateStatusSent, actor)
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to send contract", err)
	}
	if !sent {
		current, err := s.getMusician(ctx, id)
		if err != nil {
			return nil, err
		}
		return &SendResult{Skipped: true, Status: current.Status, SentAt: current.SentAt}, nil
	}

	s.record(ctx, id, "contract.send", actor, activityEntity.Detail{"from": "pending", "to": "sent"})

	result := &SendResult{Status: entity.ContractStatusSent, SentAt: &now, EmailSent: true}
	if err := s.deps.Runner.Run(ctx, SagaContract, StepContractEmail, emailPayload{ContractMusicianID: id}); err != nil {
		logger.Error("ContractService:Send:Email:Error", "contract_musician_id", id, "error", err)
		result.EmailSent = false
	}
	return result, nil
}

// Respond applies a musician's sign or reject through the signing token. At
// most one response ever takes effect.
func (s *ContractService) Respond(ctx context.Context, in RespondInput) (*entity.MonthlyContractMusician, error) {
	if err := validateRespond(in.Token, in.Action); err != nil {
		return nil, err
	}
	if err := s.deps.Guard.Allow(ctx, in.Token, in.IPAddress); err != nil {
		return nil, err
	}

	m, err := s.deps.Contracts.GetMusicianByToken(ctx, in.Token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract", err)
	}
	if m == nil || (in.ContractID != nil && *in.ContractID != m.ContractID) {
		return nil, errors.NewAppError(errors.ErrNotFound, "contract not found", nil)
	}
	if !m.Status.Respondable() {
		return nil, errors.NewAppError(errors.ErrInvalidState, "contract has already been "+string(m.Status), nil)
	}

	musician, err := s.deps.Musicians.GetByID(ctx, m.MusicianID)
	if err != nil {
		return nil, err
	}
	dates, err := s.deps.Contracts.ListDates(ctx, m.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list contract dates", err)
	}
	contract, err := s.deps.Contracts.GetContract(ctx, m.ContractID)
	if err != nil || contract == nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract", err)
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
		days := make([]string, 0, len(dates))
		for _, d := range dates {
			days = append(days, utils.FormatDate(d.Date))
		}
		body, hash, err := SignatureArtifact{
			Kind:       ownerMonthlyContract,
			ID:         m.ID,
			MusicianID: m.MusicianID,
			SignerName: signer,
			IPAddress:  in.IPAddress,
			UserAgent:  in.UserAgent,
			Dates:      days,
			TotalFee:   m.TotalFee,
			Terms:      contract.TermsAndConditions,
			SignedAt:   now,
		}.Seal()
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build signature", err)
		}
		meta.ArtifactKey = storage.SignatureKey(signer, m.ID, now)
		update.SignatureHash = &hash
		artifact = &artifactPayload{Key: meta.ArtifactKey, Body: body}
	}
	update.Metadata = entity.NewMusicianMetadata(meta)

	var updated *entity.MonthlyContractMusician
	err = s.deps.Tx.WithTx(ctx, func(ctx context.Context) error {
		row, err := s.deps.Contracts.Respond(ctx, update)
		if err != nil {
			return err
		}
		if row == nil {
			return errors.NewAppError(errors.ErrInvalidState, "contract has already been answered", nil)
		}
		updated = row
		return s.moveDates(ctx, row, entity.DateStatusFor(status), "musician:"+m.MusicianID.String())
	})
	if err != nil {
		if errors.CodeOf(err) == errors.ErrInvalidState {
			return nil, err
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to record response", err)
	}

	s.record(ctx, m.ID, "contract."+in.Action, "musician:"+m.MusicianID.String(), activityEntity.Detail{
		"ip_address": in.IPAddress,
		"comments":   in.Comments,
	})
	logger.Info("ContractService:Respond", "contract_musician_id", m.ID, "status", status)

	if artifact != nil {
		if err := s.deps.Runner.Run(ctx, SagaContract, StepArtifactUpload, artifact); err != nil {
			logger.Error("ContractService:Respond:Artifact:Error", "contract_musician_id", m.ID, "error", err)
		}
	}
	notify := notifyPayload{ContractMusicianID: m.ID, Action: in.Action, Comments: in.Comments}
	if err := s.deps.Runner.Run(ctx, SagaContract, StepContractNotify, notify); err != nil {
		logger.Error("ContractService:Respond:Notify:Error", "contract_musician_id", m.ID, "error", err)
	}
	return updated, nil
}

// Cancel withdraws a non-terminal contract musician and releases its dates.
func (s *ContractService) Cancel(ctx context.Context, id uuid.UUID, actor, reason string) (*entity.MonthlyContractMusician, error) {
	m, err := s.getMusician(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(m.Status, entity.ContractStatusCancelled) {
		return nil, errors.NewAppError(errors.ErrInvalidState, "contract is already "+string(m.Status), nil)
	}

	now := time.Now()
	meta := entity.NewContractMetadata(actor, m.Status, entity.ContractStatusCancelled, now)
	meta.Contract.Reason = reason

	err = s.deps.Tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := s.deps.Contracts.Cancel(ctx, id, meta, now)
		if err != nil {
			return err
		}
		if !ok {
			return errors.NewAppError(errors.ErrInvalidState, "contract was answered concurrently", nil)
		}
		return s.moveDates(ctx, m, entity.DateStatusCancelled, actor)
	})
	if err != nil {
		if errors.CodeOf(err) == errors.ErrInvalidState {
			return nil, err
		}
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to cancel contract", err)
	}

	s.record(ctx, id, "contract.cancel", actor, activityEntity.Detail{"from": string(m.Status), "reason": reason})
	return s.getMusician(ctx, id)
}

// ViewByToken renders the signing page payload. id, when given, must match
// the monthly contract of the token.
func (s *ContractService) ViewByToken(ctx context.Context, token string, id *uuid.UUID) (*dto.ContractView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if strings.TrimSpace(token) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "token is required", nil)
	}
	m, err := s.deps.Contracts.GetMusicianByToken(ctx, token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract", err)
	}
	if m == nil || (id != nil && *id != m.ContractID) {
		return nil, errors.NewAppError(errors.ErrNotFound, "contract not found", nil)
	}

	contract, err := s.deps.Contracts.GetContract(ctx, m.ContractID)
	if err != nil || contract == nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract", err)
	}
	musician, err := s.deps.Musicians.GetByID(ctx, m.MusicianID)
	if err != nil {
		return nil, err
	}
	dates, err := s.deps.Contracts.ListDates(ctx, m.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list contract dates", err)
	}

	view := &dto.ContractView{
		ID:                 m.ID,
		ContractID:         contract.ID,
		MusicianID:         m.MusicianID,
		MusicianName:       musician.Name,
		Month:              contract.Month,
		Year:               contract.Year,
		TotalAmount:        m.TotalFee,
		Status:             m.Status,
		AggregateStatus:    aggregate(dates),
		TermsAndConditions: s.terms(contract),
		SentAt:             m.SentAt,
		RespondedAt:        m.RespondedAt,
		CompletedAt:        m.CompletedAt,
	}
	for _, d := range dates {
		view.Dates = append(view.Dates, dto.ContractDateView{
			Date:      utils.FormatDate(d.Date),
			Venue:     d.VenueName,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
			Fee:       d.Fee,
			Status:    d.Status,
		})
	}
	return view, nil
}

// Detail lists a monthly contract with every musician slice and its dates.
func (s *ContractService) Detail(ctx context.Context, contractID uuid.UUID) (*dto.MonthlyContractDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	contract, err := s.deps.Contracts.GetContract(ctx, contractID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract", err)
	}
	if contract == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "contract not found", nil)
	}

	musicians, err := s.deps.Contracts.ListMusicians(ctx, contractID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list contract musicians", err)
	}
	out := &dto.MonthlyContractDetail{Contract: contract, Musicians: []dto.ContractMusicianSummary{}}
	for _, m := range musicians {
		dates, err := s.deps.Contracts.ListDates(ctx, m.ID)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list contract dates", err)
		}
		out.Musicians = append(out.Musicians, dto.ContractMusicianSummary{
			MonthlyContractMusician: m,
			AggregateStatus:         aggregate(dates),
			Dates:                   dates,
		})
	}
	return out, nil
}

// moveDates writes the new date status, carries the outcome onto the
// planner assignments and reconciles availability for every date that was
// not already cancelled. It runs inside the caller's transaction.
func (s *ContractService) moveDates(ctx context.Context, m *entity.MonthlyContractMusician, to entity.DateStatus, actor string) error {
	dates, err := s.deps.Contracts.ListDates(ctx, m.ID)
	if err != nil {
		return err
	}
	if err := s.deps.Contracts.SetDateStatus(ctx, m.ID, to); err != nil {
		return err
	}

	if status, ok := assignmentStatusFor(to); ok {
		var ids []uuid.UUID
		for _, d := range dates {
			if d.AssignmentID != nil && d.Status != entity.DateStatusCancelled {
				ids = append(ids, *d.AssignmentID)
			}
		}
		if err := s.deps.Planner.MoveAssignments(ctx, ids, status); err != nil {
			return err
		}
	}

	for _, d := range dates {
		if d.Status == entity.DateStatusCancelled {
			continue
		}
		s.deps.Sync.Reconcile(ctx, syncService.Transition{
			MusicianID: m.MusicianID,
			Date:       d.Date,
			OldStatus:  d.Status,
			NewStatus:  to,
			Owner:      m.ID,
			OwnerType:  ownerMonthlyContract,
			Actor:      actor,
		})
	}
	return nil
}

func assignmentStatusFor(to entity.DateStatus) (plannerEntity.AssignmentStatus, bool) {
	switch to {
	case entity.DateStatusSigned:
		return plannerEntity.AssignmentStatusSigned, true
	case entity.DateStatusRejected, entity.DateStatusCancelled:
		return plannerEntity.AssignmentStatusCancelled, true
	}
	return "", false
}

func (s *ContractService) getMusician(ctx context.Context, id uuid.UUID) (*entity.MonthlyContractMusician, error) {
	m, err := s.deps.Contracts.GetMusician(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get contract", err)
	}
	if m == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "contract not found", nil)
	}
	return m, nil
}

func (s *ContractService) terms(c *entity.MonthlyContract) string {
	if c.TermsAndConditions != "" {
		return c.TermsAndConditions
	}
	return s.deps.Options.TermsAndConditions
}

func (s *ContractService) record(ctx context.Context, id uuid.UUID, action, actor string, detail activityEntity.Detail) {
	telemetry.ContractTransitions.WithLabelValues("monthly", strings.TrimPrefix(action, "contract.")).Inc()
	s.deps.Activity.Record(ctx, &activityEntity.Activity{
		EntityType: activityEntity.EntityMonthlyContractMusician,
		EntityID:   id,
		Action:     action,
		Actor:      actor,
		Detail:     detail,
	})
}

type emailPayload struct {
	ContractMusicianID uuid.UUID `json:"contract_musician_id"`
}

func (s *ContractService) handleEmailStep(ctx context.Context, payload json.RawMessage) error {
	var p emailPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	m, err := s.getMusician(ctx, p.ContractMusicianID)
	if err != nil {
		return err
	}
	contract, err := s.deps.Contracts.GetContract(ctx, m.ContractID)
	if err != nil || contract == nil {
		return fmt.Errorf("contract %s not loadable: %w", m.ContractID, err)
	}
	musician, err := s.deps.Musicians.GetByID(ctx, m.MusicianID)
	if err != nil {
		return err
	}
	dates, err := s.deps.Contracts.ListDates(ctx, m.ID)
	if err != nil {
		return err
	}

	msg := notificationEntity.ContractEmail{
		To:           musician.Email,
		MusicianName: musician.Name,
		Subject:      fmt.Sprintf("Your contract for %02d/%d", contract.Month, contract.Year),
		TotalFee:     m.TotalFee,
		ResponseURL:  responseURL(s.deps.Options.ResponseBaseURL, m.Token, &contract.ID),
	}
	for _, d := range dates {
		msg.Dates = append(msg.Dates, notificationEntity.EmailDate{
			Date:      d.Date,
			Venue:     d.VenueName,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
			Fee:       d.Fee,
		})
	}
	if !s.deps.Mailer.SendContractEmail(ctx, msg) {
		return errors.NewAppError(errors.ErrDownstream, "contract email was not delivered", nil)
	}
	return nil
}

type notifyPayload struct {
	ContractMusicianID uuid.UUID `json:"contract_musician_id"`
	Action             string    `json:"action"`
	Comments           string    `json:"comments"`
}

func (s *ContractService) handleNotifyStep(ctx context.Context, payload json.RawMessage) error {
	var p notifyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	m, err := s.getMusician(ctx, p.ContractMusicianID)
	if err != nil {
		return err
	}
	contract, err := s.deps.Contracts.GetContract(ctx, m.ContractID)
	if err != nil || contract == nil {
		return fmt.Errorf("contract %s not loadable: %w", m.ContractID, err)
	}
	musician, err := s.deps.Musicians.GetByID(ctx, m.MusicianID)
	if err != nil {
		return err
	}

	label := fmt.Sprintf("the %02d/%d contract", contract.Month, contract.Year)
	if s.deps.Options.NotifyEmail != "" && !s.deps.Mailer.SendContractResponseNotification(ctx, notificationEntity.ContractResponse{
		To:           s.deps.Options.NotifyEmail,
		MusicianName: musician.Name,
		Contract:     label,
		Action:       p.Action,
		Comments:     p.Comments,
	}) {
		return errors.NewAppError(errors.ErrDownstream, "response notification was not delivered", nil)
	}

	if contract.CreatedBy == nil {
		return nil
	}
	return s.deps.Notifier.Create(ctx, &notificationDto.CreateNotificationRequest{
		UserID:  *contract.CreatedBy,
		Title:   "Contract " + pastTense(p.Action),
		Message: fmt.Sprintf("%s %s %s.", musician.Name, pastTense(p.Action), label),
		Type:    notificationType(p.Action),
		Data: map[string]any{
			"contract_id":          contract.ID.String(),
			"contract_musician_id": m.ID.String(),
			"comments":             p.Comments,
		},
	})
}

func aggregate(dates []entity.MonthlyContractDate) entity.DateStatus {
	statuses := make([]entity.DateStatus, len(dates))
	for i, d := range dates {
		statuses[i] = d.Status
	}
	return entity.AggregateStatus(statuses)
}

func validateRespond(token, action string) error {
	if strings.TrimSpace(token) == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "token is required", nil)
	}
	if action != ActionSign && action != ActionReject {
		return errors.NewAppError(errors.ErrInvalidInput, "action must be sign or reject", nil)
	}
	return nil
}

func responseURL(base, token string, contractID *uuid.UUID) string {
	q := url.Values{}
	q.Set("token", token)
	if contractID != nil {
		q.Set("id", contractID.String())
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

func pastTense(action string) string {
	if action == ActionSign {
		return "signed"
	}
	return "rejected"
}

func notificationType(action string) string {
	if action == ActionSign {
		return notificationEntity.TypeContractSigned
	}
	return notificationEntity.TypeContractRejected
}
