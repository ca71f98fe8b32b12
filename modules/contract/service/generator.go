package service

import (
	"context"
	"time"

	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/modules/contract/entity"
	"go-musician-booking/modules/contract/repository"
	plannerEntity "go-musician-booking/modules/planner/entity"

	"github.com/google/uuid"
)

type PlannerSource interface {
	GetPlanner(ctx context.Context, id uuid.UUID) (*plannerEntity.Planner, error)
	ListAssignments(ctx context.Context, plannerID uuid.UUID, ids []uuid.UUID, statuses ...plannerEntity.AssignmentStatus) ([]plannerEntity.AssignmentDetail, error)
}

type FeeSource interface {
	Resolve(ctx context.Context, d plannerEntity.AssignmentDetail) (int64, error)
}

type GenerateRequest struct {
	PlannerID     uuid.UUID
	AssignmentIDs []uuid.UUID
	Actor         *uuid.UUID
}

const (
	OutcomeCreated       = "created"
	OutcomeAlreadyExists = "already_exists"
	OutcomeFailed        = "failed"
)

type MusicianOutcome struct {
	MusicianID         uuid.UUID   `json:"musician_id"`
	Outcome            string      `json:"outcome"`
	ContractMusicianID *uuid.UUID  `json:"contract_musician_id,omitempty"`
	AssignmentIDs      []uuid.UUID `json:"assignment_ids"`
	TotalFee           int64       `json:"total_fee"`
	Error              string      `json:"error,omitempty"`
}

type GenerateResult struct {
	// ContractID is zero when no assignment resolved.
	ContractID uuid.UUID         `json:"contract_id"`
	Month      int               `json:"month"`
	Year       int               `json:"year"`
	Musicians  []MusicianOutcome `json:"musicians"`
	// Unresolved lists requested assignments that do not belong to the
	// planner or are no longer active.
	Unresolved []uuid.UUID `json:"unresolved"`
	Created    int         `json:"created"`
	Failed     int         `json:"failed"`
}

// GeneratorService fans planner assignments out into monthly contracts.
type GeneratorService struct {
	planners  PlannerSource
	fees      FeeSource
	contracts repository.MonthlyContractRepository
	generate  *ContractService
	terms     string
}

func NewGeneratorService(planners PlannerSource, fees FeeSource, contracts repository.MonthlyContractRepository, generate *ContractService, terms string) *GeneratorService {
	return &GeneratorService{
		planners:  planners,
		fees:      fees,
		contracts: contracts,
		generate:  generate,
		terms:     terms,
	}
}

// GenerateMonthlyContracts creates one contract musician per musician among
// the selected assignments. A failing musician never aborts the batch.
func (s *GeneratorService) GenerateMonthlyContracts(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.PlannerID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "plannerId is required", nil)
	}
	if len(req.AssignmentIDs) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "at least one assignment is required", nil)
	}

	planner, err := s.planners.GetPlanner(ctx, req.PlannerID)
	if err != nil {
		return nil, err
	}

	details, err := s.planners.ListAssignments(ctx, planner.ID, req.AssignmentIDs,
		plannerEntity.AssignmentStatusAssigned,
		plannerEntity.AssignmentStatusAttended,
		plannerEntity.AssignmentStatusSigned,
	)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Month:      planner.Month,
		Year:       planner.Year,
		Musicians:  []MusicianOutcome{},
		Unresolved: []uuid.UUID{},
	}

	found := make(map[uuid.UUID]bool, len(details))
	var order []uuid.UUID
	byMusician := make(map[uuid.UUID][]plannerEntity.AssignmentDetail)
	for _, d := range details {
		found[d.ID] = true
		if _, ok := byMusician[d.MusicianID]; !ok {
			order = append(order, d.MusicianID)
		}
		byMusician[d.MusicianID] = append(byMusician[d.MusicianID], d)
	}
	seen := make(map[uuid.UUID]bool, len(req.AssignmentIDs))
	for _, id := range req.AssignmentIDs {
		if !found[id] && !seen[id] {
			result.Unresolved = append(result.Unresolved, id)
		}
		seen[id] = true
	}

	// Nothing resolved means nothing to contract; no monthly contract row
	// is written.
	if len(order) == 0 {
		logger.Warn("GeneratorService:GenerateMonthlyContracts:NothingResolved",
			"planner_id", planner.ID,
			"unresolved", len(result.Unresolved),
		)
		return result, nil
	}

	now := time.Now()
	contract, err := s.contracts.UpsertContract(ctx, &entity.MonthlyContract{
		ID:                 uuid.New(),
		PlannerID:          planner.ID,
		Month:              planner.Month,
		Year:               planner.Year,
		CreatedBy:          req.Actor,
		TermsAndConditions: s.terms,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create monthly contract", err)
	}
	result.ContractID = contract.ID

	actor := ""
	if req.Actor != nil {
		actor = req.Actor.String()
	}

	for _, musicianID := range order {
		outcome := s.generateFor(ctx, contract.ID, musicianID, byMusician[musicianID], actor)
		switch outcome.Outcome {
		case OutcomeCreated:
			result.Created++
		case OutcomeFailed:
			result.Failed++
		}
		result.Musicians = append(result.Musicians, outcome)
	}

	logger.Info("GeneratorService:GenerateMonthlyContracts",
		"planner_id", planner.ID,
		"contract_id", contract.ID,
		"created", result.Created,
		"failed", result.Failed,
		"unresolved", len(result.Unresolved),
	)
	return result, nil
}

func (s *GeneratorService) generateFor(ctx context.Context, contractID, musicianID uuid.UUID, assignments []plannerEntity.AssignmentDetail, actor string) MusicianOutcome {
	outcome := MusicianOutcome{MusicianID: musicianID}

	entries := make([]DateEntry, 0, len(assignments))
	for _, a := range assignments {
		outcome.AssignmentIDs = append(outcome.AssignmentIDs, a.ID)
		fee, err := s.fees.Resolve(ctx, a)
		if err != nil {
			outcome.Outcome = OutcomeFailed
			outcome.Error = "failed to resolve fee: " + err.Error()
			return outcome
		}
		id := a.ID
		entries = append(entries, DateEntry{
			AssignmentID: &id,
			Date:         a.Slot.Date,
			VenueName:    a.Slot.VenueName,
			StartTime:    a.Slot.StartTime,
			EndTime:      a.Slot.EndTime,
			Fee:          fee,
		})
		outcome.TotalFee += fee
	}

	m, err := s.generate.Generate(ctx, GenerateInput{
		ContractID: contractID,
		MusicianID: musicianID,
		Dates:      entries,
		Actor:      actor,
	})
	if err != nil {
		outcome.Outcome = OutcomeFailed
		if errors.CodeOf(err) == errors.ErrAlreadyExists {
			outcome.Outcome = OutcomeAlreadyExists
		}
		outcome.Error = err.Error()
		logger.Warn("GeneratorService:GenerateFor:Error", "musician_id", musicianID, "error", err)
		return outcome
	}

	outcome.Outcome = OutcomeCreated
	outcome.ContractMusicianID = &m.ID
	return outcome
}
