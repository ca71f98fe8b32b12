package service

import (
	"context"
	"strings"
	"time"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	"go-musician-booking/modules/planner/dto"
	"go-musician-booking/modules/planner/entity"
	"go-musician-booking/modules/planner/repository"

	"github.com/google/uuid"
)

type PlannerService struct {
	repo repository.PlannerRepository
}

func NewPlannerService(repo repository.PlannerRepository) *PlannerService {
	return &PlannerService{repo: repo}
}

func (s *PlannerService) CreatePlanner(ctx context.Context, req *dto.CreatePlannerRequest, actor uuid.UUID) (*entity.Planner, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "name is required", nil)
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid month or year", nil)
	}

	now := time.Now()
	p := &entity.Planner{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Month:     req.Month,
		Year:      req.Year,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if actor != uuid.Nil {
		p.CreatedBy = &actor
	}
	if err := s.repo.CreatePlanner(ctx, p); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create planner", err)
	}
	return p, nil
}

func (s *PlannerService) GetPlanner(ctx context.Context, id uuid.UUID) (*entity.Planner, error) {
	p, err := s.repo.GetPlanner(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get planner", err)
	}
	if p == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "planner not found", nil)
	}
	return p, nil
}

// AddSlot adds a performance slot; its date must fall in the planner's month.
func (s *PlannerService) AddSlot(ctx context.Context, plannerID uuid.UUID, req *dto.CreateSlotRequest) (*entity.PlannerSlot, error) {
	p, err := s.GetPlanner(ctx, plannerID)
	if err != nil {
		return nil, err
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid date", err)
	}
	if int(date.Month()) != p.Month || date.Year() != p.Year {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "slot date outside planner month", nil)
	}
	if _, ok := utils.DurationMinutes(req.StartTime, req.EndTime); !ok {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "start_time and end_time must be HH:MM", nil)
	}
	if req.CategoryID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "category_id is required", nil)
	}

	slot := &entity.PlannerSlot{
		ID:         uuid.New(),
		PlannerID:  plannerID,
		EventID:    req.EventID,
		CategoryID: req.CategoryID,
		VenueName:  req.VenueName,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.CreateSlot(ctx, slot); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create slot", err)
	}
	return slot, nil
}

func (s *PlannerService) Assign(ctx context.Context, slotID uuid.UUID, req *dto.AssignRequest) (*entity.PlannerAssignment, error) {
	if req.MusicianID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "musician_id is required", nil)
	}
	slot, err := s.repo.GetSlot(ctx, slotID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get slot", err)
	}
	if slot == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "slot not found", nil)
	}

	now := time.Now()
	a := &entity.PlannerAssignment{
		ID:         uuid.New(),
		SlotID:     slotID,
		MusicianID: req.MusicianID,
		Status:     entity.AssignmentStatusAssigned,
		AgreedRate: req.AgreedRate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateAssignment(ctx, a); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create assignment", err)
	}
	logger.Info("PlannerService:Assign:Success", "assignment_id", a.ID, "musician_id", a.MusicianID)
	return a, nil
}

func (s *PlannerService) UpdateAssignment(ctx context.Context, id uuid.UUID, req *dto.UpdateAssignmentRequest) (*entity.PlannerAssignment, error) {
	d, err := s.repo.GetAssignment(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get assignment", err)
	}
	if d == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "assignment not found", nil)
	}

	a := d.PlannerAssignment
	if req.Status != "" {
		status := entity.AssignmentStatus(req.Status)
		if !status.Valid() {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "invalid assignment status", nil)
		}
		a.Status = status
	}
	if req.AgreedRate != nil {
		a.AgreedRate = req.AgreedRate
	}
	if req.ActualFee != nil {
		a.ActualFee = req.ActualFee
	}
	a.UpdatedAt = time.Now()

	if err := s.repo.UpdateAssignment(ctx, &a); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to update assignment", err)
	}
	return &a, nil
}

// MoveAssignments follows a contract outcome onto its assignments. Signing
// only promotes assigned rows; cancelling withdraws assigned and signed rows.
// Attended and no-show records are never rewritten.
func (s *PlannerService) MoveAssignments(ctx context.Context, ids []uuid.UUID, to entity.AssignmentStatus) error {
	if len(ids) == 0 {
		return nil
	}

	var from []entity.AssignmentStatus
	switch to {
	case entity.AssignmentStatusSigned:
		from = []entity.AssignmentStatus{entity.AssignmentStatusAssigned}
	case entity.AssignmentStatusCancelled:
		from = []entity.AssignmentStatus{entity.AssignmentStatusAssigned, entity.AssignmentStatusSigned}
	default:
		return errors.NewAppError(errors.ErrInvalidInput, "assignments can only follow a contract to signed or cancelled", nil)
	}

	n, err := s.repo.SetStatus(ctx, ids, from, to, time.Now())
	if err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "failed to update assignments", err)
	}
	logger.Info("PlannerService:MoveAssignments", "requested", len(ids), "moved", n, "status", to)
	return nil
}

func (s *PlannerService) ListAssignments(ctx context.Context, plannerID uuid.UUID, ids []uuid.UUID, statuses ...entity.AssignmentStatus) ([]entity.AssignmentDetail, error) {
	items, err := s.repo.ListAssignments(ctx, plannerID, ids, statuses)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list assignments", err)
	}
	return items, nil
}
