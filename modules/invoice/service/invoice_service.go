package service

import (
	"context"
	"strings"
	"time"

	"go-musician-booking/core/constants"
	"go-musician-booking/core/database"
	"go-musician-booking/core/errors"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	activityEntity "go-musician-booking/modules/activity/entity"
	"go-musician-booking/modules/invoice/entity"
	"go-musician-booking/modules/invoice/repository"
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

type ActivityRecorder interface {
	Record(ctx context.Context, a *activityEntity.Activity)
}

type InvoiceService struct {
	repo     repository.InvoiceRepository
	planners PlannerSource
	fees     FeeSource
	tx       database.Transactor
	activity ActivityRecorder
}

func NewInvoiceService(repo repository.InvoiceRepository, planners PlannerSource, fees FeeSource, tx database.Transactor, activity ActivityRecorder) *InvoiceService {
	return &InvoiceService{
		repo:     repo,
		planners: planners,
		fees:     fees,
		tx:       tx,
		activity: activity,
	}
}

// GenerateInvoices bills every attended or signed assignment of the planner,
// one invoice per musician. Re-running refreshes drafts, empties drafts left
// without billable work and leaves finalized and paid invoices untouched.
func (s *InvoiceService) GenerateInvoices(ctx context.Context, plannerID uuid.UUID, actor string) ([]entity.MonthlyInvoice, error) {
	if plannerID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "planner_id is required", nil)
	}
	planner, err := s.planners.GetPlanner(ctx, plannerID)
	if err != nil {
		return nil, err
	}

	details, err := s.planners.ListAssignments(ctx, plannerID, nil,
		plannerEntity.AssignmentStatusAttended,
		plannerEntity.AssignmentStatusSigned,
	)
	if err != nil {
		return nil, err
	}

	var order []uuid.UUID
	items := make(map[uuid.UUID]entity.LineItems)
	for _, d := range details {
		fee, err := s.fees.Resolve(ctx, d)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "failed to resolve fee", err)
		}
		if _, ok := items[d.MusicianID]; !ok {
			order = append(order, d.MusicianID)
		}
		items[d.MusicianID] = append(items[d.MusicianID], entity.LineItem{
			AssignmentID: d.ID,
			Date:         utils.FormatDate(d.Slot.Date),
			VenueName:    d.Slot.VenueName,
			StartTime:    d.Slot.StartTime,
			EndTime:      d.Slot.EndTime,
			Fee:          fee,
		})
	}

	now := time.Now()
	invoices := make([]entity.MonthlyInvoice, 0, len(order))
	var cleared []entity.MonthlyInvoice
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		for _, musicianID := range order {
			lines := items[musicianID]
			inv, err := s.repo.Upsert(ctx, &entity.MonthlyInvoice{
				ID:          uuid.New(),
				PlannerID:   plannerID,
				MusicianID:  musicianID,
				Month:       planner.Month,
				Year:        planner.Year,
				TotalAmount: lines.Total(),
				Status:      entity.InvoiceStatusDraft,
				LineItems:   lines,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
			invoices = append(invoices, *inv)
		}

		stale, err := s.clearStaleDrafts(ctx, planner.ID, planner.Month, planner.Year, items, now)
		if err != nil {
			return err
		}
		cleared = stale
		return nil
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to generate invoices", err)
	}

	for _, inv := range cleared {
		s.record(ctx, inv.ID, "invoice.clear", actor, activityEntity.Detail{
			"planner_id": plannerID.String(),
			"reason":     "no billable assignments",
		})
	}

	for _, inv := range invoices {
		s.record(ctx, inv.ID, "invoice.generate", actor, activityEntity.Detail{
			"planner_id":   plannerID.String(),
			"total_amount": inv.TotalAmount,
			"status":       string(inv.Status),
		})
	}
	logger.Info("InvoiceService:GenerateInvoices", "planner_id", plannerID, "invoices", len(invoices))
	return invoices, nil
}

// clearStaleDrafts empties the drafts of musicians who no longer have a
// billable assignment in the planner.
func (s *InvoiceService) clearStaleDrafts(ctx context.Context, plannerID uuid.UUID, month, year int, billed map[uuid.UUID]entity.LineItems, now time.Time) ([]entity.MonthlyInvoice, error) {
	existing, err := s.repo.ListByPlanner(ctx, plannerID)
	if err != nil {
		return nil, err
	}

	var cleared []entity.MonthlyInvoice
	for _, inv := range existing {
		if inv.Status != entity.InvoiceStatusDraft || inv.Month != month || inv.Year != year {
			continue
		}
		if _, ok := billed[inv.MusicianID]; ok {
			continue
		}
		if inv.TotalAmount == 0 && len(inv.LineItems) == 0 {
			continue
		}
		row, err := s.repo.Upsert(ctx, &entity.MonthlyInvoice{
			ID:          inv.ID,
			PlannerID:   plannerID,
			MusicianID:  inv.MusicianID,
			Month:       month,
			Year:        year,
			TotalAmount: 0,
			Status:      entity.InvoiceStatusDraft,
			LineItems:   entity.LineItems{},
			CreatedAt:   now,
		})
		if err != nil {
			return nil, err
		}
		cleared = append(cleared, *row)
	}
	return cleared, nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*entity.MonthlyInvoice, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get invoice", err)
	}
	if inv == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "invoice not found", nil)
	}
	return inv, nil
}

func (s *InvoiceService) ListByPlanner(ctx context.Context, plannerID uuid.UUID) ([]entity.MonthlyInvoice, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	items, err := s.repo.ListByPlanner(ctx, plannerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to list invoices", err)
	}
	return items, nil
}

func (s *InvoiceService) Finalize(ctx context.Context, id uuid.UUID, actor string) (*entity.MonthlyInvoice, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.Finalize(ctx, id, time.Now())
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to finalize invoice", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrInvalidState, "only draft invoices can be finalized, invoice is "+string(inv.Status), nil)
	}

	s.record(ctx, id, "invoice.finalize", actor, activityEntity.Detail{"from": string(inv.Status), "to": "finalized"})
	return s.GetByID(ctx, id)
}

func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID, notes, actor string) (*entity.MonthlyInvoice, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var note *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		note = &trimmed
	}
	ok, err := s.repo.MarkPaid(ctx, id, note, time.Now())
	if err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to mark invoice as paid", err)
	}
	if !ok {
		return nil, errors.NewAppError(errors.ErrInvalidState, "only finalized invoices can be paid, invoice is "+string(inv.Status), nil)
	}

	s.record(ctx, id, "invoice.paid", actor, activityEntity.Detail{"from": string(inv.Status), "to": "paid", "notes": notes})
	return s.GetByID(ctx, id)
}

func (s *InvoiceService) record(ctx context.Context, id uuid.UUID, action, actor string, detail activityEntity.Detail) {
	s.activity.Record(ctx, &activityEntity.Activity{
		EntityType: activityEntity.EntityMonthlyInvoice,
		EntityID:   id,
		Action:     action,
		Actor:      actor,
		Detail:     detail,
	})
}
