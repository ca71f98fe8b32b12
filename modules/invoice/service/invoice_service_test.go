package service

import (
	"context"
	"testing"

	"go-musician-booking/core/database"
	"go-musician-booking/core/errors"
	activityRepo "go-musician-booking/modules/activity/repository"
	activityService "go-musician-booking/modules/activity/service"
	"go-musician-booking/modules/invoice/entity"
	"go-musician-booking/modules/invoice/repository"
	musicianEntity "go-musician-booking/modules/musician/entity"
	musicianRepo "go-musician-booking/modules/musician/repository"
	"go-musician-booking/modules/planner/dto"
	plannerRepo "go-musician-booking/modules/planner/repository"
	plannerService "go-musician-booking/modules/planner/service"

	"github.com/google/uuid"
)

type fixture struct {
	invoices *InvoiceService
	planners *plannerService.PlannerService
	rates    musicianRepo.MusicianRepository
	planner  uuid.UUID
	category uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rates := musicianRepo.NewMemoryMusicianRepository()
	planners := plannerService.NewPlannerService(plannerRepo.NewMemoryPlannerRepository())
	tx := database.NewMemoryTransactor()
	activity := activityService.NewActivityService(activityRepo.NewMemoryActivityRepository(), tx)

	p, err := planners.CreatePlanner(context.Background(), &dto.CreatePlannerRequest{Name: "March", Month: 3, Year: 2025}, uuid.New())
	if err != nil {
		t.Fatalf("CreatePlanner() error = %v", err)
	}
	return &fixture{
		invoices: NewInvoiceService(repository.NewMemoryInvoiceRepository(), planners, plannerService.NewFeeResolver(rates), tx, activity),
		planners: planners,
		rates:    rates,
		planner:  p.ID,
		category: uuid.New(),
	}
}

// gig adds a slot and assigns musicianID to it with the given status.
func (f *fixture) gig(t *testing.T, musicianID uuid.UUID, date, start, end, status string, actualFee *int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	slot, err := f.planners.AddSlot(ctx, f.planner, &dto.CreateSlotRequest{CategoryID: f.category, VenueName: "Jazz Bar", Date: date, StartTime: start, EndTime: end})
	if err != nil {
		t.Fatalf("AddSlot() error = %v", err)
	}
	a, err := f.planners.Assign(ctx, slot.ID, &dto.AssignRequest{MusicianID: musicianID})
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if _, err := f.planners.UpdateAssignment(ctx, a.ID, &dto.UpdateAssignmentRequest{Status: status, ActualFee: actualFee}); err != nil {
		t.Fatalf("UpdateAssignment() error = %v", err)
	}
	return a.ID
}

func fee(v int64) *int64 { return &v }

func TestInvoiceLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	musicianID := uuid.New()
	f.gig(t, musicianID, "2025-03-05", "20:00", "23:00", "attended", fee(300))

	invoices, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("invoices = %d, want 1", len(invoices))
	}
	inv := invoices[0]
	if inv.MusicianID != musicianID || inv.Month != 3 || inv.Year != 2025 || inv.TotalAmount != 300 || inv.Status != entity.InvoiceStatusDraft {
		t.Fatalf("invoice = %+v", inv)
	}

	finalized, err := f.invoices.Finalize(ctx, inv.ID, "staff")
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if finalized.Status != entity.InvoiceStatusFinalized || finalized.FinalizedAt == nil {
		t.Errorf("finalized = %+v", finalized)
	}

	paid, err := f.invoices.MarkPaid(ctx, inv.ID, "bank transfer", "staff")
	if err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}
	if paid.Status != entity.InvoiceStatusPaid || paid.PaidAt == nil || paid.Notes == nil || *paid.Notes != "bank transfer" {
		t.Errorf("paid = %+v", paid)
	}

	if _, err := f.invoices.Finalize(ctx, inv.ID, "staff"); !errors.Is(err, errors.InvalidStateError) {
		t.Errorf("Finalize() on paid error = %v, want invalid state", err)
	}
	if _, err := f.invoices.MarkPaid(ctx, inv.ID, "", "staff"); !errors.Is(err, errors.InvalidStateError) {
		t.Errorf("MarkPaid() on paid error = %v, want invalid state", err)
	}
}

func TestMarkPaidRequiresFinalized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gig(t, uuid.New(), "2025-03-06", "20:00", "22:00", "signed", fee(100))

	invoices, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if _, err := f.invoices.MarkPaid(ctx, invoices[0].ID, "", "staff"); !errors.Is(err, errors.InvalidStateError) {
		t.Errorf("MarkPaid() on draft error = %v, want invalid state", err)
	}
	if _, err := f.invoices.Finalize(ctx, uuid.New(), "staff"); !errors.Is(err, errors.NotFound) {
		t.Errorf("Finalize(unknown) error = %v, want not found", err)
	}
}

func TestGenerateInvoicesIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()
	f.gig(t, a, "2025-03-01", "20:00", "23:00", "attended", fee(200))
	f.gig(t, a, "2025-03-08", "20:00", "23:00", "signed", fee(250))
	f.gig(t, b, "2025-03-08", "20:00", "23:00", "attended", fee(400))
	f.gig(t, b, "2025-03-09", "20:00", "23:00", "assigned", fee(999))
	f.gig(t, b, "2025-03-10", "20:00", "23:00", "no_show", fee(999))

	first, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	second, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("second GenerateInvoices() error = %v", err)
	}

	totals := map[uuid.UUID]int64{}
	for _, inv := range first {
		totals[inv.MusicianID] = inv.TotalAmount
	}
	if totals[a] != 450 || totals[b] != 400 {
		t.Errorf("totals = %v, want a=450 b=400", totals)
	}
	for _, inv := range second {
		if inv.TotalAmount != totals[inv.MusicianID] {
			t.Errorf("musician %s total changed to %d", inv.MusicianID, inv.TotalAmount)
		}
	}

	stored, err := f.invoices.ListByPlanner(ctx, f.planner)
	if err != nil {
		t.Fatalf("ListByPlanner() error = %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored invoices = %d, want 2", len(stored))
	}
}

func TestFinalizedInvoiceNotRewritten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	musicianID := uuid.New()
	f.gig(t, musicianID, "2025-03-02", "20:00", "23:00", "attended", fee(100))

	first, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if _, err := f.invoices.Finalize(ctx, first[0].ID, "staff"); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	f.gig(t, musicianID, "2025-03-03", "20:00", "23:00", "attended", fee(500))
	again, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if again[0].TotalAmount != 100 || again[0].Status != entity.InvoiceStatusFinalized {
		t.Errorf("finalized invoice rewritten: %+v", again[0])
	}
}

func TestGenerateInvoicesRateCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	musicianID := uuid.New()
	err := f.rates.UpsertPayRate(ctx, &musicianEntity.PayRate{
		MusicianID: musicianID,
		CategoryID: f.category,
		HourlyRate: fee(60),
		DayRate:    fee(500),
	})
	if err != nil {
		t.Fatalf("UpsertPayRate() error = %v", err)
	}

	// Four hours exactly stays hourly; five hours takes the day rate.
	f.gig(t, musicianID, "2025-03-11", "18:00", "22:00", "attended", nil)
	f.gig(t, musicianID, "2025-03-12", "17:00", "22:00", "attended", nil)

	invoices, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("invoices = %d, want 1", len(invoices))
	}
	if got := invoices[0].TotalAmount; got != 240+500 {
		t.Errorf("total = %d, want %d", got, 240+500)
	}
	if len(invoices[0].LineItems) != 2 {
		t.Errorf("line items = %+v", invoices[0].LineItems)
	}
}

func TestGenerateInvoicesUnknownPlanner(t *testing.T) {
	f := newFixture(t)
	if _, err := f.invoices.GenerateInvoices(context.Background(), uuid.New(), "staff"); !errors.Is(err, errors.NotFound) {
		t.Errorf("error = %v, want not found", err)
	}
	if _, err := f.invoices.GenerateInvoices(context.Background(), uuid.Nil, "staff"); !errors.Is(err, errors.ValidationError) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestGenerateInvoicesClearsStaleDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kept, dropped := uuid.New(), uuid.New()
	f.gig(t, kept, "2025-03-04", "20:00", "23:00", "attended", fee(300))
	gone := f.gig(t, dropped, "2025-03-05", "20:00", "23:00", "signed", fee(450))

	first, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("invoices = %d, want 2", len(first))
	}

	if _, err := f.planners.UpdateAssignment(ctx, gone, &dto.UpdateAssignmentRequest{Status: "cancelled"}); err != nil {
		t.Fatalf("UpdateAssignment() error = %v", err)
	}
	second, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("second GenerateInvoices() error = %v", err)
	}
	if len(second) != 1 || second[0].MusicianID != kept {
		t.Fatalf("second run = %+v, want only the kept musician", second)
	}

	all, err := f.invoices.ListByPlanner(ctx, f.planner)
	if err != nil {
		t.Fatalf("ListByPlanner() error = %v", err)
	}
	for _, inv := range all {
		switch inv.MusicianID {
		case dropped:
			if inv.TotalAmount != 0 || len(inv.LineItems) != 0 || inv.Status != entity.InvoiceStatusDraft {
				t.Errorf("stale draft = total %d, %d lines, %s; want emptied draft", inv.TotalAmount, len(inv.LineItems), inv.Status)
			}
		case kept:
			if inv.TotalAmount != 300 {
				t.Errorf("kept total = %d, want 300", inv.TotalAmount)
			}
		}
	}
}

func TestFinalizedInvoiceSurvivesLostAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	musicianID := uuid.New()
	gig := f.gig(t, musicianID, "2025-03-04", "20:00", "23:00", "attended", fee(300))

	invoices, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff")
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if _, err := f.invoices.Finalize(ctx, invoices[0].ID, "staff"); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if _, err := f.planners.UpdateAssignment(ctx, gig, &dto.UpdateAssignmentRequest{Status: "no_show"}); err != nil {
		t.Fatalf("UpdateAssignment() error = %v", err)
	}
	if _, err := f.invoices.GenerateInvoices(ctx, f.planner, "staff"); err != nil {
		t.Fatalf("second GenerateInvoices() error = %v", err)
	}

	inv, err := f.invoices.GetByID(ctx, invoices[0].ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if inv.TotalAmount != 300 || inv.Status != entity.InvoiceStatusFinalized {
		t.Errorf("finalized invoice = total %d %s, want 300 finalized", inv.TotalAmount, inv.Status)
	}
}
