package service

import (
	"context"
	"testing"

	"go-musician-booking/core/errors"
	"go-musician-booking/modules/contract/entity"
	"go-musician-booking/modules/contract/repository"
	invoiceRepo "go-musician-booking/modules/invoice/repository"
	invoiceService "go-musician-booking/modules/invoice/service"
	"go-musician-booking/modules/planner/dto"
	plannerEntity "go-musician-booking/modules/planner/entity"
	plannerService "go-musician-booking/modules/planner/service"

	"github.com/google/uuid"
)

func int64Ptr(v int64) *int64 { return &v }

func TestGenerateMonthlyContracts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	known := h.musician(t, "pia")
	unknown := uuid.New()

	planner, err := h.planners.CreatePlanner(ctx, &dto.CreatePlannerRequest{Name: "March", Month: 3, Year: 2025}, h.staff)
	if err != nil {
		t.Fatalf("CreatePlanner() error = %v", err)
	}
	category := uuid.New()
	first, err := h.planners.AddSlot(ctx, planner.ID, &dto.CreateSlotRequest{CategoryID: category, VenueName: "Hall", Date: "2025-03-07", StartTime: "20:00", EndTime: "23:00"})
	if err != nil {
		t.Fatalf("AddSlot() error = %v", err)
	}
	second, err := h.planners.AddSlot(ctx, planner.ID, &dto.CreateSlotRequest{CategoryID: category, VenueName: "Hall", Date: "2025-03-14", StartTime: "20:00", EndTime: "23:00"})
	if err != nil {
		t.Fatalf("AddSlot() error = %v", err)
	}

	a1, err := h.planners.Assign(ctx, first.ID, &dto.AssignRequest{MusicianID: known, AgreedRate: int64Ptr(12000)})
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	a2, err := h.planners.Assign(ctx, second.ID, &dto.AssignRequest{MusicianID: known, AgreedRate: int64Ptr(8000)})
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	a3, err := h.planners.Assign(ctx, second.ID, &dto.AssignRequest{MusicianID: unknown, AgreedRate: int64Ptr(5000)})
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	stray := uuid.New()

	req := GenerateRequest{
		PlannerID:     planner.ID,
		AssignmentIDs: []uuid.UUID{a1.ID, a2.ID, a3.ID, stray},
		Actor:         &h.staff,
	}
	res, err := h.generator.GenerateMonthlyContracts(ctx, req)
	if err != nil {
		t.Fatalf("GenerateMonthlyContracts() error = %v", err)
	}
	if res.Month != 3 || res.Year != 2025 {
		t.Errorf("month/year = %d/%d", res.Month, res.Year)
	}
	if res.Created != 1 || res.Failed != 1 {
		t.Errorf("created = %d failed = %d, want 1 and 1", res.Created, res.Failed)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0] != stray {
		t.Errorf("unresolved = %v, want [%s]", res.Unresolved, stray)
	}

	outcomes := map[uuid.UUID]MusicianOutcome{}
	for _, o := range res.Musicians {
		outcomes[o.MusicianID] = o
	}
	if o := outcomes[known]; o.Outcome != OutcomeCreated || o.TotalFee != 20000 || o.ContractMusicianID == nil {
		t.Errorf("known musician outcome = %+v", o)
	}
	if o := outcomes[unknown]; o.Outcome != OutcomeFailed || o.Error == "" {
		t.Errorf("unknown musician outcome = %+v", o)
	}

	created := outcomes[known].ContractMusicianID
	dates, err := h.contractRepo.ListDates(ctx, *created)
	if err != nil || len(dates) != 2 {
		t.Fatalf("ListDates() = %d dates, %v", len(dates), err)
	}
	for _, d := range dates {
		if d.AssignmentID == nil {
			t.Errorf("date %s has no assignment", d.Date)
		}
	}

	again, err := h.generator.GenerateMonthlyContracts(ctx, req)
	if err != nil {
		t.Fatalf("second GenerateMonthlyContracts() error = %v", err)
	}
	if again.ContractID != res.ContractID {
		t.Errorf("contract id changed: %s -> %s", res.ContractID, again.ContractID)
	}
	for _, o := range again.Musicians {
		if o.MusicianID == known && o.Outcome != OutcomeAlreadyExists {
			t.Errorf("rerun outcome = %s, want already_exists", o.Outcome)
		}
	}
	if again.Created != 0 {
		t.Errorf("rerun created = %d, want 0", again.Created)
	}
}

func TestGenerateMonthlyContractsValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.generator.GenerateMonthlyContracts(ctx, GenerateRequest{AssignmentIDs: []uuid.UUID{uuid.New()}}); !errors.Is(err, errors.ValidationError) {
		t.Errorf("missing planner error = %v", err)
	}
	if _, err := h.generator.GenerateMonthlyContracts(ctx, GenerateRequest{PlannerID: uuid.New()}); !errors.Is(err, errors.ValidationError) {
		t.Errorf("missing assignments error = %v", err)
	}
	if _, err := h.generator.GenerateMonthlyContracts(ctx, GenerateRequest{PlannerID: uuid.New(), AssignmentIDs: []uuid.UUID{uuid.New()}}); !errors.Is(err, errors.NotFound) {
		t.Errorf("unknown planner error = %v", err)
	}
}

func TestSignedContractIsInvoiced(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	signer := h.musician(t, "kim")
	decliner := h.musician(t, "lou")

	planner, err := h.planners.CreatePlanner(ctx, &dto.CreatePlannerRequest{Name: "March", Month: 3, Year: 2025}, h.staff)
	if err != nil {
		t.Fatalf("CreatePlanner() error = %v", err)
	}
	slot, err := h.planners.AddSlot(ctx, planner.ID, &dto.CreateSlotRequest{CategoryID: uuid.New(), VenueName: "Hall", Date: "2025-03-10", StartTime: "20:00", EndTime: "23:00"})
	if err != nil {
		t.Fatalf("AddSlot() error = %v", err)
	}
	signed, err := h.planners.Assign(ctx, slot.ID, &dto.AssignRequest{MusicianID: signer, AgreedRate: int64Ptr(300)})
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	declined, err := h.planners.Assign(ctx, slot.ID, &dto.AssignRequest{MusicianID: decliner, AgreedRate: int64Ptr(250)})
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	res, err := h.generator.GenerateMonthlyContracts(ctx, GenerateRequest{
		PlannerID:     planner.ID,
		AssignmentIDs: []uuid.UUID{signed.ID, declined.ID},
		Actor:         &h.staff,
	})
	if err != nil {
		t.Fatalf("GenerateMonthlyContracts() error = %v", err)
	}
	if res.Created != 2 {
		t.Fatalf("created = %d, want 2", res.Created)
	}

	answers := map[uuid.UUID]string{signer: ActionSign, decliner: ActionReject}
	for _, o := range res.Musicians {
		m, err := h.contractRepo.GetMusician(ctx, *o.ContractMusicianID)
		if err != nil || m == nil {
			t.Fatalf("GetMusician() = %v, %v", m, err)
		}
		if _, err := h.contracts.Send(ctx, m.ID, "staff"); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if _, err := h.contracts.Respond(ctx, RespondInput{Token: m.Token, Action: answers[o.MusicianID]}); err != nil {
			t.Fatalf("Respond() error = %v", err)
		}
	}

	want := map[uuid.UUID]plannerEntity.AssignmentStatus{
		signed.ID:   plannerEntity.AssignmentStatusSigned,
		declined.ID: plannerEntity.AssignmentStatusCancelled,
	}
	details, err := h.planners.ListAssignments(ctx, planner.ID, nil)
	if err != nil {
		t.Fatalf("ListAssignments() error = %v", err)
	}
	for _, d := range details {
		if d.Status != want[d.ID] {
			t.Errorf("assignment %s status = %s, want %s", d.ID, d.Status, want[d.ID])
		}
	}

	invoices := invoiceService.NewInvoiceService(invoiceRepo.NewMemoryInvoiceRepository(), h.planners,
		plannerService.NewFeeResolver(h.musicians), h.tx, h.activity)
	got, err := invoices.GenerateInvoices(ctx, planner.ID, "staff")
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("invoices = %d, want 1", len(got))
	}
	if got[0].MusicianID != signer || got[0].TotalAmount != 300 {
		t.Errorf("invoice = musician %s total %d, want %s 300", got[0].MusicianID, got[0].TotalAmount, signer)
	}
}

type upsertCounter struct {
	repository.MonthlyContractRepository
	upserts int
}

func (c *upsertCounter) UpsertContract(ctx context.Context, mc *entity.MonthlyContract) (*entity.MonthlyContract, error) {
	c.upserts++
	return c.MonthlyContractRepository.UpsertContract(ctx, mc)
}

func TestGenerateWithNothingResolvedWritesNoContract(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	counter := &upsertCounter{MonthlyContractRepository: h.contractRepo}
	generator := NewGeneratorService(h.planners, plannerService.NewFeeResolver(h.musicians), counter, h.contracts, "")

	planner, err := h.planners.CreatePlanner(ctx, &dto.CreatePlannerRequest{Name: "April", Month: 4, Year: 2025}, h.staff)
	if err != nil {
		t.Fatalf("CreatePlanner() error = %v", err)
	}
	stray := []uuid.UUID{uuid.New(), uuid.New()}

	res, err := generator.GenerateMonthlyContracts(ctx, GenerateRequest{PlannerID: planner.ID, AssignmentIDs: stray})
	if err != nil {
		t.Fatalf("GenerateMonthlyContracts() error = %v", err)
	}
	if counter.upserts != 0 {
		t.Errorf("UpsertContract calls = %d, want 0", counter.upserts)
	}
	if res.ContractID != uuid.Nil || len(res.Musicians) != 0 {
		t.Errorf("result = %+v, want no contract", res)
	}
	if len(res.Unresolved) != 2 || res.Month != 4 || res.Year != 2025 {
		t.Errorf("unresolved = %v month/year = %d/%d", res.Unresolved, res.Month, res.Year)
	}
}
