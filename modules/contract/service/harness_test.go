package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-musician-booking/core/database"
	coreEntity "go-musician-booking/core/entity"
	"go-musician-booking/core/saga"
	activityRepo "go-musician-booking/modules/activity/repository"
	activityService "go-musician-booking/modules/activity/service"
	availabilityRepo "go-musician-booking/modules/availability/repository"
	bookingRepo "go-musician-booking/modules/booking/repository"
	bookingService "go-musician-booking/modules/booking/service"
	"go-musician-booking/modules/contract/entity"
	"go-musician-booking/modules/contract/repository"
	musicianEntity "go-musician-booking/modules/musician/entity"
	musicianRepo "go-musician-booking/modules/musician/repository"
	musicianService "go-musician-booking/modules/musician/service"
	notificationEntity "go-musician-booking/modules/notification/entity"
	notificationRepo "go-musician-booking/modules/notification/repository"
	notificationService "go-musician-booking/modules/notification/service"
	plannerRepo "go-musician-booking/modules/planner/repository"
	plannerService "go-musician-booking/modules/planner/service"
	syncService "go-musician-booking/modules/synchronizer/service"

	"github.com/google/uuid"
)

type countingMailer struct {
	mu        sync.Mutex
	contracts []notificationEntity.ContractEmail
	responses []notificationEntity.ContractResponse
	// down makes every contract email fail after being counted.
	down bool
}

func (m *countingMailer) SendContractEmail(ctx context.Context, msg notificationEntity.ContractEmail) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts = append(m.contracts, msg)
	return !m.down
}

func (m *countingMailer) SendContractResponseNotification(ctx context.Context, msg notificationEntity.ContractResponse) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, msg)
	return true
}

func (m *countingMailer) sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contracts)
}

type recordingStore struct {
	mu   sync.Mutex
	keys []string
}

func (s *recordingStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return nil
}

type harnessOption func(*harnessSetup)

type harnessSetup struct {
	activity activityRepo.ActivityRepository
}

func withActivityRepository(r activityRepo.ActivityRepository) harnessOption {
	return func(s *harnessSetup) { s.activity = r }
}

type harness struct {
	contracts     *ContractService
	links         *LinkService
	generator     *GeneratorService
	contractRepo  repository.MonthlyContractRepository
	linkRepo      repository.ContractLinkRepository
	ledger        availabilityRepo.AvailabilityRepository
	bookings      *bookingService.BookingService
	musicians     musicianRepo.MusicianRepository
	planners      *plannerService.PlannerService
	notifications notificationRepo.NotificationRepository
	deadLetters   *saga.MemoryStore
	mailer        *countingMailer
	artifacts     *recordingStore
	tx            database.Transactor
	activity      *activityService.ActivityService
	staff         uuid.UUID
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	setup := harnessSetup{activity: activityRepo.NewMemoryActivityRepository()}
	for _, opt := range opts {
		opt(&setup)
	}

	h := &harness{
		contractRepo:  repository.NewMemoryMonthlyContractRepository(),
		linkRepo:      repository.NewMemoryContractLinkRepository(),
		ledger:        availabilityRepo.NewMemoryAvailabilityRepository(),
		musicians:     musicianRepo.NewMemoryMusicianRepository(),
		notifications: notificationRepo.NewMemoryNotificationRepository(),
		deadLetters:   saga.NewMemoryStore(),
		mailer:        &countingMailer{},
		artifacts:     &recordingStore{},
		staff:         uuid.New(),
	}

	tx := database.NewMemoryTransactor()
	activity := activityService.NewActivityService(setup.activity, tx)
	h.tx = tx
	h.activity = activity
	runner := saga.NewRunner(h.deadLetters, saga.Options{MaxAttempts: 1})

	h.bookings = bookingService.NewBookingService(bookingRepo.NewMemoryBookingRepository(), activity)
	reconciler := syncService.NewSynchronizer(h.ledger, activity, tx, runner)
	reconciler.AddClaimSource(h.bookings)
	reconciler.AddClaimSource(h.contractRepo)
	reconciler.AddClaimSource(h.linkRepo)

	h.planners = plannerService.NewPlannerService(plannerRepo.NewMemoryPlannerRepository())

	deps := Dependencies{
		Contracts: h.contractRepo,
		Links:     h.linkRepo,
		Musicians: musicianService.NewMusicianService(h.musicians),
		Bookings:  h.bookings,
		Planner:   h.planners,
		Tx:        tx,
		Sync:      reconciler,
		Activity:  activity,
		Runner:    runner,
		Mailer:    h.mailer,
		Artifacts: h.artifacts,
		Notifier:  notificationService.NewNotificationService(h.notifications),
		Options: Options{
			TermsAndConditions: "Standard terms",
			ResponseBaseURL:    "https://example.com/contracts/respond",
			NotifyEmail:        "office@example.com",
		},
	}
	h.contracts = NewContractService(deps)
	h.links = NewLinkService(deps)

	h.generator = NewGeneratorService(h.planners, plannerService.NewFeeResolver(h.musicians), h.contractRepo, h.contracts, "Standard terms")
	return h
}

func (h *harness) musician(t *testing.T, name string) uuid.UUID {
	t.Helper()
	now := time.Now()
	m := &musicianEntity.Musician{
		Name:       name,
		Email:      name + "@example.com",
		BaseEntity: coreEntity.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
	}
	if err := h.musicians.Create(context.Background(), m); err != nil {
		t.Fatalf("Create musician error = %v", err)
	}
	return m.ID
}

// monthly creates a monthly contract for a fresh planner and one pending
// contract musician on the given dates.
func (h *harness) monthly(t *testing.T, musicianID uuid.UUID, fee int64, dates ...time.Time) *entity.MonthlyContractMusician {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	contract, err := h.contractRepo.UpsertContract(ctx, &entity.MonthlyContract{
		ID:        uuid.New(),
		PlannerID: uuid.New(),
		Month:     int(dates[0].Month()),
		Year:      dates[0].Year(),
		CreatedBy: &h.staff,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("UpsertContract() error = %v", err)
	}

	entries := make([]DateEntry, len(dates))
	for i, d := range dates {
		entries[i] = DateEntry{Date: d, VenueName: "Blue Room", StartTime: "20:00", EndTime: "23:00", Fee: fee}
	}
	m, err := h.contracts.Generate(ctx, GenerateInput{ContractID: contract.ID, MusicianID: musicianID, Dates: entries, Actor: "staff"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return m
}

func (h *harness) available(t *testing.T, musicianID uuid.UUID, date time.Time) bool {
	t.Helper()
	row, err := h.ledger.Get(context.Background(), musicianID, date)
	if err != nil {
		t.Fatalf("ledger Get() error = %v", err)
	}
	return row == nil || row.IsAvailable
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

// link books the musician on date and issues a pending contract link for
// the booking.
func (h *harness) link(t *testing.T, musicianID uuid.UUID, date time.Time) *entity.ContractLink {
	t.Helper()
	ctx := context.Background()
	b, err := h.bookings.Create(ctx, bookingService.CreateInput{
		EventID:    uuid.New(),
		MusicianID: musicianID,
		Date:       date,
		Fee:        30000,
		Actor:      h.staff.String(),
	})
	if err != nil {
		t.Fatalf("booking Create() error = %v", err)
	}
	l, err := h.links.CreateLink(ctx, b.ID, h.staff.String())
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}
	return l
}
