package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/saga"
	activityEntity "go-musician-booking/modules/activity/entity"
	availabilityEntity "go-musician-booking/modules/availability/entity"
	availabilityRepo "go-musician-booking/modules/availability/repository"
	contractEntity "go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

type recorder struct {
	actions []string
}

func (r *recorder) Record(ctx context.Context, a *activityEntity.Activity) {
	r.actions = append(r.actions, a.Action)
}

type fixedClaims struct {
	n       int
	exclude []uuid.UUID
}

func (c *fixedClaims) CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error) {
	c.exclude = append(c.exclude, exclude)
	return c.n, nil
}

type brokenLedger struct {
	availabilityRepo.AvailabilityRepository
}

func (brokenLedger) Upsert(ctx context.Context, a *availabilityEntity.Availability) error {
	return fmt.Errorf("connection reset")
}

var date = time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC)

func newSync(ledger availabilityRepo.AvailabilityRepository, claims ...ClaimSource) (*Synchronizer, *recorder, *saga.MemoryStore) {
	rec := &recorder{}
	store := saga.NewMemoryStore()
	runner := saga.NewRunner(store, saga.Options{MaxAttempts: 1})
	s := NewSynchronizer(ledger, rec, database.NewMemoryTransactor(), runner)
	for _, c := range claims {
		s.AddClaimSource(c)
	}
	runner.Register(StepAvailabilitySync, s.HandleStep)
	return s, rec, store
}

func available(t *testing.T, ledger availabilityRepo.AvailabilityRepository, m uuid.UUID) bool {
	t.Helper()
	row, err := ledger.Get(context.Background(), m, date)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	return row == nil || row.IsAvailable
}

func TestApplyHoldsOnSentAndSigned(t *testing.T) {
	for _, status := range []contractEntity.DateStatus{contractEntity.DateStatusSent, contractEntity.DateStatusSigned} {
		t.Run(string(status), func(t *testing.T) {
			ledger := availabilityRepo.NewMemoryAvailabilityRepository()
			s, rec, _ := newSync(ledger)
			m := uuid.New()

			err := s.Apply(context.Background(), Transition{MusicianID: m, Date: date, OldStatus: contractEntity.DateStatusPending, NewStatus: status, Owner: uuid.New()})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if available(t, ledger, m) {
				t.Fatal("expected date to be held")
			}
			if len(rec.actions) != 1 {
				t.Fatalf("activity = %v, want one entry", rec.actions)
			}
		})
	}
}

func TestReleaseRespectsOtherClaims(t *testing.T) {
	ledger := availabilityRepo.NewMemoryAvailabilityRepository()
	claims := &fixedClaims{n: 1}
	s, rec, _ := newSync(ledger, claims)
	ctx := context.Background()
	m, owner := uuid.New(), uuid.New()

	_ = s.Apply(ctx, Transition{MusicianID: m, Date: date, OldStatus: contractEntity.DateStatusPending, NewStatus: contractEntity.DateStatusSigned, Owner: owner})
	_ = s.Apply(ctx, Transition{MusicianID: m, Date: date, OldStatus: contractEntity.DateStatusSigned, NewStatus: contractEntity.DateStatusCancelled, Owner: owner})

	if available(t, ledger, m) {
		t.Fatal("release must be skipped while another commitment exists")
	}
	if claims.exclude[0] != owner {
		t.Fatalf("claim check must exclude the releasing owner")
	}
	if rec.actions[len(rec.actions)-1] != "availability.release_skipped" {
		t.Fatalf("activity = %v", rec.actions)
	}

	claims.n = 0
	_ = s.Apply(ctx, Transition{MusicianID: m, Date: date, OldStatus: contractEntity.DateStatusSent, NewStatus: contractEntity.DateStatusRejected, Owner: owner})
	if !available(t, ledger, m) {
		t.Fatal("expected release once no other claim remains")
	}
}

func TestReleaseWithoutHoldIsNoop(t *testing.T) {
	ledger := availabilityRepo.NewMemoryAvailabilityRepository()
	s, rec, _ := newSync(ledger)
	ctx := context.Background()
	m := uuid.New()

	// A manual block must survive cancelling a contract that never held the date.
	note := "vacation"
	_ = ledger.Upsert(ctx, &availabilityEntity.Availability{MusicianID: m, Date: date, IsAvailable: false, Note: &note})

	_ = s.Apply(ctx, Transition{MusicianID: m, Date: date, OldStatus: contractEntity.DateStatusPending, NewStatus: contractEntity.DateStatusCancelled, Owner: uuid.New()})
	if available(t, ledger, m) {
		t.Fatal("manual block was released")
	}
	if len(rec.actions) != 0 {
		t.Fatalf("activity = %v, want none", rec.actions)
	}
}

func TestReconcileParksFailures(t *testing.T) {
	healthy := availabilityRepo.NewMemoryAvailabilityRepository()
	s, _, store := newSync(brokenLedger{healthy})
	ctx := context.Background()
	m := uuid.New()

	// Reconcile never surfaces the failure to the caller.
	s.Reconcile(ctx, Transition{MusicianID: m, Date: date, OldStatus: contractEntity.DateStatusPending, NewStatus: contractEntity.DateStatusSent, Owner: uuid.New()})

	parked, _ := store.ListUnresolved(ctx, 10)
	if len(parked) != 1 || parked[0].Step != StepAvailabilitySync {
		t.Fatalf("parked = %+v", parked)
	}

	// Once the ledger recovers the parked transition replays cleanly.
	s.ledger = healthy
	runner := saga.NewRunner(store, saga.Options{MaxAttempts: 1})
	runner.Register(StepAvailabilitySync, s.HandleStep)
	if err := runner.Replay(ctx, parked[0].ID); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if available(t, healthy, m) {
		t.Fatal("replayed hold not applied")
	}
}
