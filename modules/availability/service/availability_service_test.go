package service

import (
	"context"
	"testing"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/errors"
	activityEntity "go-musician-booking/modules/activity/entity"
	"go-musician-booking/modules/availability/repository"

	"github.com/google/uuid"
)

type recorder struct {
	entries []*activityEntity.Activity
}

func (r *recorder) Record(ctx context.Context, a *activityEntity.Activity) {
	r.entries = append(r.entries, a)
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestIsAvailableDefaultsToTrue(t *testing.T) {
	svc := NewAvailabilityService(repository.NewMemoryAvailabilityRepository(), database.NewMemoryTransactor(), &recorder{})

	ok, err := svc.IsAvailable(context.Background(), uuid.New(), day("2025-03-14"))
	if err != nil {
		t.Fatalf("IsAvailable() error = %v", err)
	}
	if !ok {
		t.Fatal("musician with no ledger row must be available")
	}
}

func TestSetOverridesDefaultAndRecordsActivity(t *testing.T) {
	rec := &recorder{}
	svc := NewAvailabilityService(repository.NewMemoryAvailabilityRepository(), database.NewMemoryTransactor(), rec)
	ctx := context.Background()
	m := uuid.New()

	// A timestamp later in the day lands on the same calendar date.
	if err := svc.Set(ctx, m, day("2025-03-14").Add(20*time.Hour), false, "gig", "planner-1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	ok, _ := svc.IsAvailable(ctx, m, day("2025-03-14"))
	if ok {
		t.Fatal("expected unavailable after Set(false)")
	}
	other, _ := svc.IsAvailable(ctx, m, day("2025-03-15"))
	if !other {
		t.Fatal("neighbouring date must stay available")
	}

	if len(rec.entries) != 1 || rec.entries[0].Action != "availability.set" || rec.entries[0].Actor != "planner-1" {
		t.Fatalf("unexpected activity %+v", rec.entries)
	}
}

func TestRangeFillsMissingDays(t *testing.T) {
	svc := NewAvailabilityService(repository.NewMemoryAvailabilityRepository(), database.NewMemoryTransactor(), &recorder{})
	ctx := context.Background()
	m := uuid.New()

	_ = svc.Set(ctx, m, day("2025-03-02"), false, "", "")

	days, err := svc.Range(ctx, m, day("2025-03-01"), day("2025-03-03"))
	if err != nil {
		t.Fatalf("Range() error = %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("len = %d, want 3", len(days))
	}
	want := []bool{true, false, true}
	for i, d := range days {
		if d.IsAvailable != want[i] {
			t.Errorf("%s available = %v, want %v", d.Date, d.IsAvailable, want[i])
		}
	}
	if !days[1].Explicit || days[0].Explicit {
		t.Errorf("explicit flags wrong: %+v", days)
	}
}

func TestRangeValidation(t *testing.T) {
	svc := NewAvailabilityService(repository.NewMemoryAvailabilityRepository(), database.NewMemoryTransactor(), &recorder{})
	ctx := context.Background()

	tests := []struct {
		name     string
		from, to time.Time
	}{
		{"inverted", day("2025-03-05"), day("2025-03-01")},
		{"too long", day("2025-01-01"), day("2026-06-01")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Range(ctx, uuid.New(), tt.from, tt.to)
			if errors.CodeOf(err) != errors.ErrInvalidInput {
				t.Fatalf("code = %v, want INVALID_INPUT", errors.CodeOf(err))
			}
		})
	}
}

type fixedClaims struct {
	n       int
	exclude []uuid.UUID
}

func (c *fixedClaims) CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error) {
	c.exclude = append(c.exclude, exclude)
	return c.n, nil
}

func TestSetRefusesToOpenClaimedDate(t *testing.T) {
	rec := &recorder{}
	claims := &fixedClaims{n: 1}
	svc := NewAvailabilityService(repository.NewMemoryAvailabilityRepository(), database.NewMemoryTransactor(), rec)
	svc.AddClaimSource(claims)
	ctx := context.Background()
	m := uuid.New()

	if err := svc.Set(ctx, m, day("2025-03-10"), false, "signed gig", "staff"); err != nil {
		t.Fatalf("Set(false) error = %v", err)
	}
	if len(claims.exclude) != 0 {
		t.Errorf("closing a date consulted claims %d times", len(claims.exclude))
	}

	err := svc.Set(ctx, m, day("2025-03-10"), true, "", "staff")
	if !errors.Is(err, errors.InvalidStateError) {
		t.Fatalf("Set(true) error = %v, want invalid state", err)
	}
	if ok, _ := svc.IsAvailable(ctx, m, day("2025-03-10")); ok {
		t.Error("claimed date was opened")
	}
	if len(rec.entries) != 1 {
		t.Errorf("activity entries = %d, want only the first set", len(rec.entries))
	}

	claims.n = 0
	if err := svc.Set(ctx, m, day("2025-03-10"), true, "", "staff"); err != nil {
		t.Fatalf("Set(true) without claims error = %v", err)
	}
	if ok, _ := svc.IsAvailable(ctx, m, day("2025-03-10")); !ok {
		t.Error("unclaimed date stayed closed")
	}
	for _, ex := range claims.exclude {
		if ex != uuid.Nil {
			t.Errorf("claims excluded %s, want none", ex)
		}
	}
}
