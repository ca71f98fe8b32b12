package service

import (
	"context"
	"testing"

	musicianEntity "go-musician-booking/modules/musician/entity"
	musicianRepo "go-musician-booking/modules/musician/repository"
	"go-musician-booking/modules/planner/entity"

	"github.com/google/uuid"
)

func ptr(v int64) *int64 { return &v }

func TestFeeFromRateThreshold(t *testing.T) {
	full := &musicianEntity.PayRate{HourlyRate: ptr(5000), DayRate: ptr(30000), EventRate: ptr(12000)}

	tests := []struct {
		name    string
		rate    *musicianEntity.PayRate
		minutes int
		want    int64
	}{
		{"exactly four hours is hourly", full, 240, 20000},
		{"one minute over uses day rate", full, 241, 30000},
		{"short gig hourly", full, 90, 7500},
		{"long gig falls back to event rate", &musicianEntity.PayRate{HourlyRate: ptr(5000), EventRate: ptr(12000)}, 300, 12000},
		{"long gig falls back to hourly", &musicianEntity.PayRate{HourlyRate: ptr(5000)}, 300, 25000},
		{"short gig without hourly uses event rate", &musicianEntity.PayRate{DayRate: ptr(30000), EventRate: ptr(12000)}, 120, 12000},
		{"empty rate card", &musicianEntity.PayRate{}, 120, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FeeFromRate(tt.rate, tt.minutes); got != tt.want {
				t.Errorf("FeeFromRate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolvePrecedence(t *testing.T) {
	rates := musicianRepo.NewMemoryMusicianRepository()
	resolver := NewFeeResolver(rates)
	ctx := context.Background()

	musicianID, categoryID := uuid.New(), uuid.New()
	_ = rates.UpsertPayRate(ctx, &musicianEntity.PayRate{MusicianID: musicianID, CategoryID: categoryID, HourlyRate: ptr(6000)})

	detail := func(agreed, actual *int64) entity.AssignmentDetail {
		return entity.AssignmentDetail{
			PlannerAssignment: entity.PlannerAssignment{MusicianID: musicianID, AgreedRate: agreed, ActualFee: actual},
			Slot:              entity.PlannerSlot{CategoryID: categoryID, StartTime: "20:00", EndTime: "22:00"},
		}
	}

	tests := []struct {
		name string
		d    entity.AssignmentDetail
		want int64
	}{
		{"agreed rate first", detail(ptr(100), ptr(200)), 100},
		{"actual fee second", detail(nil, ptr(200)), 200},
		{"rate card third", detail(nil, nil), 12000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(ctx, tt.d)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %d, want %d", got, tt.want)
			}
		})
	}

	unknown := detail(nil, nil)
	unknown.MusicianID = uuid.New()
	if got, _ := resolver.Resolve(ctx, unknown); got != 0 {
		t.Errorf("no rate card: got %d, want 0", got)
	}
}
