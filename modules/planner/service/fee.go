package service

import (
	"context"

	"go-musician-booking/core/utils"
	musicianEntity "go-musician-booking/modules/musician/entity"
	"go-musician-booking/modules/planner/entity"

	"github.com/google/uuid"
)

// dayRateThresholdMinutes: gigs longer than four hours are paid the day rate.
const dayRateThresholdMinutes = 4 * 60

type PayRateLookup interface {
	GetPayRate(ctx context.Context, musicianID, categoryID uuid.UUID) (*musicianEntity.PayRate, error)
}

// FeeResolver prices one assignment: agreed rate, then actual fee, then the
// musician's rate card for the slot's category, then zero.
type FeeResolver struct {
	rates PayRateLookup
}

func NewFeeResolver(rates PayRateLookup) *FeeResolver {
	return &FeeResolver{rates: rates}
}

func (f *FeeResolver) Resolve(ctx context.Context, d entity.AssignmentDetail) (int64, error) {
	if d.AgreedRate != nil {
		return *d.AgreedRate, nil
	}
	if d.ActualFee != nil {
		return *d.ActualFee, nil
	}

	rate, err := f.rates.GetPayRate(ctx, d.MusicianID, d.Slot.CategoryID)
	if err != nil {
		return 0, err
	}
	if rate == nil {
		return 0, nil
	}

	minutes, ok := utils.DurationMinutes(d.Slot.StartTime, d.Slot.EndTime)
	if !ok {
		return orZero(rate.EventRate), nil
	}
	return FeeFromRate(rate, minutes), nil
}

// FeeFromRate applies the rate card to a gig of the given length.
func FeeFromRate(rate *musicianEntity.PayRate, minutes int) int64 {
	hourly := func() (int64, bool) {
		if rate.HourlyRate == nil {
			return 0, false
		}
		return *rate.HourlyRate * int64(minutes) / 60, true
	}

	if minutes > dayRateThresholdMinutes {
		if rate.DayRate != nil {
			return *rate.DayRate
		}
		if rate.EventRate != nil {
			return *rate.EventRate
		}
		fee, _ := hourly()
		return fee
	}

	if fee, ok := hourly(); ok {
		return fee
	}
	return orZero(rate.EventRate)
}

func orZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
