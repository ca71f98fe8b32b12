package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-musician-booking/core/utils"
	"go-musician-booking/modules/booking/entity"
	contractEntity "go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

type memoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]entity.Booking
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{bookings: make(map[uuid.UUID]entity.Booking)}
}

func (r *memoryBookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := *b
	row.Date = utils.DateOnly(b.Date)
	r.bookings[b.ID] = row
	return nil
}

func (r *memoryBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *memoryBookingRepository) ListByMusician(ctx context.Context, musicianID uuid.UUID) ([]entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Booking
	for _, b := range r.bookings {
		if b.MusicianID == musicianID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memoryBookingRepository) SetContractSigned(ctx context.Context, id uuid.UUID, meta contractEntity.StatusMetadata, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bookings[id]; ok {
		b.ContractSigned = true
		b.Metadata = meta
		b.UpdatedAt = at
		r.bookings[id] = b
	}
	return nil
}

func (r *memoryBookingRepository) Cancel(ctx context.Context, id uuid.UUID, meta contractEntity.StatusMetadata, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != entity.BookingStatusConfirmed {
		return false, nil
	}
	b.Status = entity.BookingStatusCancelled
	b.Metadata = meta
	b.UpdatedAt = at
	r.bookings[id] = b
	return true, nil
}

func (r *memoryBookingRepository) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != entity.BookingStatusConfirmed || b.PaymentStatus != entity.PaymentStatusUnpaid {
		return false, nil
	}
	b.PaymentStatus = entity.PaymentStatusPaid
	b.UpdatedAt = at
	r.bookings[id] = b
	return true, nil
}

func (r *memoryBookingRepository) CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := utils.FormatDate(date)
	n := 0
	for _, b := range r.bookings {
		if b.MusicianID == musicianID && utils.FormatDate(b.Date) == day &&
			b.Status == entity.BookingStatusConfirmed && b.ContractSigned && b.ID != exclude {
			n++
		}
	}
	return n, nil
}
