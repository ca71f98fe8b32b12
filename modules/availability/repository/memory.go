package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-musician-booking/core/utils"
	"go-musician-booking/modules/availability/entity"

	"github.com/google/uuid"
)

type memoryKey struct {
	musicianID uuid.UUID
	date       string
}

type memoryAvailabilityRepository struct {
	mu   sync.Mutex
	rows map[memoryKey]entity.Availability
}

func NewMemoryAvailabilityRepository() AvailabilityRepository {
	return &memoryAvailabilityRepository{rows: make(map[memoryKey]entity.Availability)}
}

func (r *memoryAvailabilityRepository) Get(ctx context.Context, musicianID uuid.UUID, date time.Time) (*entity.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[memoryKey{musicianID, utils.FormatDate(date)}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memoryAvailabilityRepository) Upsert(ctx context.Context, a *entity.Availability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := *a
	row.Date = utils.DateOnly(a.Date)
	r.rows[memoryKey{a.MusicianID, utils.FormatDate(a.Date)}] = row
	return nil
}

func (r *memoryAvailabilityRepository) ListRange(ctx context.Context, musicianID uuid.UUID, from, to time.Time) ([]entity.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	from, to = utils.DateOnly(from), utils.DateOnly(to)
	var out []entity.Availability
	for k, a := range r.rows {
		if k.musicianID != musicianID || a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Lock is a no-op; the memory transactor already serialises units of work.
func (r *memoryAvailabilityRepository) Lock(ctx context.Context, musicianID uuid.UUID, date time.Time) error {
	return nil
}
