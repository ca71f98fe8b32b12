package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"go-musician-booking/modules/planner/entity"

	"github.com/google/uuid"
)

type memoryPlannerRepository struct {
	mu          sync.Mutex
	planners    map[uuid.UUID]entity.Planner
	slots       map[uuid.UUID]entity.PlannerSlot
	assignments map[uuid.UUID]entity.PlannerAssignment
}

func NewMemoryPlannerRepository() PlannerRepository {
	return &memoryPlannerRepository{
		planners:    make(map[uuid.UUID]entity.Planner),
		slots:       make(map[uuid.UUID]entity.PlannerSlot),
		assignments: make(map[uuid.UUID]entity.PlannerAssignment),
	}
}

func (r *memoryPlannerRepository) CreatePlanner(ctx context.Context, p *entity.Planner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.planners[p.ID] = *p
	return nil
}

func (r *memoryPlannerRepository) GetPlanner(ctx context.Context, id uuid.UUID) (*entity.Planner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.planners[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memoryPlannerRepository) CreateSlot(ctx context.Context, s *entity.PlannerSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[s.ID] = *s
	return nil
}

func (r *memoryPlannerRepository) GetSlot(ctx context.Context, id uuid.UUID) (*entity.PlannerSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *memoryPlannerRepository) CreateAssignment(ctx context.Context, a *entity.PlannerAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[a.ID] = *a
	return nil
}

func (r *memoryPlannerRepository) GetAssignment(ctx context.Context, id uuid.UUID) (*entity.AssignmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, nil
	}
	return &entity.AssignmentDetail{PlannerAssignment: a, Slot: r.slots[a.SlotID]}, nil
}

func (r *memoryPlannerRepository) UpdateAssignment(ctx context.Context, a *entity.PlannerAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[a.ID]; ok {
		r.assignments[a.ID] = *a
	}
	return nil
}

func (r *memoryPlannerRepository) SetStatus(ctx context.Context, ids []uuid.UUID, from []entity.AssignmentStatus, to entity.AssignmentStatus, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		a, ok := r.assignments[id]
		if !ok || !slices.Contains(from, a.Status) {
			continue
		}
		a.Status = to
		a.UpdatedAt = at
		r.assignments[id] = a
		n++
	}
	return n, nil
}

func (r *memoryPlannerRepository) ListAssignments(ctx context.Context, plannerID uuid.UUID, ids []uuid.UUID, statuses []entity.AssignmentStatus) ([]entity.AssignmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.AssignmentDetail
	for _, a := range r.assignments {
		slot, ok := r.slots[a.SlotID]
		if !ok || slot.PlannerID != plannerID {
			continue
		}
		if len(ids) > 0 && !slices.Contains(ids, a.ID) {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, a.Status) {
			continue
		}
		out = append(out, entity.AssignmentDetail{PlannerAssignment: a, Slot: slot})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MusicianID != out[j].MusicianID {
			return out[i].MusicianID.String() < out[j].MusicianID.String()
		}
		if !out[i].Slot.Date.Equal(out[j].Slot.Date) {
			return out[i].Slot.Date.Before(out[j].Slot.Date)
		}
		return out[i].Slot.StartTime < out[j].Slot.StartTime
	})
	return out, nil
}
