package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-musician-booking/core/utils"
	"go-musician-booking/modules/invitation/entity"

	"github.com/google/uuid"
)

type memoryInvitationRepository struct {
	mu          sync.Mutex
	invitations map[uuid.UUID]entity.Invitation
}

func NewMemoryInvitationRepository() InvitationRepository {
	return &memoryInvitationRepository{invitations: make(map[uuid.UUID]entity.Invitation)}
}

func (r *memoryInvitationRepository) Create(ctx context.Context, inv *entity.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := *inv
	row.Date = utils.DateOnly(row.Date)
	r.invitations[row.ID] = row
	return nil
}

func (r *memoryInvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *memoryInvitationRepository) FindOpen(ctx context.Context, musicianID, eventID uuid.UUID, date time.Time) (*entity.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := utils.FormatDate(date)
	for _, inv := range r.invitations {
		if inv.MusicianID == musicianID && inv.EventID == eventID && utils.FormatDate(inv.Date) == day &&
			inv.Status != entity.InvitationStatusDeclined {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *memoryInvitationRepository) GetPendingByMusician(ctx context.Context, musicianID uuid.UUID) ([]entity.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Invitation{}
	for _, inv := range r.invitations {
		if inv.MusicianID == musicianID && inv.Status == entity.InvitationStatusPending {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memoryInvitationRepository) CountPendingByMusician(ctx context.Context, musicianID uuid.UUID) (int, error) {
	items, err := r.GetPendingByMusician(ctx, musicianID)
	return len(items), err
}

func (r *memoryInvitationRepository) Respond(ctx context.Context, id uuid.UUID, status entity.InvitationStatus, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok || inv.Status != entity.InvitationStatusPending {
		return false, nil
	}
	inv.Status = status
	inv.RespondedAt = &at
	inv.UpdatedAt = at
	r.invitations[id] = inv
	return true, nil
}
