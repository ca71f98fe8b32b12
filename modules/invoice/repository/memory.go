package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-musician-booking/modules/invoice/entity"

	"github.com/google/uuid"
)

type invoiceKey struct {
	plannerID, musicianID uuid.UUID
	month, year           int
}

type memoryInvoiceRepository struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]entity.MonthlyInvoice
	byKey    map[invoiceKey]uuid.UUID
}

func NewMemoryInvoiceRepository() InvoiceRepository {
	return &memoryInvoiceRepository{
		invoices: make(map[uuid.UUID]entity.MonthlyInvoice),
		byKey:    make(map[invoiceKey]uuid.UUID),
	}
}

func (r *memoryInvoiceRepository) Upsert(ctx context.Context, inv *entity.MonthlyInvoice) (*entity.MonthlyInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := invoiceKey{inv.PlannerID, inv.MusicianID, inv.Month, inv.Year}
	if id, ok := r.byKey[key]; ok {
		existing := r.invoices[id]
		if existing.Status == entity.InvoiceStatusDraft {
			existing.TotalAmount = inv.TotalAmount
			existing.LineItems = append(entity.LineItems(nil), inv.LineItems...)
			existing.UpdatedAt = inv.CreatedAt
			r.invoices[id] = existing
		}
		return &existing, nil
	}

	row := *inv
	row.Status = entity.InvoiceStatusDraft
	row.UpdatedAt = row.CreatedAt
	row.LineItems = append(entity.LineItems(nil), inv.LineItems...)
	r.invoices[row.ID] = row
	r.byKey[key] = row.ID
	return &row, nil
}

func (r *memoryInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.MonthlyInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *memoryInvoiceRepository) ListByPlanner(ctx context.Context, plannerID uuid.UUID) ([]entity.MonthlyInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []entity.MonthlyInvoice{}
	for _, inv := range r.invoices {
		if inv.PlannerID == plannerID {
			items = append(items, inv)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (r *memoryInvoiceRepository) Finalize(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.Status != entity.InvoiceStatusDraft {
		return false, nil
	}
	inv.Status = entity.InvoiceStatusFinalized
	inv.FinalizedAt = &at
	inv.UpdatedAt = at
	r.invoices[id] = inv
	return true, nil
}

func (r *memoryInvoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, notes *string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.Status != entity.InvoiceStatusFinalized {
		return false, nil
	}
	inv.Status = entity.InvoiceStatusPaid
	inv.PaidAt = &at
	if notes != nil {
		inv.Notes = notes
	}
	inv.UpdatedAt = at
	r.invoices[id] = inv
	return true, nil
}
