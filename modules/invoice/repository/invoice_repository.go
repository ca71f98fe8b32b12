package repository

import (
	"context"
	"database/sql"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/modules/invoice/entity"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	// Upsert writes inv unless an invoice for the same key has already left
	// draft; either way the stored row is returned.
	Upsert(ctx context.Context, inv *entity.MonthlyInvoice) (*entity.MonthlyInvoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.MonthlyInvoice, error)
	ListByPlanner(ctx context.Context, plannerID uuid.UUID) ([]entity.MonthlyInvoice, error)
	Finalize(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID, notes *string, at time.Time) (bool, error)
}

type invoiceRepository struct {
	db *database.Database
}

func NewInvoiceRepository(db *database.Database) InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, planner_id, musician_id, month, year, total_amount, status, line_items, notes, finalized_at, paid_at, created_at, updated_at`

func (r *invoiceRepository) Upsert(ctx context.Context, inv *entity.MonthlyInvoice) (*entity.MonthlyInvoice, error) {
	query := `
		INSERT INTO monthly_invoices (id, planner_id, musician_id, month, year, total_amount, status, line_items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'draft', $7, $8, $8)
		ON CONFLICT (planner_id, musician_id, month, year) DO UPDATE
		SET total_amount = EXCLUDED.total_amount,
		    line_items = EXCLUDED.line_items,
		    updated_at = EXCLUDED.updated_at
		WHERE monthly_invoices.status = 'draft'
		RETURNING ` + invoiceColumns

	var out entity.MonthlyInvoice
	err := r.db.GetContext(ctx, &out, query, inv.ID, inv.PlannerID, inv.MusicianID, inv.Month, inv.Year,
		inv.TotalAmount, inv.LineItems, inv.CreatedAt)
	if err == sql.ErrNoRows {
		return r.getByKey(ctx, inv.PlannerID, inv.MusicianID, inv.Month, inv.Year)
	}
	if err != nil {
		logger.Error("InvoiceRepository:Upsert:Error:", err)
		return nil, err
	}
	return &out, nil
}

func (r *invoiceRepository) getByKey(ctx context.Context, plannerID, musicianID uuid.UUID, month, year int) (*entity.MonthlyInvoice, error) {
	var out entity.MonthlyInvoice
	query := `SELECT ` + invoiceColumns + ` FROM monthly_invoices WHERE planner_id = $1 AND musician_id = $2 AND month = $3 AND year = $4`
	if err := r.db.GetContext(ctx, &out, query, plannerID, musicianID, month, year); err != nil {
		logger.Error("InvoiceRepository:GetByKey:Error:", err)
		return nil, err
	}
	return &out, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.MonthlyInvoice, error) {
	var out entity.MonthlyInvoice
	err := r.db.GetContext(ctx, &out, `SELECT `+invoiceColumns+` FROM monthly_invoices WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("InvoiceRepository:GetByID:Error:", err)
		return nil, err
	}
	return &out, nil
}

func (r *invoiceRepository) ListByPlanner(ctx context.Context, plannerID uuid.UUID) ([]entity.MonthlyInvoice, error) {
	items := []entity.MonthlyInvoice{}
	query := `SELECT ` + invoiceColumns + ` FROM monthly_invoices WHERE planner_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &items, query, plannerID); err != nil {
		logger.Error("InvoiceRepository:ListByPlanner:Error:", err)
		return nil, err
	}
	return items, nil
}

func (r *invoiceRepository) Finalize(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE monthly_invoices SET status = 'finalized', finalized_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'draft'
	`
	res, err := r.db.ExecResultContext(ctx, query, id, at)
	if err != nil {
		logger.Error("InvoiceRepository:Finalize:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, notes *string, at time.Time) (bool, error) {
	query := `
		UPDATE monthly_invoices SET status = 'paid', paid_at = $2, notes = COALESCE($3, notes), updated_at = $2
		WHERE id = $1 AND status = 'finalized'
	`
	res, err := r.db.ExecResultContext(ctx, query, id, at, notes)
	if err != nil {
		logger.Error("InvoiceRepository:MarkPaid:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
