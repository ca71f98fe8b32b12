package repository

import (
	"context"
	"database/sql"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	"go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

type ContractLinkRepository interface {
	Create(ctx context.Context, l *entity.ContractLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ContractLink, error)
	GetByToken(ctx context.Context, token string) (*entity.ContractLink, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]entity.ContractLink, error)
	MarkSent(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error)
	Respond(ctx context.Context, u entity.ResponseUpdate) (*entity.ContractLink, error)
	Cancel(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error)
	// CountClaims ignores links whose id or booking id equals exclude.
	CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error)
}

type contractLinkRepository struct {
	db *database.Database
}

func NewContractLinkRepository(db *database.Database) ContractLinkRepository {
	return &contractLinkRepository{db: db}
}

const linkColumns = `id, booking_id, musician_id, event_id, date, token, status, fee, sent_at, responded_at,
	completed_at, response, ip_address, signature_hash, metadata, created_by, created_at, updated_at`

func (r *contractLinkRepository) Create(ctx context.Context, l *entity.ContractLink) error {
	query := `
		INSERT INTO contract_links (id, booking_id, musician_id, event_id, date, token, status, fee, metadata, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	err := r.db.ExecContext(ctx, query, l.ID, l.BookingID, l.MusicianID, l.EventID, utils.FormatDate(l.Date),
		l.Token, l.Status, l.Fee, l.Metadata, l.CreatedBy, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		logger.Error("ContractLinkRepository:Create:Error:", err)
		return err
	}
	return nil
}

func (r *contractLinkRepository) get(ctx context.Context, where string, arg any) (*entity.ContractLink, error) {
	var l entity.ContractLink
	err := r.db.GetContext(ctx, &l, `SELECT `+linkColumns+` FROM contract_links WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("ContractLinkRepository:Get:Error:", err)
		return nil, err
	}
	l.Date = utils.DateOnly(l.Date)
	return &l, nil
}

func (r *contractLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ContractLink, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *contractLinkRepository) GetByToken(ctx context.Context, token string) (*entity.ContractLink, error) {
	return r.get(ctx, "token = $1", token)
}

func (r *contractLinkRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]entity.ContractLink, error) {
	var items []entity.ContractLink
	query := `SELECT ` + linkColumns + ` FROM contract_links WHERE booking_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &items, query, bookingID); err != nil {
		logger.Error("ContractLinkRepository:ListByBooking:Error:", err)
		return nil, err
	}
	for i := range items {
		items[i].Date = utils.DateOnly(items[i].Date)
	}
	return items, nil
}

func (r *contractLinkRepository) MarkSent(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error) {
	query := `
		UPDATE contract_links SET status = 'sent', sent_at = $2, metadata = $3, updated_at = $2
		WHERE id = $1 AND status = 'pending'
	`
	res, err := r.db.ExecResultContext(ctx, query, id, at, meta)
	if err != nil {
		logger.Error("ContractLinkRepository:MarkSent:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *contractLinkRepository) Respond(ctx context.Context, u entity.ResponseUpdate) (*entity.ContractLink, error) {
	query := `
		UPDATE contract_links
		SET status = $2, response = $3, ip_address = $4, signature_hash = COALESCE($5, signature_hash),
			metadata = $6, responded_at = COALESCE(responded_at, $7), completed_at = $7, updated_at = $7
		WHERE token = $1 AND status IN ('pending', 'sent')
		RETURNING ` + linkColumns
	var l entity.ContractLink
	err := r.db.GetContext(ctx, &l, query, u.Token, u.Status, u.Response, u.IPAddress, u.SignatureHash, u.Metadata, u.At)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("ContractLinkRepository:Respond:Error:", err)
		return nil, err
	}
	l.Date = utils.DateOnly(l.Date)
	return &l, nil
}

func (r *contractLinkRepository) Cancel(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error) {
	query := `
		UPDATE contract_links SET status = 'cancelled', metadata = $2, completed_at = $3, updated_at = $3
		WHERE id = $1 AND status IN ('pending', 'sent')
	`
	res, err := r.db.ExecResultContext(ctx, query, id, meta, at)
	if err != nil {
		logger.Error("ContractLinkRepository:Cancel:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *contractLinkRepository) CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM contract_links
		WHERE musician_id = $1 AND date = $2 AND status IN ('sent', 'signed') AND id <> $3 AND booking_id <> $3
	`
	var n int
	if err := r.db.GetContext(ctx, &n, query, musicianID, utils.FormatDate(date), exclude); err != nil {
		logger.Error("ContractLinkRepository:CountClaims:Error:", err)
		return 0, err
	}
	return n, nil
}
