package repository

import (
	"context"
	"database/sql"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	"go-musician-booking/modules/booking/entity"
	contractEntity "go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, b *entity.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	ListByMusician(ctx context.Context, musicianID uuid.UUID) ([]entity.Booking, error)
	SetContractSigned(ctx context.Context, id uuid.UUID, meta contractEntity.StatusMetadata, at time.Time) error
	// Cancel moves a confirmed booking to cancelled and reports whether it did.
	Cancel(ctx context.Context, id uuid.UUID, meta contractEntity.StatusMetadata, at time.Time) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error)
}

type bookingRepository struct {
	db *database.Database
}

func NewBookingRepository(db *database.Database) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, invitation_id, event_id, musician_id, date, status, contract_signed, payment_status, fee, metadata, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	err := r.db.ExecContext(ctx, query, b.ID, b.InvitationID, b.EventID, b.MusicianID, utils.FormatDate(b.Date),
		b.Status, b.ContractSigned, b.PaymentStatus, b.Fee, b.Metadata, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		logger.Error("BookingRepository:Create:Error:", err)
		return err
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var b entity.Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("BookingRepository:GetByID:Error:", err)
		return nil, err
	}
	b.Date = utils.DateOnly(b.Date)
	return &b, nil
}

func (r *bookingRepository) ListByMusician(ctx context.Context, musicianID uuid.UUID) ([]entity.Booking, error) {
	var items []entity.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE musician_id = $1 ORDER BY date`
	if err := r.db.SelectContext(ctx, &items, query, musicianID); err != nil {
		logger.Error("BookingRepository:ListByMusician:Error:", err)
		return nil, err
	}
	for i := range items {
		items[i].Date = utils.DateOnly(items[i].Date)
	}
	return items, nil
}

func (r *bookingRepository) SetContractSigned(ctx context.Context, id uuid.UUID, meta contractEntity.StatusMetadata, at time.Time) error {
	query := `UPDATE bookings SET contract_signed = true, metadata = $2, updated_at = $3 WHERE id = $1`
	if err := r.db.ExecContext(ctx, query, id, meta, at); err != nil {
		logger.Error("BookingRepository:SetContractSigned:Error:", err)
		return err
	}
	return nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id uuid.UUID, meta contractEntity.StatusMetadata, at time.Time) (bool, error) {
	query := `
		UPDATE bookings SET status = 'cancelled', metadata = $2, updated_at = $3
		WHERE id = $1 AND status = 'confirmed'
	`
	res, err := r.db.ExecResultContext(ctx, query, id, meta, at)
	if err != nil {
		logger.Error("BookingRepository:Cancel:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *bookingRepository) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE bookings SET payment_status = 'paid', updated_at = $2
		WHERE id = $1 AND status = 'confirmed' AND payment_status = 'unpaid'
	`
	res, err := r.db.ExecResultContext(ctx, query, id, at)
	if err != nil {
		logger.Error("BookingRepository:MarkPaid:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *bookingRepository) CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE musician_id = $1 AND date = $2 AND status = 'confirmed' AND contract_signed AND id <> $3
	`
	var n int
	if err := r.db.GetContext(ctx, &n, query, musicianID, utils.FormatDate(date), exclude); err != nil {
		logger.Error("BookingRepository:CountClaims:Error:", err)
		return 0, err
	}
	return n, nil
}
