package repository

import (
	"context"
	"database/sql"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	"go-musician-booking/modules/invitation/entity"

	"github.com/google/uuid"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *entity.Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error)
	// FindOpen returns a pending or accepted invitation for the same
	// musician, event and date.
	FindOpen(ctx context.Context, musicianID, eventID uuid.UUID, date time.Time) (*entity.Invitation, error)
	GetPendingByMusician(ctx context.Context, musicianID uuid.UUID) ([]entity.Invitation, error)
	CountPendingByMusician(ctx context.Context, musicianID uuid.UUID) (int, error)
	// Respond moves a pending invitation to status and reports whether it did.
	Respond(ctx context.Context, id uuid.UUID, status entity.InvitationStatus, at time.Time) (bool, error)
}

type invitationRepository struct {
	db *database.Database
}

func NewInvitationRepository(db *database.Database) InvitationRepository {
	return &invitationRepository{db: db}
}

const invitationColumns = `id, event_id, musician_id, date, status, created_by, fee, event_data, responded_at, created_at, updated_at`

func (r *invitationRepository) Create(ctx context.Context, inv *entity.Invitation) error {
	query := `
		INSERT INTO invitations (id, event_id, musician_id, date, status, created_by, fee, event_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	err := r.db.ExecContext(ctx, query, inv.ID, inv.EventID, inv.MusicianID, utils.FormatDate(inv.Date),
		inv.Status, inv.CreatedBy, inv.Fee, inv.EventData, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		logger.Error("InvitationRepository:Create:Error:", err)
		return err
	}
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invitation, error) {
	var inv entity.Invitation
	err := r.db.GetContext(ctx, &inv, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("InvitationRepository:GetByID:Error:", err)
		return nil, err
	}
	inv.Date = utils.DateOnly(inv.Date)
	return &inv, nil
}

func (r *invitationRepository) FindOpen(ctx context.Context, musicianID, eventID uuid.UUID, date time.Time) (*entity.Invitation, error) {
	var inv entity.Invitation
	query := `
		SELECT ` + invitationColumns + ` FROM invitations
		WHERE musician_id = $1 AND event_id = $2 AND date = $3 AND status IN ('pending', 'accepted')
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &inv, query, musicianID, eventID, utils.FormatDate(date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("InvitationRepository:FindOpen:Error:", err)
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) GetPendingByMusician(ctx context.Context, musicianID uuid.UUID) ([]entity.Invitation, error) {
	invitations := []entity.Invitation{}
	query := `
		SELECT ` + invitationColumns + ` FROM invitations
		WHERE musician_id = $1 AND status = 'pending'
		ORDER BY date, created_at DESC
	`
	if err := r.db.SelectContext(ctx, &invitations, query, musicianID); err != nil {
		logger.Error("InvitationRepository:GetPendingByMusician:Error:", err)
		return nil, err
	}
	for i := range invitations {
		invitations[i].Date = utils.DateOnly(invitations[i].Date)
	}
	return invitations, nil
}

func (r *invitationRepository) CountPendingByMusician(ctx context.Context, musicianID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM invitations WHERE musician_id = $1 AND status = 'pending'`
	if err := r.db.GetContext(ctx, &count, query, musicianID); err != nil {
		logger.Error("InvitationRepository:CountPendingByMusician:Error:", err)
		return 0, err
	}
	return count, nil
}

func (r *invitationRepository) Respond(ctx context.Context, id uuid.UUID, status entity.InvitationStatus, at time.Time) (bool, error) {
	query := `
		UPDATE invitations SET status = $2, responded_at = $3, updated_at = $3
		WHERE id = $1 AND status = 'pending'
	`
	res, err := r.db.ExecResultContext(ctx, query, id, status, at)
	if err != nil {
		logger.Error("InvitationRepository:Respond:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
