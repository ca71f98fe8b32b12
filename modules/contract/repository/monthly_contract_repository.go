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

type MonthlyContractRepository interface {
	// UpsertContract returns the contract for (planner, month, year), creating it when absent.
	UpsertContract(ctx context.Context, c *entity.MonthlyContract) (*entity.MonthlyContract, error)
	GetContract(ctx context.Context, id uuid.UUID) (*entity.MonthlyContract, error)
	CreateMusician(ctx context.Context, m *entity.MonthlyContractMusician, dates []entity.MonthlyContractDate) error
	GetMusician(ctx context.Context, id uuid.UUID) (*entity.MonthlyContractMusician, error)
	GetMusicianByPair(ctx context.Context, contractID, musicianID uuid.UUID) (*entity.MonthlyContractMusician, error)
	GetMusicianByToken(ctx context.Context, token string) (*entity.MonthlyContractMusician, error)
	ListMusicians(ctx context.Context, contractID uuid.UUID) ([]entity.MonthlyContractMusician, error)
	ListDates(ctx context.Context, contractMusicianID uuid.UUID) ([]entity.MonthlyContractDate, error)
	// SetDateStatus moves every date of the contract musician that is not
	// already cancelled.
	SetDateStatus(ctx context.Context, contractMusicianID uuid.UUID, status entity.DateStatus) error
	// MarkSent moves pending to sent and reports whether it did.
	MarkSent(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error)
	// Respond applies u while the row is pending or sent. A nil row means
	// the token matched nothing respondable.
	Respond(ctx context.Context, u entity.ResponseUpdate) (*entity.MonthlyContractMusician, error)
	// Cancel moves a non-terminal row to cancelled and reports whether it did.
	Cancel(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error)
	CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error)
}

type monthlyContractRepository struct {
	db *database.Database
}

func NewMonthlyContractRepository(db *database.Database) MonthlyContractRepository {
	return &monthlyContractRepository{db: db}
}

const (
	contractColumns = `id, planner_id, month, year, created_by, terms_and_conditions, created_at, updated_at`
	musicianColumns = `id, contract_id, musician_id, token, status, total_fee, sent_at, responded_at, completed_at,
		response, ip_address, signature_hash, metadata, created_at, updated_at`
	dateColumns = `id, contract_musician_id, assignment_id, date, venue_name, start_time, end_time, fee, status`
)

func (r *monthlyContractRepository) UpsertContract(ctx context.Context, c *entity.MonthlyContract) (*entity.MonthlyContract, error) {
	query := `
		INSERT INTO monthly_contracts (` + contractColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (planner_id, month, year) DO UPDATE SET updated_at = monthly_contracts.updated_at
		RETURNING ` + contractColumns
	var out entity.MonthlyContract
	err := r.db.GetContext(ctx, &out, query, c.ID, c.PlannerID, c.Month, c.Year, c.CreatedBy,
		c.TermsAndConditions, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		logger.Error("MonthlyContractRepository:UpsertContract:Error:", err)
		return nil, err
	}
	return &out, nil
}

func (r *monthlyContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*entity.MonthlyContract, error) {
	var c entity.MonthlyContract
	err := r.db.GetContext(ctx, &c, `SELECT `+contractColumns+` FROM monthly_contracts WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("MonthlyContractRepository:GetContract:Error:", err)
		return nil, err
	}
	return &c, nil
}

func (r *monthlyContractRepository) CreateMusician(ctx context.Context, m *entity.MonthlyContractMusician, dates []entity.MonthlyContractDate) error {
	query := `
		INSERT INTO monthly_contract_musicians (id, contract_id, musician_id, token, status, total_fee, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if err := r.db.ExecContext(ctx, query, m.ID, m.ContractID, m.MusicianID, m.Token, m.Status,
		m.TotalFee, m.Metadata, m.CreatedAt, m.UpdatedAt); err != nil {
		logger.Error("MonthlyContractRepository:CreateMusician:Error:", err)
		return err
	}

	dateQuery := `
		INSERT INTO monthly_contract_dates (` + dateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, d := range dates {
		if err := r.db.ExecContext(ctx, dateQuery, d.ID, d.ContractMusicianID, d.AssignmentID,
			utils.FormatDate(d.Date), d.VenueName, d.StartTime, d.EndTime, d.Fee, d.Status); err != nil {
			logger.Error("MonthlyContractRepository:CreateMusician:Date:Error:", err)
			return err
		}
	}
	return nil
}

func (r *monthlyContractRepository) getMusician(ctx context.Context, where string, arg any) (*entity.MonthlyContractMusician, error) {
	var m entity.MonthlyContractMusician
	err := r.db.GetContext(ctx, &m, `SELECT `+musicianColumns+` FROM monthly_contract_musicians WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("MonthlyContractRepository:GetMusician:Error:", err)
		return nil, err
	}
	return &m, nil
}

func (r *monthlyContractRepository) GetMusician(ctx context.Context, id uuid.UUID) (*entity.MonthlyContractMusician, error) {
	return r.getMusician(ctx, "id = $1", id)
}

func (r *monthlyContractRepository) GetMusicianByToken(ctx context.Context, token string) (*entity.MonthlyContractMusician, error) {
	return r.getMusician(ctx, "token = $1", token)
}

func (r *monthlyContractRepository) GetMusicianByPair(ctx context.Context, contractID, musicianID uuid.UUID) (*entity.MonthlyContractMusician, error) {
	var m entity.MonthlyContractMusician
	query := `SELECT ` + musicianColumns + ` FROM monthly_contract_musicians WHERE contract_id = $1 AND musician_id = $2`
	err := r.db.GetContext(ctx, &m, query, contractID, musicianID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("MonthlyContractRepository:GetMusicianByPair:Error:", err)
		return nil, err
	}
	return &m, nil
}

func (r *monthlyContractRepository) ListMusicians(ctx context.Context, contractID uuid.UUID) ([]entity.MonthlyContractMusician, error) {
	var items []entity.MonthlyContractMusician
	query := `SELECT ` + musicianColumns + ` FROM monthly_contract_musicians WHERE contract_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &items, query, contractID); err != nil {
		logger.Error("MonthlyContractRepository:ListMusicians:Error:", err)
		return nil, err
	}
	return items, nil
}

func (r *monthlyContractRepository) ListDates(ctx context.Context, contractMusicianID uuid.UUID) ([]entity.MonthlyContractDate, error) {
	var items []entity.MonthlyContractDate
	query := `SELECT ` + dateColumns + ` FROM monthly_contract_dates WHERE contract_musician_id = $1 ORDER BY date, start_time`
	if err := r.db.SelectContext(ctx, &items, query, contractMusicianID); err != nil {
		logger.Error("MonthlyContractRepository:ListDates:Error:", err)
		return nil, err
	}
	for i := range items {
		items[i].Date = utils.DateOnly(items[i].Date)
	}
	return items, nil
}

func (r *monthlyContractRepository) SetDateStatus(ctx context.Context, contractMusicianID uuid.UUID, status entity.DateStatus) error {
	query := `UPDATE monthly_contract_dates SET status = $2 WHERE contract_musician_id = $1 AND status <> 'cancelled'`
	if err := r.db.ExecContext(ctx, query, contractMusicianID, status); err != nil {
		logger.Error("MonthlyContractRepository:SetDateStatus:Error:", err)
		return err
	}
	return nil
}

func (r *monthlyContractRepository) MarkSent(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error) {
	query := `
		UPDATE monthly_contract_musicians SET status = 'sent', sent_at = $2, metadata = $3, updated_at = $2
		WHERE id = $1 AND status = 'pending'
	`
	res, err := r.db.ExecResultContext(ctx, query, id, at, meta)
	if err != nil {
		logger.Error("MonthlyContractRepository:MarkSent:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *monthlyContractRepository) Respond(ctx context.Context, u entity.ResponseUpdate) (*entity.MonthlyContractMusician, error) {
	query := `
		UPDATE monthly_contract_musicians
		SET status = $2, response = $3, ip_address = $4, signature_hash = COALESCE($5, signature_hash),
			metadata = $6, responded_at = COALESCE(responded_at, $7), completed_at = $7, updated_at = $7
		WHERE token = $1 AND status IN ('pending', 'sent')
		RETURNING ` + musicianColumns
	var m entity.MonthlyContractMusician
	err := r.db.GetContext(ctx, &m, query, u.Token, u.Status, u.Response, u.IPAddress, u.SignatureHash, u.Metadata, u.At)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("MonthlyContractRepository:Respond:Error:", err)
		return nil, err
	}
	return &m, nil
}

func (r *monthlyContractRepository) Cancel(ctx context.Context, id uuid.UUID, meta entity.StatusMetadata, at time.Time) (bool, error) {
	query := `
		UPDATE monthly_contract_musicians SET status = 'cancelled', metadata = $2, completed_at = $3, updated_at = $3
		WHERE id = $1 AND status IN ('pending', 'sent')
	`
	res, err := r.db.ExecResultContext(ctx, query, id, meta, at)
	if err != nil {
		logger.Error("MonthlyContractRepository:Cancel:Error:", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *monthlyContractRepository) CountClaims(ctx context.Context, musicianID uuid.UUID, date time.Time, exclude uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM monthly_contract_dates d
		JOIN monthly_contract_musicians m ON m.id = d.contract_musician_id
		WHERE m.musician_id = $1 AND d.date = $2 AND d.status IN ('sent', 'signed') AND m.id <> $3
	`
	var n int
	if err := r.db.GetContext(ctx, &n, query, musicianID, utils.FormatDate(date), exclude); err != nil {
		logger.Error("MonthlyContractRepository:CountClaims:Error:", err)
		return 0, err
	}
	return n, nil
}
