package repository

import (
	"context"
	"database/sql"
	"time"

	"go-musician-booking/core/database"
	"go-musician-booking/core/logger"
	"go-musician-booking/core/utils"
	"go-musician-booking/modules/planner/entity"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PlannerRepository interface {
	CreatePlanner(ctx context.Context, p *entity.Planner) error
	GetPlanner(ctx context.Context, id uuid.UUID) (*entity.Planner, error)
	CreateSlot(ctx context.Context, s *entity.PlannerSlot) error
	GetSlot(ctx context.Context, id uuid.UUID) (*entity.PlannerSlot, error)
	CreateAssignment(ctx context.Context, a *entity.PlannerAssignment) error
	GetAssignment(ctx context.Context, id uuid.UUID) (*entity.AssignmentDetail, error)
	UpdateAssignment(ctx context.Context, a *entity.PlannerAssignment) error
	// SetStatus moves the listed assignments currently in one of from to the
	// status to, and reports how many moved.
	SetStatus(ctx context.Context, ids []uuid.UUID, from []entity.AssignmentStatus, to entity.AssignmentStatus, at time.Time) (int64, error)
	// ListAssignments filters by ids and statuses when they are non-empty.
	ListAssignments(ctx context.Context, plannerID uuid.UUID, ids []uuid.UUID, statuses []entity.AssignmentStatus) ([]entity.AssignmentDetail, error)
}

type plannerRepository struct {
	db *database.Database
}

func NewPlannerRepository(db *database.Database) PlannerRepository {
	return &plannerRepository{db: db}
}

func (r *plannerRepository) CreatePlanner(ctx context.Context, p *entity.Planner) error {
	query := `
		INSERT INTO planners (id, name, month, year, created_by, created_at, updated_at)
		VALUES (:id, :name, :month, :year, :created_by, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		logger.Error("PlannerRepository:CreatePlanner:Error:", err)
		return err
	}
	return nil
}

func (r *plannerRepository) GetPlanner(ctx context.Context, id uuid.UUID) (*entity.Planner, error) {
	var p entity.Planner
	err := r.db.GetContext(ctx, &p, `SELECT id, name, month, year, created_by, created_at, updated_at FROM planners WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("PlannerRepository:GetPlanner:Error:", err)
		return nil, err
	}
	return &p, nil
}

func (r *plannerRepository) CreateSlot(ctx context.Context, s *entity.PlannerSlot) error {
	query := `
		INSERT INTO planner_slots (id, planner_id, event_id, category_id, venue_name, date, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	err := r.db.ExecContext(ctx, query, s.ID, s.PlannerID, s.EventID, s.CategoryID, s.VenueName,
		utils.FormatDate(s.Date), s.StartTime, s.EndTime, s.CreatedAt)
	if err != nil {
		logger.Error("PlannerRepository:CreateSlot:Error:", err)
		return err
	}
	return nil
}

func (r *plannerRepository) GetSlot(ctx context.Context, id uuid.UUID) (*entity.PlannerSlot, error) {
	var s entity.PlannerSlot
	query := `
		SELECT id, planner_id, event_id, category_id, venue_name, date, start_time, end_time, created_at
		FROM planner_slots WHERE id = $1
	`
	err := r.db.GetContext(ctx, &s, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("PlannerRepository:GetSlot:Error:", err)
		return nil, err
	}
	return &s, nil
}

func (r *plannerRepository) CreateAssignment(ctx context.Context, a *entity.PlannerAssignment) error {
	query := `
		INSERT INTO planner_assignments (id, slot_id, musician_id, status, agreed_rate, actual_fee, created_at, updated_at)
		VALUES (:id, :slot_id, :musician_id, :status, :agreed_rate, :actual_fee, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		logger.Error("PlannerRepository:CreateAssignment:Error:", err)
		return err
	}
	return nil
}

const assignmentDetailColumns = `
	a.id, a.slot_id, a.musician_id, a.status, a.agreed_rate, a.actual_fee, a.created_at, a.updated_at,
	s.id AS "slot.id", s.planner_id AS "slot.planner_id", s.event_id AS "slot.event_id",
	s.category_id AS "slot.category_id", s.venue_name AS "slot.venue_name", s.date AS "slot.date",
	s.start_time AS "slot.start_time", s.end_time AS "slot.end_time", s.created_at AS "slot.created_at"
`

func (r *plannerRepository) GetAssignment(ctx context.Context, id uuid.UUID) (*entity.AssignmentDetail, error) {
	query := `SELECT ` + assignmentDetailColumns + `
		FROM planner_assignments a
		JOIN planner_slots s ON s.id = a.slot_id
		WHERE a.id = $1
	`
	var d entity.AssignmentDetail
	err := r.db.GetContext(ctx, &d, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("PlannerRepository:GetAssignment:Error:", err)
		return nil, err
	}
	return &d, nil
}

func (r *plannerRepository) UpdateAssignment(ctx context.Context, a *entity.PlannerAssignment) error {
	query := `
		UPDATE planner_assignments
		SET status = $2, agreed_rate = $3, actual_fee = $4, updated_at = $5
		WHERE id = $1
	`
	if err := r.db.ExecContext(ctx, query, a.ID, a.Status, a.AgreedRate, a.ActualFee, a.UpdatedAt); err != nil {
		logger.Error("PlannerRepository:UpdateAssignment:Error:", err)
		return err
	}
	return nil
}

func (r *plannerRepository) SetStatus(ctx context.Context, ids []uuid.UUID, from []entity.AssignmentStatus, to entity.AssignmentStatus, at time.Time) (int64, error) {
	idList := make([]string, 0, len(ids))
	for _, id := range ids {
		idList = append(idList, id.String())
	}
	fromList := make([]string, 0, len(from))
	for _, s := range from {
		fromList = append(fromList, string(s))
	}

	query := `
		UPDATE planner_assignments
		SET status = $3, updated_at = $4
		WHERE id::text = ANY($1::text[]) AND status = ANY($2::text[])
	`
	res, err := r.db.ExecResultContext(ctx, query, pq.Array(idList), pq.Array(fromList), to, at)
	if err != nil {
		logger.Error("PlannerRepository:SetStatus:Error:", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (r *plannerRepository) ListAssignments(ctx context.Context, plannerID uuid.UUID, ids []uuid.UUID, statuses []entity.AssignmentStatus) ([]entity.AssignmentDetail, error) {
	idList := make([]string, 0, len(ids))
	for _, id := range ids {
		idList = append(idList, id.String())
	}
	statusList := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusList = append(statusList, string(s))
	}

	query := `SELECT ` + assignmentDetailColumns + `
		FROM planner_assignments a
		JOIN planner_slots s ON s.id = a.slot_id
		WHERE s.planner_id = $1
			AND (cardinality($2::text[]) = 0 OR a.id::text = ANY($2::text[]))
			AND (cardinality($3::text[]) = 0 OR a.status = ANY($3::text[]))
		ORDER BY a.musician_id, s.date, s.start_time
	`
	var items []entity.AssignmentDetail
	if err := r.db.SelectContext(ctx, &items, query, plannerID, pq.Array(idList), pq.Array(statusList)); err != nil {
		logger.Error("PlannerRepository:ListAssignments:Error:", err)
		return nil, err
	}
	return items, nil
}
