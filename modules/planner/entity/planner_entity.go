package entity

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusAttended  AssignmentStatus = "attended"
	AssignmentStatusSigned    AssignmentStatus = "signed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
	AssignmentStatusNoShow    AssignmentStatus = "no_show"
)

func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusAssigned, AssignmentStatusAttended, AssignmentStatusSigned, AssignmentStatusCancelled, AssignmentStatusNoShow:
		return true
	}
	return false
}

// Billable statuses are invoiced.
func (s AssignmentStatus) Billable() bool {
	return s == AssignmentStatusAttended || s == AssignmentStatusSigned
}

type Planner struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Month     int        `db:"month" json:"month"`
	Year      int        `db:"year" json:"year"`
	CreatedBy *uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

type PlannerSlot struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PlannerID  uuid.UUID  `db:"planner_id" json:"planner_id"`
	EventID    *uuid.UUID `db:"event_id" json:"event_id"`
	CategoryID uuid.UUID  `db:"category_id" json:"category_id"`
	VenueName  string     `db:"venue_name" json:"venue_name"`
	Date       time.Time  `db:"date" json:"date"`
	StartTime  string     `db:"start_time" json:"start_time"`
	EndTime    string     `db:"end_time" json:"end_time"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

type PlannerAssignment struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	SlotID     uuid.UUID        `db:"slot_id" json:"slot_id"`
	MusicianID uuid.UUID        `db:"musician_id" json:"musician_id"`
	Status     AssignmentStatus `db:"status" json:"status"`
	AgreedRate *int64           `db:"agreed_rate" json:"agreed_rate"`
	ActualFee  *int64           `db:"actual_fee" json:"actual_fee"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// AssignmentDetail is an assignment joined with its slot.
type AssignmentDetail struct {
	PlannerAssignment
	Slot PlannerSlot `db:"slot" json:"slot"`
}
