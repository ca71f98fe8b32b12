package entity

import (
	"time"

	"github.com/google/uuid"
)

// MonthlyContract groups one planner month's musician contracts.
type MonthlyContract struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PlannerID          uuid.UUID  `db:"planner_id" json:"planner_id"`
	Month              int        `db:"month" json:"month"`
	Year               int        `db:"year" json:"year"`
	CreatedBy          *uuid.UUID `db:"created_by" json:"created_by"`
	TermsAndConditions string     `db:"terms_and_conditions" json:"terms_and_conditions"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

type MonthlyContractMusician struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	ContractID    uuid.UUID      `db:"contract_id" json:"contract_id"`
	MusicianID    uuid.UUID      `db:"musician_id" json:"musician_id"`
	Token         string         `db:"token" json:"-"`
	Status        ContractStatus `db:"status" json:"status"`
	TotalFee      int64          `db:"total_fee" json:"total_fee"`
	SentAt        *time.Time     `db:"sent_at" json:"sent_at"`
	RespondedAt   *time.Time     `db:"responded_at" json:"responded_at"`
	CompletedAt   *time.Time     `db:"completed_at" json:"completed_at"`
	Response      *string        `db:"response" json:"response"`
	IPAddress     *string        `db:"ip_address" json:"ip_address"`
	SignatureHash *string        `db:"signature_hash" json:"signature_hash"`
	Metadata      StatusMetadata `db:"metadata" json:"metadata"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

type MonthlyContractDate struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ContractMusicianID uuid.UUID  `db:"contract_musician_id" json:"contract_musician_id"`
	AssignmentID       *uuid.UUID `db:"assignment_id" json:"assignment_id"`
	Date               time.Time  `db:"date" json:"date"`
	VenueName          string     `db:"venue_name" json:"venue_name"`
	StartTime          string     `db:"start_time" json:"start_time"`
	EndTime            string     `db:"end_time" json:"end_time"`
	Fee                int64      `db:"fee" json:"fee"`
	Status             DateStatus `db:"status" json:"status"`
}

// ContractLink is the single-event contract sent for one booking.
type ContractLink struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	BookingID     uuid.UUID      `db:"booking_id" json:"booking_id"`
	MusicianID    uuid.UUID      `db:"musician_id" json:"musician_id"`
	EventID       uuid.UUID      `db:"event_id" json:"event_id"`
	Date          time.Time      `db:"date" json:"date"`
	Token         string         `db:"token" json:"-"`
	Status        ContractStatus `db:"status" json:"status"`
	Fee           int64          `db:"fee" json:"fee"`
	SentAt        *time.Time     `db:"sent_at" json:"sent_at"`
	RespondedAt   *time.Time     `db:"responded_at" json:"responded_at"`
	CompletedAt   *time.Time     `db:"completed_at" json:"completed_at"`
	Response      *string        `db:"response" json:"response"`
	IPAddress     *string        `db:"ip_address" json:"ip_address"`
	SignatureHash *string        `db:"signature_hash" json:"signature_hash"`
	Metadata      StatusMetadata `db:"metadata" json:"metadata"`
	CreatedBy     string         `db:"created_by" json:"created_by"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// ResponseUpdate is applied by a compare-and-set on the token while the row
// is still pending or sent.
type ResponseUpdate struct {
	Token         string
	Status        ContractStatus
	Response      string
	IPAddress     string
	SignatureHash *string
	Metadata      StatusMetadata
	At            time.Time
}
