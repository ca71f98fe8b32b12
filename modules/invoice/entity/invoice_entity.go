package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusFinalized InvoiceStatus = "finalized"
	InvoiceStatusPaid      InvoiceStatus = "paid"
)

// Next returns the only status an invoice may move to, or "" when paid.
func (s InvoiceStatus) Next() InvoiceStatus {
	switch s {
	case InvoiceStatusDraft:
		return InvoiceStatusFinalized
	case InvoiceStatusFinalized:
		return InvoiceStatusPaid
	}
	return ""
}

// MonthlyInvoice is unique per (planner, musician, month, year).
type MonthlyInvoice struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	PlannerID   uuid.UUID     `db:"planner_id" json:"planner_id"`
	MusicianID  uuid.UUID     `db:"musician_id" json:"musician_id"`
	Month       int           `db:"month" json:"month"`
	Year        int           `db:"year" json:"year"`
	TotalAmount int64         `db:"total_amount" json:"total_amount"`
	Status      InvoiceStatus `db:"status" json:"status"`
	LineItems   LineItems     `db:"line_items" json:"line_items"`
	Notes       *string       `db:"notes" json:"notes"`
	FinalizedAt *time.Time    `db:"finalized_at" json:"finalized_at"`
	PaidAt      *time.Time    `db:"paid_at" json:"paid_at"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// LineItem is one billed assignment.
type LineItem struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	Date         string    `json:"date"`
	VenueName    string    `json:"venue_name"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Fee          int64     `json:"fee"`
}

type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *LineItems) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, l)
}

func (l LineItems) Total() int64 {
	var sum int64
	for _, item := range l {
		sum += item.Fee
	}
	return sum
}
