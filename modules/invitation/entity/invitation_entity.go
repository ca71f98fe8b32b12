package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// EventData is the event snapshot shown to the musician.
type EventData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

func (e EventData) Value() (driver.Value, error) {
	return json.Marshal(e)
}

func (e *EventData) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, e)
}

type Invitation struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	EventID     uuid.UUID        `db:"event_id" json:"event_id"`
	MusicianID  uuid.UUID        `db:"musician_id" json:"musician_id"`
	Date        time.Time        `db:"date" json:"date"`
	Status      InvitationStatus `db:"status" json:"status"`
	CreatedBy   *uuid.UUID       `db:"created_by" json:"created_by"`
	Fee         int64            `db:"fee" json:"fee"`
	EventData   EventData        `db:"event_data" json:"event_data"`
	RespondedAt *time.Time       `db:"responded_at" json:"responded_at"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}
