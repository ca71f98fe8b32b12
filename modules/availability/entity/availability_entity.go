package entity

import (
	"time"

	"github.com/google/uuid"
)

// Availability is an explicit ledger row. A musician with no row for a date
// is available.
type Availability struct {
	MusicianID  uuid.UUID `db:"musician_id" json:"musician_id"`
	Date        time.Time `db:"date" json:"date"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	Note        *string   `db:"note" json:"note"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
