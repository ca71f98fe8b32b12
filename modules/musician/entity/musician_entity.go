package entity

import (
	"go-musician-booking/core/entity"

	"github.com/google/uuid"
)

type Musician struct {
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Phone string `db:"phone" json:"phone"`
	entity.BaseEntity
}

// PayRate is a musician's rate card for one category. Amounts are minor units.
type PayRate struct {
	MusicianID uuid.UUID `db:"musician_id" json:"musician_id"`
	CategoryID uuid.UUID `db:"category_id" json:"category_id"`
	HourlyRate *int64    `db:"hourly_rate" json:"hourly_rate"`
	DayRate    *int64    `db:"day_rate" json:"day_rate"`
	EventRate  *int64    `db:"event_rate" json:"event_rate"`
	entity.BaseEntity
}

type PaginatedMusicianEntity = entity.Pagination[Musician]
