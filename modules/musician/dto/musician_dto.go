package dto

import "github.com/google/uuid"

type CreateMusicianRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type PayRateRequest struct {
	CategoryID uuid.UUID `json:"category_id"`
	HourlyRate *int64    `json:"hourly_rate"`
	DayRate    *int64    `json:"day_rate"`
	EventRate  *int64    `json:"event_rate"`
}
