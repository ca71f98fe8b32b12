package dto

import "github.com/google/uuid"

type CreatePlannerRequest struct {
	Name  string `json:"name"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
}

type CreateSlotRequest struct {
	EventID    *uuid.UUID `json:"event_id"`
	CategoryID uuid.UUID  `json:"category_id"`
	VenueName  string     `json:"venue_name"`
	Date       string     `json:"date"`
	StartTime  string     `json:"start_time"`
	EndTime    string     `json:"end_time"`
}

type AssignRequest struct {
	MusicianID uuid.UUID `json:"musician_id"`
	AgreedRate *int64    `json:"agreed_rate"`
}

type UpdateAssignmentRequest struct {
	Status     string `json:"status"`
	AgreedRate *int64 `json:"agreed_rate"`
	ActualFee  *int64 `json:"actual_fee"`
}
