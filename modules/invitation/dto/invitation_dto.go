package dto

import (
	"go-musician-booking/modules/invitation/entity"

	"github.com/google/uuid"
)

type EventDataDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type CreateInvitationRequest struct {
	EventID     uuid.UUID    `json:"event_id"`
	Date        string       `json:"date"`
	Fee         int64        `json:"fee"`
	MusicianIDs []uuid.UUID  `json:"musician_ids"`
	EventData   EventDataDTO `json:"event_data"`
}

type SkippedInvitation struct {
	MusicianID uuid.UUID `json:"musician_id"`
	Reason     string    `json:"reason"`
}

type CreateInvitationsResponse struct {
	Invitations []entity.Invitation `json:"invitations"`
	Skipped     []SkippedInvitation `json:"skipped"`
}

type PendingInvitationsResponse struct {
	Invitations []entity.Invitation `json:"invitations"`
	Total       int                 `json:"total"`
}
