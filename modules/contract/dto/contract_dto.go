package dto

import (
	"time"

	"go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

type GenerateContractsRequest struct {
	PlannerID     uuid.UUID   `json:"plannerId"`
	AssignmentIDs []uuid.UUID `json:"assignmentIds"`
}

type RespondRequest struct {
	Token      string     `json:"token"`
	ContractID *uuid.UUID `json:"contractId"`
	Action     string     `json:"action"`
	Comments   string     `json:"comments"`
	SignerName string     `json:"signerName"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type CreateLinkRequest struct {
	BookingID uuid.UUID `json:"bookingId"`
}

// ContractView is what a musician sees when opening a signing link.
type ContractView struct {
	ID                 uuid.UUID             `json:"id"`
	ContractID         uuid.UUID             `json:"contractId"`
	MusicianID         uuid.UUID             `json:"musicianId"`
	MusicianName       string                `json:"musicianName"`
	Month              int                   `json:"month"`
	Year               int                   `json:"year"`
	Dates              []ContractDateView    `json:"dates"`
	TotalAmount        int64                 `json:"totalAmount"`
	Status             entity.ContractStatus `json:"status"`
	AggregateStatus    entity.DateStatus     `json:"aggregateStatus"`
	TermsAndConditions string                `json:"termsAndConditions"`
	SentAt             *time.Time            `json:"sentAt"`
	RespondedAt        *time.Time            `json:"respondedAt"`
	CompletedAt        *time.Time            `json:"completedAt"`
}

type ContractDateView struct {
	Date      string            `json:"date"`
	Venue     string            `json:"venue"`
	StartTime string            `json:"startTime"`
	EndTime   string            `json:"endTime"`
	Fee       int64             `json:"fee"`
	Status    entity.DateStatus `json:"status"`
}

type LinkView struct {
	ID                 uuid.UUID             `json:"id"`
	BookingID          uuid.UUID             `json:"bookingId"`
	MusicianID         uuid.UUID             `json:"musicianId"`
	MusicianName       string                `json:"musicianName"`
	EventID            uuid.UUID             `json:"eventId"`
	Date               string                `json:"date"`
	Fee                int64                 `json:"fee"`
	Status             entity.ContractStatus `json:"status"`
	TermsAndConditions string                `json:"termsAndConditions"`
	SentAt             *time.Time            `json:"sentAt"`
	RespondedAt        *time.Time            `json:"respondedAt"`
	CompletedAt        *time.Time            `json:"completedAt"`
}

// ContractMusicianSummary is the staff view of one musician's slice.
type ContractMusicianSummary struct {
	entity.MonthlyContractMusician
	AggregateStatus entity.DateStatus            `json:"aggregate_status"`
	Dates           []entity.MonthlyContractDate `json:"dates"`
}

type MonthlyContractDetail struct {
	Contract  *entity.MonthlyContract   `json:"contract"`
	Musicians []ContractMusicianSummary `json:"musicians"`
}
