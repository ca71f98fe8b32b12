package entity

import (
	"time"

	contractEntity "go-musician-booking/modules/contract/entity"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type Booking struct {
	ID             uuid.UUID                     `db:"id" json:"id"`
	InvitationID   *uuid.UUID                    `db:"invitation_id" json:"invitation_id"`
	EventID        uuid.UUID                     `db:"event_id" json:"event_id"`
	MusicianID     uuid.UUID                     `db:"musician_id" json:"musician_id"`
	Date           time.Time                     `db:"date" json:"date"`
	Status         BookingStatus                 `db:"status" json:"status"`
	ContractSigned bool                          `db:"contract_signed" json:"contract_signed"`
	PaymentStatus  PaymentStatus                 `db:"payment_status" json:"payment_status"`
	Fee            int64                         `db:"fee" json:"fee"`
	Metadata       contractEntity.StatusMetadata `db:"metadata" json:"metadata"`
	CreatedAt      time.Time                     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time                     `db:"updated_at" json:"updated_at"`
}
