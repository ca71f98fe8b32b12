package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MetadataKind string

const (
	MetadataKindContract MetadataKind = "contract"
	MetadataKindMusician MetadataKind = "musician"
	MetadataKindBooking  MetadataKind = "booking"
)

// StatusMetadata records the last status change. Exactly one payload matching
// Kind is set.
type StatusMetadata struct {
	Kind     MetadataKind      `json:"kind"`
	Contract *ContractMetadata `json:"contract,omitempty"`
	Musician *MusicianMetadata `json:"musician,omitempty"`
	Booking  *BookingMetadata  `json:"booking,omitempty"`
}

// ContractMetadata describes a staff-driven transition.
type ContractMetadata struct {
	Actor  string         `json:"actor"`
	From   ContractStatus `json:"from"`
	To     ContractStatus `json:"to"`
	Reason string         `json:"reason,omitempty"`
	At     time.Time      `json:"at"`
}

// MusicianMetadata describes a musician's response through a signing token.
type MusicianMetadata struct {
	Action      string    `json:"action"`
	SignerName  string    `json:"signer_name,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Comments    string    `json:"comments,omitempty"`
	ArtifactKey string    `json:"artifact_key,omitempty"`
	At          time.Time `json:"at"`
}

// BookingMetadata links a booking change to the contract link that caused it.
type BookingMetadata struct {
	LinkID     uuid.UUID      `json:"link_id"`
	LinkStatus ContractStatus `json:"link_status"`
	At         time.Time      `json:"at"`
}

func NewContractMetadata(actor string, from, to ContractStatus, at time.Time) StatusMetadata {
	return StatusMetadata{
		Kind:     MetadataKindContract,
		Contract: &ContractMetadata{Actor: actor, From: from, To: to, At: at},
	}
}

func NewMusicianMetadata(m MusicianMetadata) StatusMetadata {
	return StatusMetadata{Kind: MetadataKindMusician, Musician: &m}
}

func NewBookingMetadata(linkID uuid.UUID, status ContractStatus, at time.Time) StatusMetadata {
	return StatusMetadata{
		Kind:    MetadataKindBooking,
		Booking: &BookingMetadata{LinkID: linkID, LinkStatus: status, At: at},
	}
}

func (m StatusMetadata) IsZero() bool {
	return m.Kind == ""
}

func (m StatusMetadata) Validate() error {
	set := 0
	for _, p := range []bool{m.Contract != nil, m.Musician != nil, m.Booking != nil} {
		if p {
			set++
		}
	}

	var ok bool
	switch m.Kind {
	case "":
		ok = set == 0
	case MetadataKindContract:
		ok = m.Contract != nil && set == 1
	case MetadataKindMusician:
		ok = m.Musician != nil && set == 1
	case MetadataKindBooking:
		ok = m.Booking != nil && set == 1
	default:
		return fmt.Errorf("unknown metadata kind %q", m.Kind)
	}
	if !ok {
		return fmt.Errorf("metadata of kind %q has mismatched payload", m.Kind)
	}
	return nil
}

func (m StatusMetadata) Value() (driver.Value, error) {
	if m.IsZero() {
		return nil, nil
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (m *StatusMetadata) Scan(value any) error {
	if value == nil {
		*m = StatusMetadata{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, m); err != nil {
		return err
	}
	return m.Validate()
}
