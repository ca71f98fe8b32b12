package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"go-musician-booking/core/entity"

	"github.com/google/uuid"
)

// Inbox item types.
const (
	TypeContractSigned   = "contract_signed"
	TypeContractRejected = "contract_rejected"
	TypeInvitation       = "invitation"
	TypeInvitationReply  = "invitation_reply"
)

// Notification is one inbox item for a staff user. Data carries ids of the
// contract or invitation it points at.
type Notification struct {
	entity.BaseEntity
	UserID  uuid.UUID `db:"user_id" json:"user_id"`
	Type    string    `db:"type" json:"type"`
	Title   string    `db:"title" json:"title"`
	Message string    `db:"message" json:"message"`
	Data    Payload   `db:"data" json:"data"`
	IsRead  bool      `db:"is_read" json:"is_read"`
}

// InboxFilter narrows an inbox listing. Zero value lists everything.
type InboxFilter struct {
	Type       string
	UnreadOnly bool
}

func (f InboxFilter) Match(n Notification) bool {
	if f.Type != "" && n.Type != f.Type {
		return false
	}
	return !f.UnreadOnly || !n.IsRead
}

type Payload map[string]any

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *Payload) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("notification payload: unsupported type %T", value)
	}
}

type Inbox = entity.Pagination[Notification]
