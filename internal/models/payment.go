package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses. A payment either never completes or completes exactly
// once; there is no failed terminal state.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
)

// Payment tracks an external checkout session. ExternalReference is the
// processor's session id and doubles as the idempotency key: the unique
// index guarantees at most one row per checkout, and the guarded
// pending->succeeded transition guarantees at most one wallet credit.
type Payment struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	UserID            uint            `gorm:"index;not null" json:"user_id"`
	ExternalReference string          `gorm:"uniqueIndex;not null" json:"external_reference"`
	Amount            decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Status            string          `gorm:"not null;default:'pending'" json:"status"`
	Metadata          JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
