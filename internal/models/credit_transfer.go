package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditTransfer is an immutable record of credits moved between two users.
// Unlike a Gift, the receiver's balance is credited with the full amount.
type CreditTransfer struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	SenderID   uint            `gorm:"index;not null" json:"sender_id"`
	ReceiverID uint            `gorm:"index;not null" json:"receiver_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Message    string          `json:"message,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
