package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gift is an immutable record of a product gifted from one user to another.
// Only the sender is charged; the receiver gets the product, not currency.
type Gift struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	SenderID    uint            `gorm:"index;not null" json:"sender_id"`
	ReceiverID  uint            `gorm:"index;not null" json:"receiver_id"`
	ProductID   uint            `gorm:"not null" json:"product_id"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"total_amount"`
	Message     string          `json:"message,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
