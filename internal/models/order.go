package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable record of a completed purchase. TotalAmount is the
// price actually charged, fixed at creation time even if the catalog price
// later changes.
type Order struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Reference   string          `gorm:"uniqueIndex;not null" json:"reference"`
	BuyerID     uint            `gorm:"index;not null" json:"buyer_id"`
	ProductID   uint            `gorm:"not null" json:"product_id"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}
