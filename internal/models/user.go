package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Email        string          `gorm:"uniqueIndex;not null" json:"email"`
	Password     string          `gorm:"not null" json:"-"`
	Name         string          `gorm:"not null" json:"name"`
	Balance      decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	IsAdmin      bool            `gorm:"default:false" json:"is_admin"`
	TokenVersion int             `gorm:"default:1" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
