package repositories

import (
	"context"

	"kredo/internal/models"
)

// UserRepository handles identity lookups and account creation. Balances
// live on the user row but are mutated exclusively through the Ledger.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	IncrementTokenVersion(ctx context.Context, userID uint) error
}
