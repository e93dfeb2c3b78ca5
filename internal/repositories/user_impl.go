package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kredo/internal/models"
	"kredo/internal/repositories/cache"

	"gorm.io/gorm"
)

type userRepository struct {
	db    *gorm.DB
	cache *cache.Service
}

// NewUserRepository creates a new user repository. The cache is optional;
// a nil cache disables read-through caching.
func NewUserRepository(db *gorm.DB, cache *cache.Service) UserRepository {
	return &userRepository{db: db, cache: cache}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("email already registered: %w", err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if r.cache != nil {
		var cached models.User
		key := r.cache.Key("user", "id", id)
		if found, err := r.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	r.cacheUser(ctx, &user)
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.cache != nil {
		var cached models.User
		key := r.cache.Key("user", "email", email)
		if found, err := r.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	r.cacheUser(ctx, &user)
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	r.invalidateUser(ctx, user)
	return nil
}

func (r *userRepository) IncrementTokenVersion(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment token version: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	// The cached copy still carries the old version; drop it.
	if user, err := r.GetByID(ctx, userID); err == nil {
		r.invalidateUser(ctx, user)
	}
	return nil
}

// Cached user entries deliberately omit the balance as a source of truth:
// money-movement paths always read balances through the Ledger, inside a
// transaction. The cache only serves identity lookups.
func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache == nil {
		return
	}
	for _, key := range []string{
		r.cache.Key("user", "id", user.ID),
		r.cache.Key("user", "email", user.Email),
	} {
		if err := r.cache.Set(ctx, key, user); err != nil {
			log.Printf("failed to cache user %d: %v", user.ID, err)
		}
	}
}

func (r *userRepository) invalidateUser(ctx context.Context, user *models.User) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx,
		r.cache.Key("user", "id", user.ID),
		r.cache.Key("user", "email", user.Email),
	); err != nil {
		log.Printf("failed to invalidate user cache %d: %v", user.ID, err)
	}
}
