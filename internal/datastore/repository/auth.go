package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
	"github.com/veritrack/veritrack-go/internal/errors"
)

// AuthRepository exposes the identity lookups the notifier needs. Identity
// management is owned by the surrounding CRUD layer.
type AuthRepository interface {
	GetUser(ctx context.Context, id uint) (*entities.User, error)
	GetOrganisation(ctx context.Context, id uint) (*entities.Organisation, error)
}

// authRepository implements AuthRepository.
type authRepository struct {
	db *gorm.DB
}

// NewAuthRepository creates a new AuthRepository.
func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &authRepository{db: db}
}

// GetUser resolves a user by ID. Returns ErrUserNotFound when the user has
// been removed or deactivated.
func (r *authRepository) GetUser(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// GetOrganisation resolves an organisation by ID.
func (r *authRepository) GetOrganisation(ctx context.Context, id uint) (*entities.Organisation, error) {
	var org entities.Organisation
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganisationNotFound
		}
		return nil, fmt.Errorf("failed to get organisation %d: %w", id, err)
	}
	return &org, nil
}
