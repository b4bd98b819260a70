// Package repository persists users.
package repository

import (
	"context"

	"eval-platform/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
