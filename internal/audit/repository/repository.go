// Package repository persists security events and alerts.
package repository

import (
	"context"

	"eval-platform/backend/internal/audit/domain"
)

// Repository defines append-only persistence for security events and alerts.
type Repository interface {
	CreateEvent(ctx context.Context, e *domain.SecurityEvent) error
	CreateAlert(ctx context.Context, a *domain.SecurityAlert) error
	ListEventsByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.SecurityEvent, error)
}
