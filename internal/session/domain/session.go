// Package domain holds the session record and its lifecycle rules.
package domain

import "time"

// Status is the lifecycle state of a session. Transitions are monotonic:
// active→revoked and active→expired are the only legal ones; revoked and
// expired are terminal.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
	StatusExpired Status = "expired"
)

// Session represents one continuous authenticated period for a device.
type Session struct {
	ID                string
	UserID            string
	DeviceFingerprint string
	IPAddress         string
	CreatedAt         time.Time
	LastActivity      time.Time
	ExpiresAt         time.Time
	Status            Status
	Suspicious        bool
}

// IsActive reports whether the session is usable at now: status active and not
// past its expiry. A stored status of "active" past expires_at counts as
// expired on read; no background sweep is required.
func (s *Session) IsActive(now time.Time) bool {
	return s.Status == StatusActive && now.Before(s.ExpiresAt)
}

// EffectiveStatus returns the status as of now, mapping an overdue active
// session to StatusExpired without mutating the record.
func (s *Session) EffectiveStatus(now time.Time) Status {
	if s.Status == StatusActive && !now.Before(s.ExpiresAt) {
		return StatusExpired
	}
	return s.Status
}
