// Package domain holds the append-only security audit records.
package domain

import "time"

// Event types written by the anomaly detector and the auth flows.
const (
	EventSuspiciousActivity = "suspicious_activity"
	EventLoginSuccess       = "login_success"
	EventLoginFailure       = "login_failure"
	EventSessionRevoked     = "session_revoked"
)

// Alert severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Alert types.
const (
	AlertConcurrentSessions = "concurrent_sessions_exceeded"
	AlertImpossibleTravel   = "impossible_travel"
)

// SecurityEvent is an append-only audit record. It is never mutated or deleted.
type SecurityEvent struct {
	ID          string
	SessionID   string // empty when the event is not tied to a session
	UserID      string // empty when the event is not tied to a user
	EventType   string
	Description string
	IPAddress   string // empty when unknown
	CreatedAt   time.Time
}

// SecurityAlert is an append-only alert for operator review. Resolved is
// mutated only by external operator tooling.
type SecurityAlert struct {
	ID        string
	UserID    string
	AlertType string
	Severity  string
	Resolved  bool
	CreatedAt time.Time
}
