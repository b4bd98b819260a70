// Package audit writes the append-only security audit trail.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"eval-platform/backend/internal/audit/domain"
	auditrepo "eval-platform/backend/internal/audit/repository"
	"eval-platform/backend/internal/metrics"
)

// Recorder appends security events and alerts. All writes are best-effort:
// a persistence failure is logged and counted, never returned, so audit-trail
// health does not couple to authentication availability.
type Recorder struct {
	repo auditrepo.Repository
	log  logrus.FieldLogger
}

// NewRecorder returns a Recorder that persists to repo and reports failures to log.
func NewRecorder(repo auditrepo.Repository, log logrus.FieldLogger) *Recorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Recorder{repo: repo, log: log}
}

// LogEvent appends one security event. sessionID, userID, and ip may be empty
// when unknown.
func (r *Recorder) LogEvent(ctx context.Context, sessionID, userID, eventType, description, ip string) {
	if r.repo == nil {
		return
	}
	e := &domain.SecurityEvent{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		UserID:      userID,
		EventType:   eventType,
		Description: description,
		IPAddress:   ip,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.repo.CreateEvent(ctx, e); err != nil {
		metrics.AuditWriteDrops.WithLabelValues("event").Inc()
		r.log.WithError(err).WithFields(logrus.Fields{
			"event_type": eventType,
			"user_id":    userID,
		}).Warn("audit: dropped security event")
	}
}

// CreateAlert appends one unresolved security alert for the user.
func (r *Recorder) CreateAlert(ctx context.Context, userID, alertType, severity string) {
	if r.repo == nil {
		return
	}
	a := &domain.SecurityAlert{
		ID:        uuid.New().String(),
		UserID:    userID,
		AlertType: alertType,
		Severity:  severity,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.CreateAlert(ctx, a); err != nil {
		metrics.AuditWriteDrops.WithLabelValues("alert").Inc()
		r.log.WithError(err).WithFields(logrus.Fields{
			"alert_type": alertType,
			"user_id":    userID,
		}).Warn("audit: dropped security alert")
	}
}
