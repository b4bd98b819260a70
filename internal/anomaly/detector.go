// Package anomaly runs heuristic checks over session history. Every signal is
// advisory: detections are recorded and surfaced, never used to block a login.
package anomaly

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"eval-platform/backend/internal/audit/domain"
	"eval-platform/backend/internal/metrics"
	sessiondomain "eval-platform/backend/internal/session/domain"
)

const (
	// DefaultMaxConcurrentSessions is the advisory per-user active session threshold.
	DefaultMaxConcurrentSessions = 5
	// DefaultTravelWindow is the window within which a login from a different
	// IPv4 block is considered impossible travel.
	DefaultTravelWindow = 600 * time.Second
)

// SessionRepo is the minimal session repository needed by the detector.
type SessionRepo interface {
	CountActive(ctx context.Context, userID string) (int, error)
	LatestActiveByUser(ctx context.Context, userID string) (*sessiondomain.Session, error)
	FlagSuspicious(ctx context.Context, id string) error
}

// Recorder is the minimal audit writer needed by the detector. Implementations
// are best-effort and never return errors.
type Recorder interface {
	LogEvent(ctx context.Context, sessionID, userID, eventType, description, ip string)
	CreateAlert(ctx context.Context, userID, alertType, severity string)
}

// Detector evaluates session history for suspicious authentication patterns.
type Detector struct {
	sessions      SessionRepo
	recorder      Recorder
	log           logrus.FieldLogger
	maxConcurrent int
	travelWindow  time.Duration
}

// NewDetector returns a Detector over the given session repository and audit
// recorder. maxConcurrent and travelWindow fall back to the defaults when
// non-positive.
func NewDetector(sessions SessionRepo, recorder Recorder, log logrus.FieldLogger, maxConcurrent int, travelWindow time.Duration) *Detector {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSessions
	}
	if travelWindow <= 0 {
		travelWindow = DefaultTravelWindow
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Detector{
		sessions:      sessions,
		recorder:      recorder,
		log:           log,
		maxConcurrent: maxConcurrent,
		travelWindow:  travelWindow,
	}
}

// ConcurrentSessionsExceeded reports whether the user's active session count is
// above the threshold. The count is an eventually-consistent snapshot; two
// near-simultaneous logins may both pass, which is acceptable for an advisory
// signal.
func (d *Detector) ConcurrentSessionsExceeded(ctx context.Context, userID string) (bool, error) {
	n, err := d.sessions.CountActive(ctx, userID)
	if err != nil {
		return false, err
	}
	return n > d.maxConcurrent, nil
}

// ImpossibleTravel reports whether a login from newIP is physically implausible
// given the user's most recent active session: created less than the window ago
// from an IP in a different /24 block. Returns false when no prior active
// session exists. This is an IPv4-prefix heuristic, not a geolocation check.
func (d *Detector) ImpossibleTravel(ctx context.Context, userID, newIP string) (bool, error) {
	last, err := d.sessions.LatestActiveByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if last == nil {
		return false, nil
	}
	elapsed := time.Since(last.CreatedAt)
	if elapsed >= d.travelWindow {
		return false, nil
	}
	return !sameIPBlock(last.IPAddress, newIP), nil
}

// FlagSuspicious marks the session suspicious and appends a security event.
// The event append is best-effort and never fails the caller.
func (d *Detector) FlagSuspicious(ctx context.Context, sessionID, reason string) error {
	if err := d.sessions.FlagSuspicious(ctx, sessionID); err != nil {
		return err
	}
	metrics.AnomalyFlags.WithLabelValues("suspicious_session").Inc()
	if d.recorder != nil {
		d.recorder.LogEvent(ctx, sessionID, "", domain.EventSuspiciousActivity, reason, "")
	}
	return nil
}

// ReviewLogin runs the advisory checks for a freshly created session.
// travelSuspected must be computed before the session was created, so the
// "latest active session" the heuristic saw was the prior login. Detector
// failures degrade to logging; the login has already succeeded.
func (d *Detector) ReviewLogin(ctx context.Context, userID, sessionID, ip string, travelSuspected bool) {
	if travelSuspected {
		metrics.AnomalyFlags.WithLabelValues("impossible_travel").Inc()
		reason := fmt.Sprintf("login from %s within travel window of prior session", ip)
		if err := d.FlagSuspicious(ctx, sessionID, reason); err != nil {
			d.log.WithError(err).WithField("session_id", sessionID).Warn("anomaly: flag suspicious failed")
		}
		if d.recorder != nil {
			d.recorder.CreateAlert(ctx, userID, domain.AlertImpossibleTravel, domain.SeverityHigh)
		}
	}

	exceeded, err := d.ConcurrentSessionsExceeded(ctx, userID)
	if err != nil {
		d.log.WithError(err).WithField("user_id", userID).Warn("anomaly: concurrent session check failed")
		return
	}
	if exceeded {
		metrics.AnomalyFlags.WithLabelValues("concurrent_sessions").Inc()
		if d.recorder != nil {
			d.recorder.LogEvent(ctx, sessionID, userID, domain.EventSuspiciousActivity,
				fmt.Sprintf("active sessions above threshold %d", d.maxConcurrent), ip)
			d.recorder.CreateAlert(ctx, userID, domain.AlertConcurrentSessions, domain.SeverityMedium)
		}
	}
}

// sameIPBlock reports whether two IPv4 addresses share their first three
// octets. Anything that is not dotted-quad compares as a different block.
func sameIPBlock(ip1, ip2 string) bool {
	a := strings.Split(ip1, ".")
	b := strings.Split(ip2, ".")
	if len(a) != 4 || len(b) != 4 {
		return false
	}
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2]
}
