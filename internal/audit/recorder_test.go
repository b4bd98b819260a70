package audit

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"eval-platform/backend/internal/audit/domain"
)

type fakeRepo struct {
	events []*domain.SecurityEvent
	alerts []*domain.SecurityAlert
	err    error
}

func (f *fakeRepo) CreateEvent(_ context.Context, e *domain.SecurityEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeRepo) CreateAlert(_ context.Context, a *domain.SecurityAlert) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeRepo) ListEventsByUser(context.Context, string, int32, int32) ([]*domain.SecurityEvent, error) {
	return f.events, nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestRecorder_LogEvent(t *testing.T) {
	repo := &fakeRepo{}
	r := NewRecorder(repo, quietLogger())
	r.LogEvent(context.Background(), "s1", "u1", domain.EventSuspiciousActivity, "odd login pattern", "10.0.0.5")

	if len(repo.events) != 1 {
		t.Fatalf("events: got %d, want 1", len(repo.events))
	}
	e := repo.events[0]
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("event missing id or created_at")
	}
	if e.SessionID != "s1" || e.UserID != "u1" || e.EventType != domain.EventSuspiciousActivity {
		t.Errorf("event fields: %+v", e)
	}
}

func TestRecorder_WriteFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	r := NewRecorder(repo, quietLogger())

	// Must not panic or surface the error to the caller.
	r.LogEvent(context.Background(), "", "u1", domain.EventLoginFailure, "bad password", "")
	r.CreateAlert(context.Background(), "u1", domain.AlertImpossibleTravel, domain.SeverityHigh)
}

func TestRecorder_CreateAlert(t *testing.T) {
	repo := &fakeRepo{}
	r := NewRecorder(repo, quietLogger())
	r.CreateAlert(context.Background(), "u1", domain.AlertConcurrentSessions, domain.SeverityMedium)

	if len(repo.alerts) != 1 {
		t.Fatalf("alerts: got %d, want 1", len(repo.alerts))
	}
	a := repo.alerts[0]
	if a.UserID != "u1" || a.AlertType != domain.AlertConcurrentSessions || a.Severity != domain.SeverityMedium {
		t.Errorf("alert fields: %+v", a)
	}
	if a.Resolved {
		t.Error("new alert must be unresolved")
	}
}

func TestRecorder_NilRepoIsNoop(t *testing.T) {
	r := NewRecorder(nil, quietLogger())
	r.LogEvent(context.Background(), "", "", domain.EventLoginSuccess, "", "")
	r.CreateAlert(context.Background(), "u1", domain.AlertConcurrentSessions, domain.SeverityLow)
}
