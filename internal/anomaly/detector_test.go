package anomaly

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	sessiondomain "eval-platform/backend/internal/session/domain"
)

type fakeSessions struct {
	count      int
	countErr   error
	latest     *sessiondomain.Session
	latestErr  error
	flagged    []string
	flagErr    error
}

func (f *fakeSessions) CountActive(context.Context, string) (int, error) {
	return f.count, f.countErr
}

func (f *fakeSessions) LatestActiveByUser(context.Context, string) (*sessiondomain.Session, error) {
	return f.latest, f.latestErr
}

func (f *fakeSessions) FlagSuspicious(_ context.Context, id string) error {
	if f.flagErr != nil {
		return f.flagErr
	}
	f.flagged = append(f.flagged, id)
	return nil
}

type recorded struct {
	eventTypes []string
	alertTypes []string
	failEvents bool
}

func (r *recorded) LogEvent(_ context.Context, _, _, eventType, _, _ string) {
	if r.failEvents {
		return // best-effort writer drops silently
	}
	r.eventTypes = append(r.eventTypes, eventType)
}

func (r *recorded) CreateAlert(_ context.Context, _, alertType, _ string) {
	r.alertTypes = append(r.alertTypes, alertType)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestDetector(s *fakeSessions, r Recorder) *Detector {
	return NewDetector(s, r, quietLogger(), 5, 600*time.Second)
}

func TestConcurrentSessionsExceeded(t *testing.T) {
	tests := []struct {
		count int
		want  bool
	}{
		{5, false}, // exactly at threshold stays quiet
		{6, true},
		{0, false},
	}
	for _, tt := range tests {
		d := newTestDetector(&fakeSessions{count: tt.count}, &recorded{})
		got, err := d.ConcurrentSessionsExceeded(context.Background(), "u1")
		if err != nil {
			t.Fatalf("count %d: %v", tt.count, err)
		}
		if got != tt.want {
			t.Errorf("count %d: got %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestImpossibleTravel(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		latest  *sessiondomain.Session
		newIP   string
		want    bool
	}{
		{
			name:   "recent login from different block",
			latest: &sessiondomain.Session{IPAddress: "10.0.0.5", CreatedAt: now.Add(-30 * time.Second)},
			newIP:  "203.0.113.9",
			want:   true,
		},
		{
			name:   "same scenario past the window",
			latest: &sessiondomain.Session{IPAddress: "10.0.0.5", CreatedAt: now.Add(-601 * time.Second)},
			newIP:  "203.0.113.9",
			want:   false,
		},
		{
			name:   "same /24 block regardless of elapsed",
			latest: &sessiondomain.Session{IPAddress: "10.0.0.5", CreatedAt: now.Add(-30 * time.Second)},
			newIP:  "10.0.0.200",
			want:   false,
		},
		{
			name:   "no prior active session",
			latest: nil,
			newIP:  "203.0.113.9",
			want:   false,
		},
		{
			name:   "unparseable prior ip counts as different block",
			latest: &sessiondomain.Session{IPAddress: "not-an-ip", CreatedAt: now.Add(-30 * time.Second)},
			newIP:  "203.0.113.9",
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector(&fakeSessions{latest: tt.latest}, &recorded{})
			got, err := d.ImpossibleTravel(context.Background(), "u1", tt.newIP)
			if err != nil {
				t.Fatalf("ImpossibleTravel: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameIPBlock(t *testing.T) {
	if !sameIPBlock("192.168.1.1", "192.168.1.100") {
		t.Error("same /24 should match")
	}
	if sameIPBlock("192.168.1.1", "192.168.2.1") {
		t.Error("different third octet should not match")
	}
	if sameIPBlock("invalid", "192.168.1.1") {
		t.Error("invalid input should not match")
	}
}

func TestFlagSuspicious(t *testing.T) {
	sessions := &fakeSessions{}
	rec := &recorded{}
	d := newTestDetector(sessions, rec)

	if err := d.FlagSuspicious(context.Background(), "s1", "because"); err != nil {
		t.Fatalf("FlagSuspicious: %v", err)
	}
	if len(sessions.flagged) != 1 || sessions.flagged[0] != "s1" {
		t.Errorf("flagged: %v", sessions.flagged)
	}
	if len(rec.eventTypes) != 1 {
		t.Errorf("events: %v", rec.eventTypes)
	}
}

func TestFlagSuspicious_EventDropDoesNotFail(t *testing.T) {
	sessions := &fakeSessions{}
	d := newTestDetector(sessions, &recorded{failEvents: true})
	if err := d.FlagSuspicious(context.Background(), "s1", "because"); err != nil {
		t.Fatalf("FlagSuspicious with failing event writer: %v", err)
	}
	if len(sessions.flagged) != 1 {
		t.Error("session must still be flagged")
	}
}

func TestFlagSuspicious_FlagErrorSurfaces(t *testing.T) {
	sessions := &fakeSessions{flagErr: errors.New("db down")}
	d := newTestDetector(sessions, &recorded{})
	if err := d.FlagSuspicious(context.Background(), "s1", "because"); err == nil {
		t.Fatal("want error when the flag update itself fails")
	}
}

func TestReviewLogin_TravelSuspected(t *testing.T) {
	sessions := &fakeSessions{count: 1}
	rec := &recorded{}
	d := newTestDetector(sessions, rec)

	d.ReviewLogin(context.Background(), "u1", "s2", "203.0.113.9", true)

	if len(sessions.flagged) != 1 || sessions.flagged[0] != "s2" {
		t.Errorf("flagged: %v", sessions.flagged)
	}
	if len(rec.alertTypes) != 1 || rec.alertTypes[0] != "impossible_travel" {
		t.Errorf("alerts: %v", rec.alertTypes)
	}
}

func TestReviewLogin_ConcurrentExceeded(t *testing.T) {
	sessions := &fakeSessions{count: 6}
	rec := &recorded{}
	d := newTestDetector(sessions, rec)

	d.ReviewLogin(context.Background(), "u1", "s2", "10.0.0.5", false)

	if len(sessions.flagged) != 0 {
		t.Errorf("concurrent sessions must not flag the session: %v", sessions.flagged)
	}
	if len(rec.alertTypes) != 1 || rec.alertTypes[0] != "concurrent_sessions_exceeded" {
		t.Errorf("alerts: %v", rec.alertTypes)
	}
}

func TestReviewLogin_DetectorErrorDegradesToLogging(t *testing.T) {
	sessions := &fakeSessions{countErr: errors.New("db down")}
	rec := &recorded{}
	d := newTestDetector(sessions, rec)

	// Must not panic; errors degrade to logging.
	d.ReviewLogin(context.Background(), "u1", "s2", "10.0.0.5", false)

	if len(rec.alertTypes) != 0 {
		t.Errorf("no alerts expected: %v", rec.alertTypes)
	}
}
