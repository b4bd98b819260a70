// Package service implements the login, refresh, and logout flows.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	auditdomain "eval-platform/backend/internal/audit/domain"
	"eval-platform/backend/internal/security"
	sessiondomain "eval-platform/backend/internal/session/domain"
	userdomain "eval-platform/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// AuthResult holds the outcome of Login or Refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    int64 // access token lifetime in seconds
	UserID       string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Revoke(ctx context.Context, id string) error
	Touch(ctx context.Context, id string, at time.Time) error
}

// Detector is the advisory anomaly hook consulted around login. Failures
// inside it must never fail the login.
type Detector interface {
	ImpossibleTravel(ctx context.Context, userID, newIP string) (bool, error)
	ReviewLogin(ctx context.Context, userID, sessionID, ip string, travelSuspected bool)
}

// Recorder is the best-effort security audit writer.
type Recorder interface {
	LogEvent(ctx context.Context, sessionID, userID, eventType, description, ip string)
}

// AuthService authenticates users, creating one session per login.
type AuthService struct {
	users       UserRepo
	sessions    SessionRepo
	detector    Detector
	recorder    Recorder
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	maxLifetime time.Duration
	accessTTL   time.Duration
	log         logrus.FieldLogger
}

// NewAuthService returns an AuthService with the given dependencies. detector
// and recorder may be nil; the corresponding advisory steps are skipped.
func NewAuthService(
	users UserRepo,
	sessions SessionRepo,
	detector Detector,
	recorder Recorder,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	maxLifetime, accessTTL time.Duration,
	log logrus.FieldLogger,
) *AuthService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthService{
		users:       users,
		sessions:    sessions,
		detector:    detector,
		recorder:    recorder,
		hasher:      hasher,
		tokens:      tokens,
		maxLifetime: maxLifetime,
		accessTTL:   accessTTL,
		log:         log,
	}
}

// Login authenticates with email/password, creates a session, and returns
// tokens. Token issuance and session creation form one logical unit: no token
// is returned unless the session row exists. Anomaly checks are advisory and
// never block the login.
func (s *AuthService) Login(ctx context.Context, email, password, deviceFingerprint, ip string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		if s.recorder != nil {
			s.recorder.LogEvent(ctx, "", user.ID, auditdomain.EventLoginFailure, "password mismatch", ip)
		}
		return nil, ErrInvalidCredentials
	}

	// The travel heuristic compares against the latest active session, so it
	// must run before this login's session exists.
	travelSuspected := false
	if s.detector != nil {
		travelSuspected, err = s.detector.ImpossibleTravel(ctx, user.ID, ip)
		if err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("auth: impossible travel check failed")
			travelSuspected = false
		}
	}

	sessionID := uuid.New().String()
	accessToken, accessExp, err := s.tokens.Issue(user.ID, user.Email, sessionID, security.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.tokens.Issue(user.ID, user.Email, sessionID, security.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID:                sessionID,
		UserID:            user.ID,
		DeviceFingerprint: strings.TrimSpace(deviceFingerprint),
		IPAddress:         ip,
		CreatedAt:         now,
		LastActivity:      now,
		ExpiresAt:         now.Add(s.maxLifetime),
		Status:            sessiondomain.StatusActive,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	if s.detector != nil {
		s.detector.ReviewLogin(ctx, user.ID, sessionID, ip, travelSuspected)
	}
	if s.recorder != nil {
		s.recorder.LogEvent(ctx, sessionID, user.ID, auditdomain.EventLoginSuccess, "", ip)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sessionID,
		ExpiresIn:    int64(time.Until(accessExp).Round(time.Second).Seconds()),
		UserID:       user.ID,
	}, nil
}

// Refresh verifies the refresh token and issues a new access token for its
// still-active session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if claims.Kind != security.TokenKindRefresh {
		return nil, ErrInvalidRefreshToken
	}
	sess, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.IsActive(time.Now()) {
		return nil, ErrInvalidRefreshToken
	}
	// Best-effort; a missed touch does not affect correctness.
	if touchErr := s.sessions.Touch(ctx, sess.ID, time.Now().UTC()); touchErr != nil {
		s.log.WithError(touchErr).WithField("session_id", sess.ID).Debug("auth: session touch failed")
	}
	accessToken, accessExp, err := s.tokens.Issue(claims.Subject, claims.Email, sess.ID, security.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sess.ID,
		ExpiresIn:    int64(time.Until(accessExp).Round(time.Second).Seconds()),
		UserID:       claims.Subject,
	}, nil
}

// Logout revokes the session. Repeat revocation of the same session is a
// no-op; an unknown session id returns sessionrepo.ErrNotFound.
func (s *AuthService) Logout(ctx context.Context, sessionID, userID, ip string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.LogEvent(ctx, sessionID, userID, auditdomain.EventSessionRevoked, "logout", ip)
	}
	return nil
}
