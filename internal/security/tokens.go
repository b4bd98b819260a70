// Package security issues and verifies signed bearer tokens and hashes passwords.
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures. Verify returns exactly one of these for a bad token.
var (
	// ErrMalformedToken is returned when the string cannot be parsed as a token.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature is returned when the signature does not match the secret.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpiredToken is returned when the token's expiry has passed.
	ErrExpiredToken = errors.New("expired token")
)

// TokenKind selects the TTL and intended use of an issued token.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the identity and timing payload embedded in a signed token. It
// exists only inside the token and is never persisted independently.
type Claims struct {
	jwt.RegisteredClaims
	Email     string    `json:"email"`
	Kind      TokenKind `json:"kind"`
	SessionID string    `json:"session_id"`
}

// TokenProvider issues and verifies HS256 JWTs. The symmetric secret is
// injected at construction, loaded once at process start, and never mutated;
// there is no key rotation.
type TokenProvider struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with secret. issuer is set
// on claims and checked on verify. accessTTL and refreshTTL are the lifetimes
// for the two token kinds.
func NewTokenProvider(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue signs a token of the given kind for the subject, bound to sessionID so
// the gate can delegate revocation checks to the session store. subjectID and
// email must be non-empty. Returns the token string and its expiry.
func (p *TokenProvider) Issue(subjectID, email, sessionID string, kind TokenKind) (string, time.Time, error) {
	if subjectID == "" {
		return "", time.Time{}, errors.New("subject id is required")
	}
	if email == "" {
		return "", time.Time{}, errors.New("email is required")
	}
	var ttl time.Duration
	switch kind {
	case TokenKindAccess:
		ttl = p.accessTTL
	case TokenKindRefresh:
		ttl = p.refreshTTL
	default:
		return "", time.Time{}, fmt.Errorf("unknown token kind %q", kind)
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:     email,
		Kind:      kind,
		SessionID: sessionID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify parses tokenString and returns its Claims. Signature comparison is
// constant time (HMAC). Failure modes: ErrMalformedToken for unparseable input,
// ErrExpiredToken when the embedded expiry has passed (reported even when the
// signature does not match), ErrInvalidSignature otherwise on mismatch.
func (p *TokenProvider) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			// Signature verification runs before claim validation, so an
			// expired token with a bad signature surfaces here. Expiry wins.
			if expiredIgnoringSignature(tokenString) {
				return nil, ErrExpiredToken
			}
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformedToken
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformedToken
	}
	if claims.Issuer != p.issuer {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// expiredIgnoringSignature reports whether the token's embedded expiry has
// passed, read without verifying the signature.
func expiredIgnoringSignature(tokenString string) bool {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !time.Now().Before(claims.ExpiresAt.Time)
}
