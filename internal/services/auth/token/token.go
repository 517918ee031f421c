// Package token issues and verifies signed bearer tokens.
//
// Tokens are the only authentication state the system keeps: nothing is
// persisted server-side, so signature and expiry checks here decide every
// authenticated request.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/taskdeck/taskdeck/internal/platform/errors"
)

// DefaultTTL is the token validity window when none is configured.
const DefaultTTL = 168 * time.Hour

// ErrSigningKeyMissing indicates the server has no signing secret configured.
var ErrSigningKeyMissing = apperrors.New(apperrors.CodeServerMisconfigured, "token signing secret is not configured")

// Claims is the verified identity decoded from a token.
//
// Only these fields are trusted; everything else in the raw token is ignored.
type Claims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Config defines how tokens are issued and verified.
type Config struct {
	// Secret signs and verifies tokens; required.
	Secret string
	// TTL bounds token validity; DefaultTTL when zero.
	TTL time.Duration
	// NotBeforeDelay, when positive, delays token activation after issuance.
	NotBeforeDelay time.Duration
	// Now overrides the clock for tests.
	Now func() time.Time
}

// Service issues and verifies signed bearer tokens.
type Service struct {
	secret         []byte
	ttl            time.Duration
	notBeforeDelay time.Duration
	now            func() time.Time
}

// tokenClaims is the internal claims type used for JWT signing and parsing.
type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// New builds a token service from config.
//
// A missing secret is a startup defect, not a per-request failure, so it is
// reported here rather than on each Issue call.
func New(cfg Config) (*Service, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrSigningKeyMissing
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		secret:         []byte(secret),
		ttl:            ttl,
		notBeforeDelay: cfg.NotBeforeDelay,
		now:            now,
	}, nil
}

// Issue signs a token carrying the given identity.
func (s *Service) Issue(userID, email string) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", ErrSigningKeyMissing
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id is required")
	}

	issuedAt := s.now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
		Email: email,
	}
	if s.notBeforeDelay > 0 {
		claims.NotBefore = jwt.NewNumericDate(issuedAt.Add(s.notBeforeDelay))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a raw token and decodes the identity it carries.
//
// Failures map to exactly one of the malformed, expired, or not-yet-valid
// codes so clients can distinguish a stale login from a forged token.
func (s *Service) Verify(raw string) (Claims, error) {
	if s == nil || len(s.secret) == 0 {
		return Claims{}, ErrSigningKeyMissing
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, apperrors.New(apperrors.CodeTokenMalformed, "token is empty")
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if strings.TrimSpace(parsed.Subject) == "" {
		return Claims{}, apperrors.New(apperrors.CodeTokenMalformed, "token subject is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeTokenMalformed, "token exp is required")
	}

	now := s.now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeTokenExpired,
			"token is expired",
			map[string]string{"expired_at": exp.Format(time.RFC3339)},
		)
	}
	if parsed.NotBefore != nil {
		nbf := parsed.NotBefore.Time.UTC()
		if now.Before(nbf) {
			return Claims{}, apperrors.New(apperrors.CodeTokenNotYetValid, "token is not active yet")
		}
	}

	claims := Claims{
		UserID:    parsed.Subject,
		Email:     parsed.Email,
		ExpiresAt: exp,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperrors.New(apperrors.CodeTokenMalformed, "token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeTokenMalformed, "token alg is invalid")
	}
	return apperrors.New(apperrors.CodeTokenMalformed, "token is malformed")
}
