package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ClaimsDecoder extracts registered claims from a bearer token. The default
// implementation does not verify the signature (that is the issuer's job;
// the sync only needs the expiry claim for client-side freshness), but a
// verifying decoder can be substituted without touching callers.
type ClaimsDecoder interface {
	Decode(token string) (*jwt.RegisteredClaims, error)
}

// UnverifiedDecoder parses the token structure and claims without checking
// the signature.
type UnverifiedDecoder struct {
	parser *jwt.Parser
}

// NewUnverifiedDecoder builds the default decoder.
func NewUnverifiedDecoder() *UnverifiedDecoder {
	return &UnverifiedDecoder{parser: jwt.NewParser()}
}

// Decode extracts the registered claims from a compact JWT string.
func (d *UnverifiedDecoder) Decode(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// Status is the result of a freshness check.
type Status struct {
	Valid     bool
	ExpiresAt time.Time
	Remaining time.Duration
}

// Validator performs the client-side freshness check that gates token
// refresh. It fails closed: any token it cannot positively confirm as
// unexpired is reported invalid, because a false positive only surfaces
// later as a 401 in the middle of pagination.
type Validator struct {
	decoder ClaimsDecoder
	logger  *zap.Logger
	now     func() time.Time
}

// NewValidator constructs a Validator. A nil decoder selects the default
// unverified decoder.
func NewValidator(decoder ClaimsDecoder, logger *zap.Logger) *Validator {
	if decoder == nil {
		decoder = NewUnverifiedDecoder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{decoder: decoder, logger: logger, now: time.Now}
}

// Check reports whether the token is present, structurally sound, and
// unexpired. It has no side effects.
func (v *Validator) Check(token string) Status {
	if token == "" {
		return Status{}
	}

	claims, err := v.decoder.Decode(token)
	if err != nil {
		v.logger.Debug("token decode failed", zap.Error(err))
		return Status{}
	}
	if claims.ExpiresAt == nil {
		return Status{}
	}

	expiresAt := claims.ExpiresAt.Time
	remaining := expiresAt.Sub(v.now())
	if remaining <= 0 {
		return Status{ExpiresAt: expiresAt}
	}

	return Status{Valid: true, ExpiresAt: expiresAt, Remaining: remaining}
}
