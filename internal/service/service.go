// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/clientdesk/clientdesk/internal/auth"
	"github.com/clientdesk/clientdesk/internal/metrics"
)

// Service errors. Handlers map these to stable HTTP statuses; none of them
// carries detail about which record or field caused the failure.
var (
	ErrConflict        = errors.New("resource already exists")
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthorized    = errors.New("invalid credentials")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrPolicyViolation = errors.New("policy violation")
	ErrMalformed       = errors.New("malformed input")
)

// PasswordHasher derives and checks credential digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) (bool, error)
}

// TokenIssuer mints and refreshes session tokens.
type TokenIssuer interface {
	Issue(accountID int64, kind auth.TokenKind, now time.Time) (string, error)
	Refresh(refreshToken string, now time.Time) (string, error)
	TTL(kind auth.TokenKind) time.Duration
}

// Option configures a service.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics metrics.Recorder
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:     time.Now,
		metrics: metrics.NewNoop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// malformed wraps a validation failure so callers can match ErrMalformed
// while the message still names the offending fields.
func malformed(err error) error {
	return fmt.Errorf("%w: %s", ErrMalformed, err.Error())
}
