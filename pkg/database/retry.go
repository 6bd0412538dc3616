package database

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tsunagu-app/backend/internal/apperror"
)

const (
	// MaxAttempts bounds how often a transient store failure is retried
	// before it surfaces as unavailable.
	MaxAttempts = 3
	// RetryDelay is the base backoff between attempts; attempt n waits
	// n times this long.
	RetryDelay = 100 * time.Millisecond
)

// Transient reports whether err is a connection-class failure that a
// retry may recover from. Context cancellation and domain errors are
// not transient.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Classify wraps transient failures as store-unavailable and passes
// everything else through unchanged.
func Classify(err error) error {
	if Transient(err) {
		return apperror.Unavailable(err)
	}
	return err
}

// Retry runs fn up to MaxAttempts times while its failure is
// transient, backing off between attempts. When attempts are exhausted
// the last error surfaces as store-unavailable; non-transient errors
// return immediately and unchanged. Intended for reads; writes are
// classified without retrying since a lost reply leaves the write's
// fate unknown.
func Retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !Transient(err) {
			return err
		}
		if attempt >= MaxAttempts {
			return apperror.Unavailable(err)
		}
		select {
		case <-ctx.Done():
			return apperror.Unavailable(err)
		case <-time.After(time.Duration(attempt) * RetryDelay):
		}
	}
}
