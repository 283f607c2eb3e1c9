// Package retry is the one retry-with-backoff utility shared by every
// external call site. Only transient, network-class failures are
// retried; anything else propagates immediately.
package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how an external call may be retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts uint64
	// InitialDelay seeds the exponential backoff; each retry doubles it.
	InitialDelay time.Duration
	// Transient reports whether an error is worth retrying. Nil means
	// IsTransient.
	Transient func(error) bool
}

// DefaultPolicy matches the provider guidance: three attempts with a
// doubling delay.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
	}
}

// Do runs op under the policy. The context cancels waiting between
// attempts as well as the attempts themselves (op receives it).
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	transient := p.Transient
	if transient == nil {
		transient = IsTransient
	}
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialDelay
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0

	wrapped := func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, attempts-1), ctx))
}

// IsTransient classifies network-class failures: timeouts, connection
// resets, dropped connections. Content-policy rejections and other
// application errors are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return true
	}
	return false
}
