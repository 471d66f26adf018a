package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// StatusError is a non-200 response from an upstream provider.
type StatusError struct {
	Provider string
	Path     string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Provider, e.Path, e.Code, e.Body)
}

// Temporary reports whether retrying may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// IsTransient reports whether err is worth retrying: throttling, server
// errors, timeouts and connection failures. Caller cancellation is not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// RetryPolicy bounds how often and how patiently a transient failure is
// retried. Wait doubles after every attempt.
type RetryPolicy struct {
	MaxRetries int
	Wait       time.Duration
}

// Retry runs fn until it succeeds, fails permanently, or the policy is
// exhausted. Only IsTransient errors are retried.
func Retry(ctx context.Context, p RetryPolicy, logger *slog.Logger, op string, fn func() ([]byte, error)) ([]byte, error) {
	wait := p.Wait
	for attempt := 0; ; attempt++ {
		body, err := fn()
		if err == nil {
			return body, nil
		}
		if attempt >= p.MaxRetries || !IsTransient(err) || ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("Provider request failed, retrying",
			"op", op, "attempt", attempt+1, "backoff", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}

// Truncate returns a shortened string for error messages.
func Truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
