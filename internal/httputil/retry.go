// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the bounded retry policy shared by the source
// adapters.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/research-radar/pkg/types"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
)

// Policy bounds how often and how slowly an upstream call is retried.
// The delay starts at BaseDelay and doubles each attempt.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// PolicyFromConfig builds a Policy, filling defaults for zero values.
// A negative MaxRetries disables retries.
func PolicyFromConfig(cfg types.RetryConfig) Policy {
	p := Policy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.BaseDelay}
	switch {
	case cfg.MaxRetries < 0:
		p.MaxRetries = 0
	case cfg.MaxRetries == 0:
		p.MaxRetries = defaultMaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	return p
}

// NoRetry makes a single attempt.
var NoRetry = Policy{MaxRetries: 0, BaseDelay: 0}

// Backoff returns the wait before retry number attempt (0-based).
func (p Policy) Backoff(attempt int) time.Duration {
	return p.BaseDelay << uint(attempt)
}

// permanentError stops Retry from trying again.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry runs op until it succeeds, returns a Permanent error, the policy is
// exhausted, or ctx ends. The last error is returned unwrapped.
func Retry(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt >= p.MaxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff(attempt)):
		}
	}
}

// StatusError reports a non-success HTTP status from an upstream.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.URL, e.StatusCode)
}

// Retryable reports whether an HTTP status is worth another attempt.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// DoWithRetry executes an HTTP request under policy p. Transport errors,
// HTTP 429 and 5xx responses are retried; other non-200 statuses fail
// immediately with a *StatusError. On success the caller owns the body.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	var out *http.Response
	err := Retry(ctx, p, func(ctx context.Context) error {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return Permanent(err)
			}
			return err
		}
		if resp.StatusCode == http.StatusOK {
			out = resp
			return nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: req.URL.Redacted()}
		if Retryable(resp.StatusCode) {
			return statusErr
		}
		return Permanent(statusErr)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
