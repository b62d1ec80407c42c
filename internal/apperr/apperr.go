// Package apperr defines the error kinds surfaced by a CoinCortex run.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrNotFound         = errors.New("not found")
	ErrRateLimit        = errors.New("rate limited")
	ErrTransientNetwork = errors.New("network error")
	ErrAuthentication   = errors.New("authentication failed")
	ErrParse            = errors.New("malformed provider response")
	ErrUpstream         = errors.New("provider error")
)

// Wrap annotates kind with a formatted message. errors.Is(err, kind) holds
// for the result, and %w verbs in format keep their own chains.
func Wrap(kind error, format string, args ...any) error {
	return &kindError{kind: kind, err: fmt.Errorf(format, args...)}
}

type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.err)
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.err}
}

// FromStatus classifies a non-2xx provider response. body is included in the
// message truncated to a readable length.
func FromStatus(provider string, status int, body string) error {
	body = strings.TrimSpace(body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	var kind error
	switch {
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status == http.StatusTooManyRequests:
		kind = ErrRateLimit
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = ErrAuthentication
	case status >= 500:
		kind = ErrTransientNetwork
	default:
		kind = ErrUpstream
	}
	if body == "" {
		return Wrap(kind, "%s returned status %d", provider, status)
	}
	return Wrap(kind, "%s returned status %d: %s", provider, status, body)
}

// FromTransport classifies an error raised before any response was read.
// Errors that already carry a kind are returned unchanged.
func FromTransport(provider string, err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != nil {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(ErrTransientNetwork, "%s request canceled: %w", provider, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return Wrap(ErrTransientNetwork, "%s request timed out: %w", provider, err)
	}
	return Wrap(ErrTransientNetwork, "%s request failed: %w", provider, err)
}

// Kind returns the sentinel carried by err, or nil when err is unclassified.
func Kind(err error) error {
	for _, k := range []error{
		ErrConfiguration,
		ErrNotFound,
		ErrRateLimit,
		ErrTransientNetwork,
		ErrAuthentication,
		ErrParse,
		ErrUpstream,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Hint returns a one-line suggestion for the user, or "" when none applies.
func Hint(err error) string {
	switch Kind(err) {
	case ErrConfiguration:
		return "Provide the API key with --api-key, the GEMINI_API_KEY environment variable, or a GEMINI_API_KEY=... line in a local .env file."
	case ErrNotFound:
		return "Check the coin identifier; use a CoinGecko id such as 'bitcoin' or a known symbol such as 'btc'."
	case ErrRateLimit:
		return "The provider is throttling requests. Wait a minute and try again."
	case ErrTransientNetwork:
		return "Check your network connection and try again."
	case ErrAuthentication:
		return "The API key was rejected. Verify it is valid and enabled for this model."
	case ErrParse:
		return "The provider returned an unexpected response. Try again or use --debug for details."
	}
	return ""
}
