package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrNotFound             = errors.New("not found")
	ErrUpstreamUnavailable  = errors.New("upstream unavailable")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrStoreFailure         = errors.New("store failure")
)

// InvalidArgument builds an ErrInvalidArgument with a caller-facing message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound reports a missing game identified by key.
func NotFound(key string) error {
	return fmt.Errorf("game %s: %w", key, ErrNotFound)
}

// AuthenticationFailed wraps a token grant failure. The result matches both
// ErrAuthenticationFailed and ErrUpstreamUnavailable.
func AuthenticationFailed(err error) error {
	return fmt.Errorf("%w: %w: %w", ErrUpstreamUnavailable, ErrAuthenticationFailed, err)
}

// UpstreamFailure tags a provider error unless it already carries a taxonomy error.
func UpstreamFailure(op string, err error) error {
	if hasKind(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}

// StoreFailure tags a repository error unless it already carries a taxonomy error.
func StoreFailure(op string, err error) error {
	if hasKind(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}

func hasKind(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrStoreFailure)
}
