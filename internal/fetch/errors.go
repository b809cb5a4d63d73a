package fetch

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching.
var (
	ErrNetwork = errors.New("network error")
	ErrBlocked = errors.New("blocked")
)

// NetworkError reports a connection, DNS or timeout failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// BlockedError reports a response that looks intercepted rather than served:
// a non-200 status, a truncated body, or a bot-protection signature.
type BlockedError struct {
	URL       string
	Status    int
	Length    int
	Signature string
}

func (e *BlockedError) Error() string {
	if e.Signature != "" {
		return fmt.Sprintf("blocked fetching %s: bot protection signature %q", e.URL, e.Signature)
	}
	return fmt.Sprintf("blocked fetching %s: status %d, %d bytes", e.URL, e.Status, e.Length)
}

func (e *BlockedError) Is(target error) bool { return target == ErrBlocked }
