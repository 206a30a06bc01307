package domain

import "errors"

// Error kinds surfaced by fetch operations and configuration.
// Callers match them with errors.Is; the wrapped message carries the detail.
var (
	ErrAuth      = errors.New("authentication rejected")
	ErrTransport = errors.New("transport failure")
	ErrDecode    = errors.New("unexpected response")
	ErrConfig    = errors.New("invalid configuration")
)
