package core

import (
	"errors"
	"fmt"
)

// ErrUnknownPersona indicates a request referenced a persona id that is not
// registered. Fatal to the request, not the process.
var ErrUnknownPersona = errors.New("unknown persona")

// ProviderError wraps a failed completion call (network, auth, rate limit,
// timeout). It is never retried by the orchestrator; the failed turn is
// surfaced to the caller with the session left open for retry.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: completion failed: %v", e.Provider, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err as a ProviderError for the named provider.
func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}
