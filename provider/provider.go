package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lectern-ai/lectern/core"
)

// Request captures the normalized provider input produced by the
// orchestrator. History carries the full session history including the
// seeded initial instruction (a context-role entry) and the trailing human
// entry for the turn being processed.
type Request struct {
	History []core.Entry
}

// LastHumanText returns the text of the most recent human entry, or the
// empty string if the history holds none.
func (r Request) LastHumanText() string {
	for i := len(r.History) - 1; i >= 0; i-- {
		if r.History[i].Role == core.RoleHuman {
			return r.History[i].Text
		}
	}
	return ""
}

// Info contains metadata about a provider implementation.
type Info struct {
	Name     string `json:"name"`     // Model identifier
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Provider is the minimal interface required to drive generation. Complete
// blocks until the hosted API responds; callers bound latency through ctx.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Info returns information about the provider implementation.
	Info() Info
}

// Mock is a lightweight in-memory Provider useful for tests & examples.
// Responses can be canned per input text, queued as a script, or replaced
// by an error. Calls and requests are recorded for assertions.
type Mock struct {
	mu        sync.Mutex
	responses map[string]string
	script    []string
	err       error
	calls     int
	requests  []Request
}

// NewMock constructs an empty Mock provider.
func NewMock() *Mock {
	return &Mock{responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for an input text.
func (m *Mock) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// Enqueue appends scripted completions returned in order, taking precedence
// over canned responses.
func (m *Mock) Enqueue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
}

// FailWith makes every subsequent Complete call return err (nil restores
// normal operation).
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Complete has been invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of all recorded requests in call order.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// Complete implements Provider.
func (m *Mock) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}
	input := req.LastHumanText()
	if resp, ok := m.responses[input]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", strings.TrimSpace(input)), nil
}

// Info implements Provider.
func (m *Mock) Info() Info { return Info{Name: "mock", Provider: "mock"} }
