package dialog

import (
	"context"
	"time"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/logging"
	"github.com/lectern-ai/lectern/provider"
	"github.com/lectern-ai/lectern/session"
)

// AgentOptions configures an Agent instance.
type AgentOptions struct {
	// Sessions overrides the agent's session registry. Defaults to a fresh
	// in-memory registry seeded with the agent's instruction.
	Sessions core.SessionRegistry
	// Timeout bounds each completion call. Zero disables the bound.
	Timeout time.Duration
	// Logger defaults to a NoOpLogger.
	Logger logging.Logger
}

// Agent is one persona's running conversational engine. It owns a session
// registry exclusively (sessions are never shared across personas) and
// drives a completion provider with the full accumulated history on each
// turn. All methods are safe for concurrent use; turns on the same session
// are serialized through the session's turn lock.
type Agent struct {
	name        string
	instruction string
	provider    provider.Provider
	sessions    core.SessionRegistry
	timeout     time.Duration
	logger      logging.Logger
}

// NewAgent constructs an agent for the given display name and initial
// instruction. The instruction seeds every new session's history exactly
// once, at session creation.
func NewAgent(name, instruction string, p provider.Provider, optFns ...func(o *AgentOptions)) *Agent {
	opts := AgentOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewRegistry(instruction)
	}
	return &Agent{
		name:        name,
		instruction: instruction,
		provider:    p,
		sessions:    opts.Sessions,
		timeout:     opts.Timeout,
		logger:      opts.Logger,
	}
}

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Resolve returns the identifier of the session for id, creating the
// session on first reference (with a generated identifier when id is
// empty).
func (a *Agent) Resolve(id string) string {
	_, resolved := a.sessions.Resolve(id)
	return resolved
}

// Session returns the agent's session for id without creating one.
func (a *Agent) Session(id string) (*core.Session, bool) {
	return a.sessions.Get(id)
}

// ProcessTurn appends input as a human entry, invokes the completion
// provider with the full accumulated history and appends the response as
// an agent entry, returning the text verbatim.
//
// On provider failure the error is returned as a core.ProviderError and no
// agent entry is appended; the human entry remains so the caller can retry
// the turn. There is no retry inside this method.
func (a *Agent) ProcessTurn(ctx context.Context, sessionID, input string) (string, error) {
	sess, id := a.sessions.Resolve(sessionID)

	sess.LockTurn()
	defer sess.UnlockTurn()

	sess.Append(core.NewEntry(core.RoleHuman, input))

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	started := time.Now()
	out, err := a.provider.Complete(ctx, provider.Request{History: sess.Entries()})
	if err != nil {
		a.logger.Error("completion failed",
			"agent", a.name, "session_id", id, "duration", time.Since(started), "error", err)
		return "", core.NewProviderError(a.provider.Info().Provider, err)
	}

	sess.Append(core.NewEntry(core.RoleAgent, out))
	a.logger.Debug("turn processed",
		"agent", a.name, "session_id", id, "duration", time.Since(started), "history_len", sess.Len())
	return out, nil
}

// InjectContext appends note as a context entry without invoking the
// completion provider. The next turn, whenever it occurs, sees the note as
// part of the history. Injection never closes a session; ending is a
// caller-level decision based on classifier output.
func (a *Agent) InjectContext(sessionID, note string) string {
	sess, id := a.sessions.Resolve(sessionID)
	sess.Append(core.NewEntry(core.RoleContext, note))
	a.logger.Debug("context injected", "agent", a.name, "session_id", id)
	return id
}
