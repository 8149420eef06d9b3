package session

import (
	"sync"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/logging"
)

// Registry is a volatile core.SessionRegistry storing sessions in a
// process-local map guarded by a read/write mutex. New sessions are seeded
// with the owning persona's initial instruction as their first history
// entry; first-touch creation is the only mutation, lookups are pure.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	seed     string
	logger   logging.Logger
}

// Options configures a Registry.
type Options struct {
	Logger logging.Logger
}

// NewRegistry constructs an empty registry whose sessions are seeded with
// the given initial instruction.
func NewRegistry(seed string, optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		sessions: make(map[string]*core.Session),
		seed:     seed,
		logger:   opts.Logger,
	}
}

// Resolve returns the existing session for id unchanged, or creates a new
// one on first reference. An empty id yields a generated identifier; a
// caller-supplied unknown id is kept so that sibling registries (the two
// sides of a debate, the classifier) can share one identifier.
func (r *Registry) Resolve(id string) (*core.Session, string) {
	if id != "" {
		r.mu.RLock()
		sess, ok := r.sessions[id]
		r.mu.RUnlock()
		if ok {
			return sess, id
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		id = core.NewID()
	} else if sess, ok := r.sessions[id]; ok {
		// Lost the race against a concurrent first touch.
		return sess, id
	}
	sess := core.NewSession(id)
	sess.Append(core.NewEntry(core.RoleContext, r.seed))
	r.sessions[id] = sess
	r.logger.Debug("session created", "session_id", id)
	return sess, id
}

// Get returns an existing session without creating one.
func (r *Registry) Get(id string) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
