package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a history entry.
type Role string

const (
	// RoleHuman marks input produced by the human participant.
	RoleHuman Role = "human"
	// RoleAgent marks output produced by the session's own agent.
	RoleAgent Role = "agent"
	// RoleContext marks injected situational notices ("the student left")
	// and the seeded initial instruction. Context entries never trigger a
	// completion call by themselves.
	RoleContext Role = "context"
)

// Entry is one ordered record of a session's history.
type Entry struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntry creates an entry stamped with the current UTC time.
func NewEntry(role Role, text string) Entry {
	return Entry{Role: role, Text: text, Timestamp: time.Now().UTC()}
}

// Session is one isolated conversation history bound to a single persona
// and identifier. History is append-only for the session's lifetime.
//
// Two locks are involved: an internal mutex guards entry reads/appends,
// while the turn lock (LockTurn/UnlockTurn) serializes a full turn cycle
// (read history, call provider, append response) so concurrent turns on
// the same session cannot interleave their histories.
type Session struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	mu      sync.RWMutex
	entries []Entry

	turnMu sync.Mutex
}

// NewSession creates an empty session with the given identifier.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, Created: now, Updated: now}
}

// Append adds an entry to the history updating the Updated timestamp.
func (s *Session) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	s.Updated = time.Now().UTC()
}

// Entries returns a defensive copy of the full history.
func (s *Session) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Len returns the current history length.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Last returns the most recent entry and true, or a zero entry and false
// for an empty history.
func (s *Session) Last() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// LockTurn acquires the session's turn lock. Exactly one turn cycle may be
// in flight per session; callers must pair it with UnlockTurn.
func (s *Session) LockTurn() { s.turnMu.Lock() }

// UnlockTurn releases the session's turn lock.
func (s *Session) UnlockTurn() { s.turnMu.Unlock() }

// SessionRegistry resolves session identifiers to sessions, creating them
// lazily on first reference. Implementations must be safe for concurrent
// use; first-touch creation is the only mutation.
type SessionRegistry interface {
	// Resolve returns the session for the given identifier, creating and
	// storing a new one on first reference. An empty id yields a generated
	// identifier; a supplied unknown id is kept. The returned identifier
	// always names the returned session.
	Resolve(id string) (*Session, string)

	// Get returns an existing session without creating one.
	Get(id string) (*Session, bool)
}

// NewID returns a new unique identifier suitable for sessions.
func NewID() string { return uuid.NewString() }
