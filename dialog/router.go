package dialog

import (
	"fmt"

	"github.com/lectern-ai/lectern/core"
)

// State is a node label in the chat turn-routing state machine.
type State string

const (
	// StateStart is the initial state in which a persona is selected.
	StateStart State = "start"
	// StateStopped is the terminal state entered when a turn raises the
	// exit flag. Routing past it is not possible.
	StateStopped State = "stopped"
)

// TurnState returns the state in which the given persona speaks.
func TurnState(personaID string) State { return State(personaID + "_turn") }

// Turn carries the routing inputs of one processed turn: which persona the
// caller selected (consumed from StateStart) and whether the turn raised
// the exit flag (consumed from a persona turn state).
type Turn struct {
	PersonaID string
	Exit      bool
}

// Router is the explicit finite-state machine for single-agent chat mode.
// States and transitions are enumerated as data at construction: from
// StateStart the selected persona's turn state is entered; from any turn
// state control returns to StateStart unless the turn's exit flag is set,
// in which case the machine stops. In request-per-turn deployments each
// inbound request is one full start -> respond cycle of this machine.
type Router struct {
	turnStates map[string]State
	personaFor map[State]string
}

// NewRouter enumerates the state set for the given personas.
func NewRouter(personaIDs ...string) *Router {
	r := &Router{
		turnStates: make(map[string]State, len(personaIDs)),
		personaFor: make(map[State]string, len(personaIDs)),
	}
	for _, id := range personaIDs {
		st := TurnState(id)
		r.turnStates[id] = st
		r.personaFor[st] = id
	}
	return r
}

// Initial returns the machine's entry state.
func (r *Router) Initial() State { return StateStart }

// Next applies the transition function to (state, turn).
func (r *Router) Next(state State, turn Turn) (State, error) {
	switch {
	case state == StateStart:
		st, ok := r.turnStates[turn.PersonaID]
		if !ok {
			return StateStart, fmt.Errorf("%w: %q", core.ErrUnknownPersona, turn.PersonaID)
		}
		return st, nil
	case state == StateStopped:
		return StateStopped, fmt.Errorf("routing past stopped state")
	default:
		if _, ok := r.personaFor[state]; !ok {
			return state, fmt.Errorf("unknown state %q", state)
		}
		if turn.Exit {
			return StateStopped, nil
		}
		return StateStart, nil
	}
}

// States returns all states of the machine: StateStart, StateStopped and
// one turn state per persona, in no particular order.
func (r *Router) States() []State {
	states := []State{StateStart, StateStopped}
	for _, st := range r.turnStates {
		states = append(states, st)
	}
	return states
}
