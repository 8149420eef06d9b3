package dialog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lectern-ai/lectern/logging"
)

// DefaultTopic is debated when no topic is configured.
const DefaultTopic = "the ethics of using AI as an innovation tool"

// DefaultMaxAutoExchanges bounds unattended auto-converse runs.
const DefaultMaxAutoExchanges = 5

// ErrDebateNotStarted indicates Advance was called for a session whose
// debate was never opened.
var ErrDebateNotStarted = errors.New("debate not started for session")

// debatePreamble is the shared situational instruction both professors
// receive when a debate opens. It explains the setting, the speaker
// labeling convention and forbids self-naming.
const debatePreamble = "You are starting a new discussion with another professor. " +
	"Introduce yourself in a natural and brief way. There are only you, the other professor, " +
	"and the user, so keep it brief and casual. The user is also listening and might intervene. " +
	"Keep your interactions relatively short. The topic is %s. " +
	"Each message you see will either start with PROF. <name>, or STUDENT. This indicates who " +
	"is speaking to you. DO NOT write your own name in the response and do not use quotation " +
	"marks in your response."

// debateDeparture is injected into both professors' sessions when the
// student leaves an open debate.
const debateDeparture = "The student left the debate. You should stop explaining and wait for a new activity to start."

// DebateState is the per-session bookkeeping of one active debate. The two
// professors' histories stay in their own sessions; only the last exchange
// and whose turn it is live here.
type DebateState struct {
	SessionID   string
	LastSpeaker string // Display name of the persona that spoke last
	LastMessage string // Most recent artifact, tagged with speaker labels
	Exchanges   int
	Closed      bool

	mu sync.Mutex
}

// Result reports the outcome of one debate advance.
type Result struct {
	SessionID string
	Response  string
	Speaker   string // Display name of the responding persona
	Closed    bool
}

// DebateOptions configures a Debate coordinator.
type DebateOptions struct {
	Topic            string
	MaxAutoExchanges int
	Logger           logging.Logger
}

// Debate orchestrates two professor agents debating in front of a student.
// Each session identifier names one independent debate: both agents
// resolve their own session under that identifier, and the coordinator
// keeps a DebateState per identifier. The speaker strictly alternates; a
// student intervention is answered by whichever professor did not just
// speak.
type Debate struct {
	a, b       *Agent
	classifier *Classifier
	topic      string
	maxAuto    int
	logger     logging.Logger

	mu     sync.Mutex
	states map[string]*DebateState
}

// NewDebate constructs a coordinator over two professor agents and the
// end-of-conversation classifier.
func NewDebate(a, b *Agent, classifier *Classifier, optFns ...func(o *DebateOptions)) *Debate {
	opts := DebateOptions{
		Topic:            DefaultTopic,
		MaxAutoExchanges: DefaultMaxAutoExchanges,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Debate{
		a:          a,
		b:          b,
		classifier: classifier,
		topic:      opts.Topic,
		maxAuto:    opts.MaxAutoExchanges,
		logger:     opts.Logger,
		states:     make(map[string]*DebateState),
	}
}

// Preamble returns the situational instruction shared by both professors.
func (d *Debate) Preamble() string { return fmt.Sprintf(debatePreamble, d.topic) }

// state returns the DebateState for sessionID, creating it when create is
// set.
func (d *Debate) state(sessionID string, create bool) (*DebateState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.states[sessionID]
	if !ok && create {
		st = &DebateState{SessionID: sessionID}
		d.states[sessionID] = st
		ok = true
	}
	return st, ok
}

// State returns a snapshot of the debate state for sessionID.
func (d *Debate) State(sessionID string) (DebateState, bool) {
	st, ok := d.state(sessionID, false)
	if !ok {
		return DebateState{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return DebateState{
		SessionID:   st.SessionID,
		LastSpeaker: st.LastSpeaker,
		LastMessage: st.LastMessage,
		Exchanges:   st.Exchanges,
		Closed:      st.Closed,
	}, true
}

// Open starts a new debate under sessionID. The first professor receives
// the shared preamble and produces the opening remark; the second receives
// the same preamble as injected context only, so its first completion call
// happens on its first speaking turn.
func (d *Debate) Open(ctx context.Context, sessionID string) (Result, error) {
	sessionID = d.a.Resolve(sessionID)
	d.b.Resolve(sessionID)

	st, _ := d.state(sessionID, true)
	st.mu.Lock()
	defer st.mu.Unlock()

	preamble := d.Preamble()
	response, err := d.a.ProcessTurn(ctx, sessionID, preamble)
	if err != nil {
		return Result{SessionID: sessionID}, err
	}
	d.b.InjectContext(sessionID, preamble)

	st.LastSpeaker = d.a.Name()
	st.LastMessage = profLabel(d.a.Name()) + response
	st.Exchanges = 1
	st.Closed = d.classifier.Classify(ctx, sessionID, response)

	d.logger.Info("debate opened", "session_id", sessionID, "opener", d.a.Name())
	return Result{SessionID: sessionID, Response: response, Speaker: d.a.Name(), Closed: st.Closed}, nil
}

// Advance produces the next debate message. With empty humanInput the
// professor that did not speak last responds to the last message alone;
// with a student intervention that professor responds to the last message
// with the student's words appended. Either way the speaker flips and the
// classifier is consulted on the produced response.
func (d *Debate) Advance(ctx context.Context, sessionID, humanInput string) (Result, error) {
	st, ok := d.state(sessionID, false)
	if !ok {
		return Result{SessionID: sessionID}, fmt.Errorf("%w: %q", ErrDebateNotStarted, sessionID)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	next := d.nextSpeaker(st)
	input := st.LastMessage
	if humanInput != "" {
		input = st.LastMessage + "\n\nSTUDENT: " + humanInput
	}

	response, err := next.ProcessTurn(ctx, sessionID, input)
	if err != nil {
		return Result{SessionID: sessionID}, err
	}

	st.LastSpeaker = next.Name()
	if humanInput != "" {
		st.LastMessage = "STUDENT: " + humanInput + "\n\n" + profLabel(next.Name()) + response
	} else {
		st.LastMessage = profLabel(next.Name()) + response
	}
	st.Exchanges++
	st.Closed = d.classifier.Classify(ctx, sessionID, response)

	return Result{SessionID: sessionID, Response: response, Speaker: next.Name(), Closed: st.Closed}, nil
}

// nextSpeaker returns the professor that did not produce the last message.
// A fresh or human-attributed state yields the second professor, matching
// the opening where professor A has just spoken.
func (d *Debate) nextSpeaker(st *DebateState) *Agent {
	if st.LastSpeaker == d.b.Name() {
		return d.a
	}
	return d.b
}

// Close injects the student departure notice into both professors'
// sessions without a completion call and marks the debate closed.
func (d *Debate) Close(sessionID string) string {
	sessionID = d.a.InjectContext(sessionID, debateDeparture)
	d.b.InjectContext(sessionID, debateDeparture)
	if st, ok := d.state(sessionID, false); ok {
		st.mu.Lock()
		st.Closed = true
		st.mu.Unlock()
	}
	d.logger.Info("debate closed", "session_id", sessionID)
	return sessionID
}

// AutoConverse runs an unattended debate: an opening remark followed by
// alternating responses with no human in the loop, stopping after the
// configured maximum number of exchanges or as soon as the classifier
// marks the debate closed. The bound is a safety measure against
// unattended infinite loops and is always enforced.
func (d *Debate) AutoConverse(ctx context.Context, sessionID string) ([]Result, error) {
	res, err := d.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	results := []Result{res}
	sessionID = res.SessionID

	for len(results) < d.maxAuto && !results[len(results)-1].Closed {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err = d.Advance(ctx, sessionID, "")
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func profLabel(name string) string { return "PROF. " + name + ": " }
