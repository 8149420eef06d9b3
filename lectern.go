// Package lectern provides a high-level façade over the dialogue
// orchestrator: a Service owning one conversational agent per registered
// persona, the shared end-of-conversation classifier and the debate
// coordinators. Most applications interact with this package by:
//  1. Building a persona.Registry (usually from a YAML catalog)
//  2. Creating a Service via New() with a completion provider
//  3. Driving ChatTurn / DebateTurn, typically from an HTTP layer
//
// The Service replaces the ambient module-level session maps of earlier
// experiments with explicitly owned state whose lifecycle is tied to the
// process.
package lectern

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lectern-ai/lectern/core"
	"github.com/lectern-ai/lectern/dialog"
	"github.com/lectern-ai/lectern/logging"
	"github.com/lectern-ai/lectern/persona"
	"github.com/lectern-ai/lectern/provider"
)

// lectureOpening prompts a persona to introduce itself when a chat starts.
const lectureOpening = "You are starting a new lecture with the user. Introduce yourself and the topic. " +
	"Ask if they are ready to start."

// lectureDeparture is injected when the student leaves a chat session.
const lectureDeparture = "The student left the lecture. You should stop explaining and wait for a new activity to start."

// Options configures a Service.
type Options struct {
	// Logger defaults to a NoOpLogger.
	Logger logging.Logger
	// Timeout bounds each completion call made by any agent.
	Timeout time.Duration
	// DebateTopic overrides the default debate topic.
	DebateTopic string
	// MaxAutoExchanges bounds unattended debate runs.
	MaxAutoExchanges int
}

// Service is the process-wide orchestration façade. It owns all mutable
// orchestration state: per-persona agents (each with its own session
// registry), the classifier and lazily created debate coordinators.
type Service struct {
	personas   *persona.Registry
	provider   provider.Provider
	agents     map[string]*dialog.Agent
	classifier *dialog.Classifier
	router     *dialog.Router
	logger     logging.Logger
	opts       Options

	mu      sync.Mutex
	debates map[string]*dialog.Debate
}

// New creates a Service hosting one agent per registered persona.
func New(personas *persona.Registry, p provider.Provider, optFns ...func(o *Options)) *Service {
	opts := Options{
		Logger:           logging.NoOpLogger{},
		DebateTopic:      dialog.DefaultTopic,
		MaxAutoExchanges: dialog.DefaultMaxAutoExchanges,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	agentOpts := func(o *dialog.AgentOptions) {
		o.Timeout = opts.Timeout
		o.Logger = opts.Logger
	}

	agents := make(map[string]*dialog.Agent, personas.Len())
	for _, def := range personas.All() {
		agents[def.ID] = dialog.NewAgent(def.Name, def.InitialInstruction(), p, agentOpts)
	}

	return &Service{
		personas:   personas,
		provider:   p,
		agents:     agents,
		classifier: dialog.NewClassifier(p, agentOpts),
		router:     dialog.NewRouter(personas.IDs()...),
		logger:     opts.Logger,
		opts:       opts,
		debates:    make(map[string]*dialog.Debate),
	}
}

// Personas returns the registered persona definitions.
func (s *Service) Personas() []*persona.Definition { return s.personas.All() }

// Agent returns the conversational agent for a persona id.
func (s *Service) Agent(personaID string) (*dialog.Agent, error) {
	a, ok := s.agents[personaID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPersona, personaID)
	}
	return a, nil
}

// Classifier returns the shared end-of-conversation classifier.
func (s *Service) Classifier() *dialog.Classifier { return s.classifier }

// Debate returns the coordinator for the ordered persona pair, creating it
// on first use. The first persona opens any debate the coordinator runs.
func (s *Service) Debate(personaID1, personaID2 string) (*dialog.Debate, error) {
	a, err := s.Agent(personaID1)
	if err != nil {
		return nil, err
	}
	b, err := s.Agent(personaID2)
	if err != nil {
		return nil, err
	}

	key := personaID1 + "|" + personaID2
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.debates[key]; ok {
		return d, nil
	}
	d := dialog.NewDebate(a, b, s.classifier, func(o *dialog.DebateOptions) {
		o.Topic = s.opts.DebateTopic
		o.MaxAutoExchanges = s.opts.MaxAutoExchanges
		o.Logger = s.logger
	})
	s.debates[key] = d
	return d, nil
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	SessionID string
	Response  string
	Closed    bool
}

// ChatTurn runs one full start -> respond cycle of the single-agent chat
// machine: the persona's agent is selected, the turn is processed (or a
// departure notice injected when closed is set), the classifier is
// consulted on the response, and the machine returns to start unless the
// classifier raised the exit flag.
func (s *Service) ChatTurn(ctx context.Context, sessionID, personaID, input string, initial, closed bool) (ChatResult, error) {
	state, err := s.router.Next(s.router.Initial(), dialog.Turn{PersonaID: personaID})
	if err != nil {
		return ChatResult{}, err
	}
	agent := s.agents[personaID]

	id := agent.Resolve(sessionID)

	if closed {
		agent.InjectContext(id, lectureDeparture)
		return ChatResult{SessionID: id, Closed: true}, nil
	}

	prompt := input
	if initial {
		prompt = lectureOpening
	}

	response, err := agent.ProcessTurn(ctx, id, prompt)
	if err != nil {
		return ChatResult{SessionID: id}, err
	}

	exit := s.classifier.Classify(ctx, id, response)
	if _, err := s.router.Next(state, dialog.Turn{PersonaID: personaID, Exit: exit}); err != nil {
		return ChatResult{SessionID: id}, err
	}

	return ChatResult{SessionID: id, Response: response, Closed: exit}, nil
}

// DebateResult is the outcome of one debate turn.
type DebateResult struct {
	SessionID string
	Response  string
	From      string // Persona id of the responding professor
	Closed    bool
}

// DebateTurn advances (or opens, or closes) the debate between the two
// personas under the given session identifier.
func (s *Service) DebateTurn(ctx context.Context, sessionID, personaID1, personaID2, input string, initial, closed bool) (DebateResult, error) {
	debate, err := s.Debate(personaID1, personaID2)
	if err != nil {
		return DebateResult{}, err
	}

	if closed {
		id := debate.Close(sessionID)
		return DebateResult{SessionID: id, Closed: true}, nil
	}

	var res dialog.Result
	if initial {
		res, err = debate.Open(ctx, sessionID)
	} else {
		res, err = debate.Advance(ctx, sessionID, input)
	}
	if err != nil {
		return DebateResult{SessionID: res.SessionID}, err
	}

	from := personaID1
	if a, lookupErr := s.Agent(personaID2); lookupErr == nil && res.Speaker == a.Name() {
		from = personaID2
	}
	return DebateResult{SessionID: res.SessionID, Response: res.Response, From: from, Closed: res.Closed}, nil
}
