// Package provider defines the completion provider abstraction consumed by
// the dialogue orchestrator. A Provider is stateless from the orchestrator's
// perspective: it receives the full accumulated session history on every
// call and returns a single completion. Concrete adapters for hosted APIs
// live in sub-packages (openai, anthropic); a scriptable Mock is provided
// for tests and examples.
package provider
