// Package persona defines the static identity of a conversational agent: a
// display name, a free-text style directive and an optional reference
// document the agent must ground its answers in. Definitions are built once
// at startup (reference documents are read eagerly and are immutable for
// the process lifetime) and collected into a Registry keyed by persona id.
package persona
