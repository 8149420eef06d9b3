// Package core provides the foundational domain types and interfaces used
// by Lectern. It defines the core abstractions for:
//
//   - Entries (ordered conversational records with role attribution)
//   - Sessions (isolated, append-only conversation histories)
//   - SessionRegistry (lazy session resolution keyed by identifier)
//   - The error taxonomy shared by orchestration components
//
// The package intentionally keeps implementation concerns (storage, HTTP
// transport, concrete providers) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
