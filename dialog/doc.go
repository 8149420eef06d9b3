// Package dialog implements the multi-agent turn-routing and session-state
// orchestrator at the heart of Lectern:
//
//   - Agent: one persona's conversational engine — resolves sessions,
//     processes turns against a completion provider and applies contextual
//     injections without model calls.
//   - Classifier: a secondary agent with a fixed binary-classification
//     instruction used to detect the human's intent to end a session.
//   - Router: the explicit finite-state machine governing single-agent
//     chat turn routing.
//   - Debate: the coordinator for two-professor debates with strict
//     speaker alternation, student intervention splicing and a bounded
//     unattended auto-converse mode.
//
// Turns on one session are strictly serialized; turns on distinct sessions
// are independent and may run in parallel.
package dialog
