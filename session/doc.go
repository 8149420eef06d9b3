// Package session houses the in-memory implementation of
// core.SessionRegistry. Each persona agent owns its own registry instance,
// so a session identifier shared between two personas (as in a debate)
// still names two fully independent histories.
//
// Sessions persist until process termination; there is no eviction or
// capacity bound. Long-lived deployments would need a TTL or LRU policy on
// top of this registry.
package session
