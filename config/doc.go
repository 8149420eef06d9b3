// Package config loads the YAML service configuration and the completion
// provider credential. Both are resolved once at process start: a missing
// credential or an unreadable persona reference document keeps the process
// from serving at all, rather than surfacing per-request failures.
package config
