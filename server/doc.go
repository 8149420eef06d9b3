// Package server exposes the dialogue orchestrator over HTTP using gin.
// The transport layer is deliberately thin: handlers bind JSON, delegate to
// the lectern.Service and translate orchestrator errors into status codes.
// All coordination logic lives in the dialog package.
package server
