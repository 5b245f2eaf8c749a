// Package safego wraps goroutine launches with panic recovery. The server
// keeps two long-lived background loops (the rate limiter's stale-client
// sweep and the database stats collector), and a panic in either would
// otherwise vanish without a trace while the loop it killed stays dead.
package safego

import "log/slog"

// Go runs fn on a new goroutine, logging and swallowing any panic instead of
// taking the process down. Callers that need the work to restart after a
// panic must arrange that themselves.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
