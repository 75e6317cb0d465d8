// Package cli provides the interactive todo command-line client.
//
// It puts a read-eval-print loop in front of the application services:
// authentication, list and task management, the dashboard and local
// preferences. Prompts replace forms and one-line notifications replace
// toasts. When the backend answers 401 the session is already gone by the
// time the command returns, so the prompt simply drops back to the
// logged-out command set.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
