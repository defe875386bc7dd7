// Package cli provides the interactive command-line client of the testimony
// archive.
//
// It wires configuration, local storage, the API client and services, and
// an interactive REPL. Visitors can browse published testimonies; logged-in
// users can share a testimony through a step-by-step wizard, save it as a
// draft at any step and resume it later.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
