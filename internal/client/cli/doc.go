// Package cli provides the interactive jobkeeper command-line client.
//
// It wires configuration, the local store, the identity and ledger services
// and the feed client, and serves a REPL. Typical flow: restore the previous
// session, fetch the job feed, start the store watcher, then execute user
// commands until "exit".
//
// Key features:
//   - Register / Login / Logout
//   - Fetch, search, filter and sort jobs
//   - Save jobs and apply for them, per signed-in user
//   - List and withdraw applications
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
