// Package cli provides the interactive chat command-line client.
//
// It wires configuration, the local session cache, the HTTP API client, and
// an interactive REPL. Typical flow: restore the cached session, show the
// conversation so far, and hand control to the loop.
//
// Key features:
//   - Chat as a guest (with the free-question limit) or as an account holder
//   - Register / Login / Logout with OTP-verified signup
//   - Browse, open, search, and delete archived conversations
//   - English/Hindi answer toggle
//   - Speak assistant replies when a platform speech engine is present
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
