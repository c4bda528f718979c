// Package cli provides the interactive Bill Board command-line client.
//
// It wires configuration, the local bill catalog, the identity provider, the
// API client and an interactive REPL. Typical flow: register and verify or
// log in, finish onboarding on first sign-in, then browse recommendations,
// search bills and keep a saved list.
//
// Key features:
//   - Register / Verify / Login / Logout / Delete account
//   - Onboarding: optional demographics and interests
//   - Recommend / Search / Profiles / Show / Recent
//   - Saved bills with instant toggling
//   - Background connectivity watcher shown in the prompt
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
