// Package daemon coordinates the long-running animewatch process.
//
// It wires configuration, the catalog store, the recognition tracker and the
// HTTP API into a single lifecycle with flock-based locking to prevent multiple
// instances. When metrics are enabled it also serves a Prometheus registry fed
// by the tracker.
//
// Keep orchestration logic here: recognition and storage behaviour belong in
// their own packages while the daemon focuses on startup, shutdown and request
// routing.
package daemon
