// Package preflight provides readiness checks for the filesystem paths,
// catalog database and daemon endpoints animewatch depends on.
//
// RunAll covers what every command needs before touching the catalog. The
// CLI "preflight" command adds the daemon and metrics endpoint checks from
// runtime_status.go when a daemon is expected to be running.
package preflight
