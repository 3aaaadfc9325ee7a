// Package tracker owns the recognition engine and serializes access to it.
//
// A Tracker runs one goroutine that executes every recognition, statistics
// read and catalog write in arrival order. Catalog writes (single insert,
// batch import, external-ID upsert) invalidate the engine on success so the
// next recognition rebuilds from fresh data. Matched observations at or above
// the configured confidence floor are appended to the watch history.
package tracker
