// Package recognition resolves noisy playback titles to catalogued anime.
//
// An Engine holds an in-memory snapshot of the catalog with two indices
// (titles exactly as catalogued, and their normalized forms), a 64-entry
// first-in-first-out cache of recent raw queries, and a fuzzy fallback.
// Recognize consults these tiers in order and returns a MatchResult that is
// either Matched, Fuzzy with a confidence of at least 0.6, or NoMatch.
//
// The engine performs no locking. Recognize mutates the query cache and
// statistics, so every method requires exclusive access; the tracker package
// serializes calls through a single goroutine. When two anime share a title,
// the one that appears first in the catalog snapshot owns it in both indices
// until the next Invalidate and Populate; the other stays reachable through
// the fuzzy tier only.
package recognition
