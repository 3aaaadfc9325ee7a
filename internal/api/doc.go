// Package api defines the JSON payloads exchanged with the animewatch daemon
// and a small HTTP client for them.
//
// The daemon's handlers convert domain values with the From* helpers so CLI
// and HTTP consumers see the same shapes.
package api
