// Package logs reads the daemon's JSON log file for `animewatch logs`.
//
// Tail returns the last N lines together with the byte offset reached, and
// Follow polls from that offset until the context is cancelled. Rotated
// files (lumberjack truncates by renaming) are detected by the size dropping
// below the saved offset, in which case reading restarts from the top.
package logs
