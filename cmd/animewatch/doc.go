// Command animewatch is the command-line interface for the animewatch title
// recognizer.
//
// Catalog and history commands work directly against the SQLite catalog and
// nudge a running daemon to rebuild its indices afterwards. The stats command
// and the daemon subcommands talk to the daemon HTTP API.
package main
