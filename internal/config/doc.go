// Package config loads the animewatch TOML configuration.
//
// Load applies defaults, expands ~ in paths, fills derived values such as the
// catalog database location, applies ANIMEWATCH_API_TOKEN, and validates the
// result. Unknown keys are rejected so typos surface at startup.
package config
