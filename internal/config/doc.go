// Package config loads service settings. Later sources win: built-in
// defaults, an optional TOML file, a .env file, then environment variables.
package config
