// Package config loads, normalizes, and validates career builder
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the CLI and scan
// engine need: the library root, cache and log directories, worker pool
// sizing, and the default tiering rules. Always obtain settings through this
// package so downstream code receives sanitized paths, canonical log
// formats, and clear validation errors.
package config
