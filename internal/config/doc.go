// Package config loads, normalizes, and validates asrprep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HF_TOKEN. The Config type centralizes every knob the CLI and the
// preparation pipeline need: the remote corpus and its language
// configuration, the local audio-folder directory, the target sampling rate,
// worker count, and the external feature commands.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
