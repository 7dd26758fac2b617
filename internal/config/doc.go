// Package config loads, normalizes, and validates vidscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VOSK_SERVER_URL and HF_TOKEN. The Config type centralizes every knob the
// batch pipeline and CLI need so recognition backends, discovery filters, and
// log destinations are resolved in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language hints, and clear validation errors.
package config
