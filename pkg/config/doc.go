// Package config provides YAML-based configuration for the gated cache
// layer, with defaults, validation, environment variable overrides, and an
// optional file watcher for hot reload.
//
// # Loading
//
// The loading sequence is:
//
//  1. Parse YAML from file
//  2. Apply default values
//  3. Apply GANYMEDE_* environment variable overrides
//  4. Validate the final configuration
//
// Validation errors are collected and returned together as a
// ValidationError so all problems surface in one pass.
//
// # Hot reload
//
// FileWatcher watches the configuration file and invokes a reload callback
// after a debounce interval. The gate's cache and limiter configuration is
// immutable once constructed; the callback decides whether to rebuild the
// gate with the new configuration.
package config
