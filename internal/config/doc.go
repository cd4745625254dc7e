// Package config holds the settings the document tracker consumes and
// notifies subscribers when they change.
//
// Settings are addressed by dot-separated paths ("blame.ignoreWhitespace").
// The Store keeps current values over built-in defaults; Loader reads a
// TOML file into it and Watcher reloads the file when it changes on disk.
package config
