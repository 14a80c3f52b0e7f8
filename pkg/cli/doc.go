// Package cli provides helpers for the triton command: output
// formatting, typed command errors, and signal handling for graceful
// shutdown.
package cli
