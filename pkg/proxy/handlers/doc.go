// Package handlers implements the adapter's HTTP endpoints: chat
// completions (streaming and non-streaming), the model listing, and the
// health check.
package handlers
