// Package server assembles and runs the adapter's HTTP server: session
// store, orchestrator, metrics, background sweeper, route setup and
// graceful shutdown.
package server
