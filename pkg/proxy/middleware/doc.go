// Package middleware provides HTTP middleware for the adapter server:
// request IDs, structured request logging, panic recovery, and API key
// authentication.
package middleware
