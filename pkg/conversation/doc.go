// Package conversation gives stateless OpenAI clients continuity against
// the stateful upstream chat provider.
//
// Each conversation session pins an opaque adapter-minted id to the upstream
// group, auth token, and agent it was created with. The id travels back to
// the client inline in assistant output as a [CONVERSATION_ID:...] tag and is
// recognized again on the next turn, so no client-side state or side channel
// is needed. Sessions expire after a configurable idle TTL, lazily on lookup
// and eagerly via a cron-scheduled sweep.
//
// Two Store implementations are provided: an in-memory map for single
// instance deployments and a SQLite-backed store that survives restarts.
package conversation
