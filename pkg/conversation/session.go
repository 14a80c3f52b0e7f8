package conversation

import "time"

// Session pins a conversation id to the upstream state it was created with.
// Sessions are owned by a Store; callers get copies and never mutate them
// in place.
type Session struct {
	// ID is the opaque adapter-minted conversation identifier.
	ID string

	// AgentName is the agent the session is pinned to. A request reusing
	// the session must ask for a matching model name.
	AgentName string

	// GroupID is the upstream chat group handle.
	GroupID string

	// Token is the upstream auth credential bound to the device identity
	// that created the session.
	Token string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	// LastActiveAt is advanced on every successful reuse and drives TTL
	// expiry.
	LastActiveAt time.Time
}
