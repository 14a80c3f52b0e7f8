package conversation

// Store is the conversation session registry. Implementations must make
// every operation mutually exclusive with the others so a lookup's expiry
// check cannot race a concurrent create or touch.
//
// Get returns (nil, nil) for an absent or expired session; expiry on lookup
// also deletes the entry. No Store operation fails with upstream errors,
// only with local storage errors.
type Store interface {
	// Create allocates a fresh session with a collision-free id and both
	// timestamps stamped to now.
	Create(agentName, groupID, token string) (*Session, error)

	// Get returns the session, or nil if it is absent or its idle TTL has
	// elapsed. Expired entries are deleted as a side effect.
	Get(id string) (*Session, error)

	// Touch advances LastActiveAt to now if the session exists. Absent
	// sessions are a no-op, not an error.
	Touch(id string) error

	// Delete removes the session. Idempotent.
	Delete(id string) error

	// CleanupExpired deletes every session whose LastActiveAt is older
	// than the TTL and returns the number removed.
	CleanupExpired() (int, error)

	// Stats reports store counters for health reporting.
	Stats() (Stats, error)

	// Close releases any backing resources.
	Close() error
}

// Stats describes the current state of a session store.
type Stats struct {
	// ActiveSessions is the number of sessions currently stored,
	// including any not yet lazily expired.
	ActiveSessions int `json:"active_sessions"`

	// Backend names the store implementation ("memory" or "sqlite").
	Backend string `json:"backend"`
}
