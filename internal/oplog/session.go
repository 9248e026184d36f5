package oplog

import "github.com/google/uuid"

// NewSessionID generates a fresh session identifier for a Tool Server
// connection, attached to every Record it produces for the lifetime of that
// connection. Grounded on blueman82-conductor's internal/cmd/run.go use of
// uuid.NewString() for run identifiers.
func NewSessionID() string {
	return uuid.NewString()
}
