package kit

import "github.com/google/uuid"

// NewRequestID returns a time-sortable, type-prefixed request identifier.
func NewRequestID() string {
	return "req_" + uuid.Must(uuid.NewV7()).String()
}
