package sqlite

import "github.com/google/uuid"

// newID returns an opaque unique identifier for new rows.
func newID() string {
	return uuid.NewString()
}
