package util

import "github.com/google/uuid"

// NewID generates a new unique identifier for plans, runs and sessions.
func NewID() string { return uuid.NewString() }
