package core

import "github.com/google/uuid"

// NewID generates a unique identifier for agents, threads, runs and
// messages.
func NewID() string { return uuid.NewString() }
