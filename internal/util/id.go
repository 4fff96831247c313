package util

import "github.com/google/uuid"

// NewID generates a unique identifier used for run and tool-call correlation.
func NewID() string { return uuid.NewString() }
