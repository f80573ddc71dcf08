package utils

import "github.com/google/uuid"

func NewID() string { return uuid.NewString() }

// IsID reports whether s is a well-formed record id.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
