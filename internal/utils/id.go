package utils

import "github.com/google/uuid"

// NewID returns a prefixed unique identifier, e.g. "msg-5f3a...".
func NewID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}
