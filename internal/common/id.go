package common

import (
	"github.com/google/uuid"
)

// NewID generates a unique identifier with the given collection prefix.
// Format: <prefix>_<uuid>
func NewID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}

// NewTrackingID generates a fresh root lineage identifier.
func NewTrackingID() string {
	return uuid.New().String()
}
