package utils

import (
	"github.com/google/uuid"
)

// GenerateAPIKey generates a UUID string to be used as an API key
func GenerateAPIKey() string {
	return uuid.NewString()
}

// GenerateRequestID returns a compact random identifier for request correlation.
func GenerateRequestID() string {
	id := uuid.New()
	return id.String()[:8] + id.String()[24:]
}
