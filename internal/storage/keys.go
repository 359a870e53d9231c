package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pdftoolbox/pdftoolbox/internal/security"
)

const requestsRoot = "requests"

// RequestPrefix is the scratch prefix owned by one request.
func RequestPrefix(requestID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/", requestsRoot, requestID.String())
}

// UploadKey is where an accepted upload is kept. The filename is sanitised
// here, so two uploads with the same sanitised name in one request share a
// key and the later one wins.
func UploadKey(requestID uuid.UUID, filename string) string {
	return RequestPrefix(requestID) + "in/" + security.SanitizeFilename(filename)
}

// OutputKey is where the response artifact is staged before streaming.
func OutputKey(requestID uuid.UUID, filename string) string {
	return RequestPrefix(requestID) + "out/" + security.SanitizeFilename(filename)
}

// ParseRequestIDFromKey extracts the owning request from a scratch key.
func ParseRequestIDFromKey(key string) (uuid.UUID, error) {
	parts := strings.Split(key, "/")
	if len(parts) < 2 || parts[0] != requestsRoot {
		return uuid.Nil, fmt.Errorf("not a request scratch key: %s", key)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid request ID in scratch key: %w", err)
	}
	return id, nil
}
