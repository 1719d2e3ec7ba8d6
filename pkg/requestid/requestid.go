// Package requestid resolves the correlation id carried by HTTP requests and
// gRPC calls.
package requestid

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// Header is the HTTP header echoed on every response.
	Header = "X-Request-Id"
	// MetadataKey is the gRPC metadata key; metadata keys are lower case.
	MetadataKey = "x-request-id"

	maxLen = 128
)

// Resolve returns the first caller-supplied id that is safe to log and echo,
// or a fresh UUID when none qualifies.
func Resolve(candidates ...string) string {
	for _, candidate := range candidates {
		if id := strings.TrimSpace(candidate); valid(id) {
			return id
		}
	}
	return uuid.NewString()
}

func valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '!' || id[i] > '~' {
			return false
		}
	}
	return true
}
