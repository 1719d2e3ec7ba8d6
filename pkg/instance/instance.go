package instance

import (
	"os"

	"github.com/angelmondragon/marketplace-backend/pkg/env"
)

// GetID returns the process instance identifier: MARKETPLACE_INSTANCE_ID or
// HOSTNAME, then the OS hostname, then "local".
func GetID() string {
	if id := env.First("", "MARKETPLACE_INSTANCE_ID", "HOSTNAME"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
