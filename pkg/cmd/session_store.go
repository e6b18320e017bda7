// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"fmt"
	"strings"

	"github.com/chatoptimize/chatgraph/pkg/backend/session"
)

// NewSessionStore picks a session repository from a storage URL. An empty
// URL means in-memory; redis:// and rediss:// URLs get a redis-backed
// store.
func NewSessionStore(storageURL string) (session.Repository, error) {
	if storageURL == "" {
		return session.NewMemoryStore(), nil
	}

	if strings.HasPrefix(storageURL, "redis://") || strings.HasPrefix(storageURL, "rediss://") {
		return session.NewRedisStore(storageURL)
	}

	return nil, fmt.Errorf("unsupported session storage url: %s", storageURL)
}
