// Package remote reads and writes the nginx site config that nginx-route
// edits. The file normally lives on a remote host reached over SFTP; a local
// implementation backs --file and tests.
package remote

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by ResolvePath when no candidate exists.
var ErrNotFound = errors.New("config file not found")

// Store locates, reads and writes the site config.
type Store interface {
	// ResolvePath returns the first candidate path that exists.
	ResolvePath(ctx context.Context, candidates []string) (string, error)

	// Read returns the raw bytes of path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the contents of path.
	Write(ctx context.Context, path string, data []byte) error

	// Location describes where the store's files live, e.g. "root@host".
	Location() string

	// Close releases the connection, if any.
	Close() error
}

// Commander runs commands on the host that owns the config.
type Commander interface {
	// Run executes argv and returns its combined output.
	Run(ctx context.Context, argv ...string) ([]byte, error)
}

// resolve walks candidates in order and returns the first one stat accepts.
func resolve(ctx context.Context, candidates []string, stat func(string) error) (string, error) {
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %v", ErrNotFound, candidates)
}
