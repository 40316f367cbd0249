package git

import (
	"context"
	"errors"
)

var (
	// ErrRevisionNotFound indicates the revision does not resolve to a commit
	ErrRevisionNotFound = errors.New("revision not found")

	// ErrFileNotFound indicates the path does not exist at the revision
	ErrFileNotFound = errors.New("file not found at revision")
)

// Client defines the interface for reading files from a git revision.
// repoPath may be any directory inside a work tree; paths are relative to it.
type Client interface {
	ReadFile(ctx context.Context, repoPath, rev, path string) ([]byte, error)
	ListFiles(ctx context.Context, repoPath, rev, dir string) ([]string, error)
}
