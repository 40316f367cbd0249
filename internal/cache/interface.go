package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/manifestctl/internal/domain"
)

// Ensure BadgerCache implements domain.Cache
var _ domain.Cache = (*BadgerCache)(nil)

// Options contains cache configuration options
type Options struct {
	Directory string
	InMemory  bool
	Logger    bool
	// Compress stores values zstd-compressed. Reads accept both forms.
	Compress bool
	// LockTimeout bounds how long opening waits for another process to
	// release the directory lock. Zero means DefaultLockTimeout.
	LockTimeout time.Duration
}

// DefaultLockTimeout is the default wait for a locked cache directory
const DefaultLockTimeout = 5 * time.Second

// DefaultOptions returns default cache options
func DefaultOptions() Options {
	return Options{
		Directory: "",
		InMemory:  false,
		Logger:    false,
		Compress:  true,
	}
}

// DefaultDirectory returns ~/.manifestctl/cache
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".manifestctl", "cache"), nil
}
