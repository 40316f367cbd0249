package cache

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"
	"github.com/quantmind-br/manifestctl/internal/domain"
)

// openFunc is swapped in tests
var openFunc = badger.Open

// openWithRetry opens the database, retrying with exponential backoff while
// another process holds the directory lock.
func openWithRetry(opts badger.Options, timeout time.Duration) (*badger.DB, error) {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 1 * time.Second
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = timeout
	b.Reset()

	var db *badger.DB
	err := backoff.Retry(func() error {
		var err error
		db, err = openFunc(opts)
		if err == nil {
			return nil
		}
		if isLockError(err) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
	if err != nil {
		if isLockError(err) {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrCacheLocked, opts.Dir, err)
		}
		return nil, err
	}
	return db, nil
}

// isLockError reports whether err came from badger's directory lock
func isLockError(err error) bool {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return strings.Contains(err.Error(), "Cannot acquire directory lock")
}
