package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
	"github.com/quantmind-br/manifestctl/internal/domain"
	"github.com/quantmind-br/manifestctl/internal/utils"
)

// zstdMagic prefixes every zstd frame
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// gcInterval is how often the value log is garbage collected
const gcInterval = 5 * time.Minute

// BadgerCache is a cache implementation using BadgerDB
type BadgerCache struct {
	db        *badger.DB
	compress  bool
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	stop      chan struct{}
	closeOnce sync.Once
}

// NewBadgerCache creates a new BadgerDB cache
func NewBadgerCache(opts Options) (*BadgerCache, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			dir, err := DefaultDirectory()
			if err != nil {
				return nil, err
			}
			opts.Directory = dir
		}

		// Ensure directory exists
		if err := utils.EnsureDir(opts.Directory); err != nil {
			return nil, err
		}

		badgerOpts = badger.DefaultOptions(opts.Directory)
	}

	// Disable logging unless explicitly enabled
	if !opts.Logger {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := openWithRetry(badgerOpts, opts.LockTimeout)
	if err != nil {
		return nil, err
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	c := &BadgerCache{
		db:       db,
		compress: opts.Compress,
		encoder:  encoder,
		decoder:  decoder,
		stop:     make(chan struct{}),
	}

	// In-memory databases have no value log to collect
	if !opts.InMemory {
		go c.runGC()
	}

	return c, nil
}

func (c *BadgerCache) runGC() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			_ = c.db.RunValueLogGC(0.5)
		}
	}
}

// Get retrieves a value from cache
func (c *BadgerCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheKey := GenerateKey(key)

	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrCacheMiss
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	return c.decode(value)
}

// Set stores a value in cache with TTL
func (c *BadgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cacheKey := GenerateKey(key)
	stored := c.encode(value)

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(cacheKey), stored)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Has checks if a key exists in cache
func (c *BadgerCache) Has(ctx context.Context, key string) bool {
	cacheKey := GenerateKey(key)

	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(cacheKey))
		return err
	})

	return err == nil
}

// Delete removes a key from cache
func (c *BadgerCache) Delete(ctx context.Context, key string) error {
	cacheKey := GenerateKey(key)

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(cacheKey))
	})
}

// Close releases cache resources
func (c *BadgerCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stop)
		c.encoder.Close()
		c.decoder.Close()
		err = c.db.Close()
	})
	return err
}

// Clear removes all entries from the cache
func (c *BadgerCache) Clear() error {
	return c.db.DropAll()
}

// Size returns the number of entries in the cache
func (c *BadgerCache) Size() int64 {
	var count int64
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Stats returns cache statistics
func (c *BadgerCache) Stats() map[string]interface{} {
	lsm, vlog := c.db.Size()
	return map[string]interface{}{
		"entries":    c.Size(),
		"lsm_size":   lsm,
		"vlog_size":  vlog,
		"compressed": c.compress,
	}
}

func (c *BadgerCache) encode(value []byte) []byte {
	if !c.compress {
		return value
	}
	return c.encoder.EncodeAll(value, make([]byte, 0, len(value)))
}

// decode accepts both compressed and plain values so the compression setting
// can change between runs.
func (c *BadgerCache) decode(value []byte) ([]byte, error) {
	if !bytes.HasPrefix(value, zstdMagic) {
		return value, nil
	}
	out, err := c.decoder.DecodeAll(value, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cached value: %w", err)
	}
	return out, nil
}
