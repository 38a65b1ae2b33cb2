// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores finished answers keyed by normalized question text,
// so repeating a question skips the full pipeline. Entries live in a local
// Badger database and expire after the configured TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// Entry is one cached answer.
type Entry struct {
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache is an answer store backed by Badger. Safe for concurrent use.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// badgerLogger adapts zerolog to the badger.Logger interface.
type badgerLogger struct {
	logger zerolog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(format string, args ...any)   { l.logger.Error().Msgf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...any) { l.logger.Warn().Msgf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...any)    { l.logger.Debug().Msgf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...any)   { l.logger.Debug().Msgf(format, args...) }

// Open opens the cache database at cfg.Dir, creating the directory when
// needed. An empty Dir opens an in-memory cache that vanishes on Close.
func Open(cfg types.CacheConfig, logger zerolog.Logger) (*Cache, error) {
	var opts badger.Options
	if cfg.Dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	return &Cache{db: db, ttl: cfg.TTL}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get looks up the cached answer for question. The second return value
// reports whether a live entry was found; expired entries count as misses.
func (c *Cache) Get(ctx context.Context, question string) (Entry, bool, error) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(question))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cached answer: %w", err)
	}
	return entry, true, nil
}

// Put stores answer under question, replacing any previous entry. The
// entry expires after the cache TTL; a zero TTL keeps it until evicted.
func (c *Cache) Put(ctx context.Context, question, answer string) error {
	value, err := json.Marshal(Entry{Answer: answer, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(cacheKey(question), value)
		if c.ttl != 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("writing cached answer: %w", err)
	}
	return nil
}

// cacheKey normalizes question text so casing and whitespace differences
// hit the same entry.
func cacheKey(question string) []byte {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	return []byte("answer/" + normalized)
}
