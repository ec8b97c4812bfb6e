package cache

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize bounds the number of previews kept in memory
const DefaultSize = 512

type repository struct {
	l   log.Logger
	ttl time.Duration
	lru *expirable.LRU[string, Entry]
}

// NewRepository initializes a new in-memory cache repository holding at most size entries, entries
// expire after ttl. A ttl of zero disables caching.
func NewRepository(l log.Logger, size int, ttl time.Duration) *repository {
	if size <= 0 {
		size = DefaultSize
	}
	return &repository{
		l:   l,
		ttl: ttl,
		lru: expirable.NewLRU[string, Entry](size, func(key string, _ Entry) {
			level.Debug(l).Log("msg", "cache entry evicted", "key", key)
		}, ttl),
	}
}

// Get returns a cache entry for a given key if it hasn't expired yet
func (s *repository) Get(key string) (*Entry, bool, error) {
	entry, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}

// Set sets a cache entry, StoredAt is filled in if it is empty
func (s *repository) Set(entry Entry) error {
	if s.ttl <= 0 {
		return nil
	}
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now()
	}
	s.lru.Add(entry.Key, entry)
	return nil
}

// Purge drops all entries, used after the directory was reloaded
func (s *repository) Purge() {
	n := s.lru.Len()
	s.lru.Purge()
	level.Debug(s.l).Log("msg", "cache purged", "entries", n)
}
