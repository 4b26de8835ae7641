// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package keys caches the network public key and provides helpers for key
// metadata, display and export.
package keys

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/luxfi/log"
)

const (
	// StorageKey is the single store entry used by the cache
	StorageKey = "fhevm_public_key"

	// TTL is how long a cached key stays valid
	TTL = time.Hour
)

// CachedKey is the stored form of a public key
type CachedKey struct {
	Key      string   `json:"key"`
	Metadata Metadata `json:"metadata"`
	// CachedAt is in unix milliseconds
	CachedAt int64 `json:"cachedAt"`
}

// Cache stores at most one public key. Store failures are logged and
// otherwise ignored; a failing store behaves like an empty cache.
type Cache struct {
	store Store
	log   log.Logger
	now   func() time.Time
}

type CacheOption func(*Cache)

func WithLogger(l log.Logger) CacheOption {
	return func(c *Cache) { c.log = l }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(store Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store: store,
		log:   log.NewNoOpLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put replaces the cached key.
func (c *Cache) Put(key string, metadata Metadata) {
	entry := CachedKey{
		Key:      key,
		Metadata: metadata,
		CachedAt: c.now().UnixMilli(),
	}
	b, err := json.Marshal(entry)
	if err != nil {
		c.log.Warn("failed to encode public key", log.Err(err))
		return
	}
	if err := c.store.Set(StorageKey, b); err != nil {
		c.log.Warn("failed to cache public key", log.Err(err))
	}
}

// Get returns the cached key if one exists and is younger than TTL. Expired
// and unreadable entries are removed.
func (c *Cache) Get() (CachedKey, bool) {
	b, err := c.store.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Warn("failed to read cached public key", log.Err(err))
		}
		return CachedKey{}, false
	}

	var entry CachedKey
	if err := json.Unmarshal(b, &entry); err != nil {
		c.log.Warn("discarding malformed cached public key", log.Err(err))
		c.remove()
		return CachedKey{}, false
	}

	age := c.now().UnixMilli() - entry.CachedAt
	if age > TTL.Milliseconds() {
		c.log.Debug("cached public key expired")
		c.remove()
		return CachedKey{}, false
	}
	return entry, true
}

// Clear removes the cached key
func (c *Cache) Clear() {
	c.remove()
}

func (c *Cache) remove() {
	if err := c.store.Remove(StorageKey); err != nil {
		c.log.Warn("failed to clear cached public key", log.Err(err))
	}
}
