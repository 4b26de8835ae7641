// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var (
	// ErrNotFound is returned by Store.Get for a missing entry
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned by stores that cannot persist anything
	ErrUnavailable = errors.New("persistent store unavailable")

	storeKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// Store is a string keyed byte store
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = NopStore{}
)

type MemoryStore struct {
	lock    sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.entries[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.entries, key)
	return nil
}

// FileStore keeps one file per key in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !storeKeyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid store key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStore) Get(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Set writes through a temporary file so readers never see a partial entry.
func (s *FileStore) Set(key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (s *FileStore) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// NopStore is used where no persistent store exists. Every call fails with
// ErrUnavailable.
type NopStore struct{}

func (NopStore) Get(string) ([]byte, error) { return nil, ErrUnavailable }

func (NopStore) Set(string, []byte) error { return ErrUnavailable }

func (NopStore) Remove(string) error { return ErrUnavailable }
