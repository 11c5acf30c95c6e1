package cachegen

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

type localEntry struct {
	val     []byte
	expires time.Time
}

func (e localEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// LocalStore keeps entries in process memory. It suits tests and
// single-instance deployments. Like most memory caches, Incr refuses to
// create a missing key.
type LocalStore struct {
	mu      sync.Mutex
	entries map[string]localEntry
	now     func() time.Time
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore() *LocalStore {
	return &LocalStore{
		entries: make(map[string]localEntry),
		now:     time.Now,
	}
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return nil, ErrMiss
	}
	return append([]byte(nil), e.val...), nil
}

func (s *LocalStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = s.entry(val, ttl)
	s.mu.Unlock()
	return nil
}

func (s *LocalStore) Add(_ context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && !e.expired(s.now()) {
		return false, nil
	}
	s.entries[key] = s.entry(val, ttl)
	return true, nil
}

func (s *LocalStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(s.now()) {
		return 0, ErrMiss
	}

	n, err := strconv.ParseInt(string(e.val), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cachegen: value at %q is not an integer: %w", key, err)
	}
	n++
	e.val = []byte(strconv.FormatInt(n, 10))
	s.entries[key] = e
	return n, nil
}

// Len returns the number of entries, expired ones included.
func (s *LocalStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *LocalStore) entry(val []byte, ttl time.Duration) localEntry {
	e := localEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	return e
}
