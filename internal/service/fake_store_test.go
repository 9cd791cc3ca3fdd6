package service

import (
	"context"
	"sync"
	"time"

	"github.com/ivanzorin/wedding-backend/internal/kv"
)

// fakeClock — управляемые часы для проверки кулдаунов и TTL.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Часы стартуют от реального времени: jwt сверяет exp с time.Now,
// и токены, выпущенные по этим часам, должны оставаться валидными.
func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

// fakeStore — in-memory реализация kv.Store с теми же часами, что у сервиса.
type fakeStore struct {
	mu    sync.Mutex
	data  map[string]fakeEntry
	clock *fakeClock

	failNext error
}

func newFakeStore(clock *fakeClock) *fakeStore {
	return &fakeStore{data: make(map[string]fakeEntry), clock: clock}
}

func (s *fakeStore) get(key string) (fakeEntry, bool) {
	entry, ok := s.data[key]
	if !ok {
		return fakeEntry{}, false
	}
	if s.clock.Now().After(entry.expiresAt) {
		delete(s.data, key)
		return fakeEntry{}, false
	}
	return entry, true
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return "", err
	}
	entry, ok := s.get(key)
	if !ok {
		return "", kv.ErrNotFound
	}
	return entry.value, nil
}

func (s *fakeStore) SetEX(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}
	s.data[key] = fakeEntry{value: value, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

func (s *fakeStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return false, err
	}
	if _, ok := s.get(key); ok {
		return false, nil
	}
	s.data[key] = fakeEntry{value: value, expiresAt: s.clock.Now().Add(ttl)}
	return true, nil
}

func (s *fakeStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *fakeStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return 0, err
	}
	entry, ok := s.get(key)
	if !ok {
		return 0, kv.ErrNotFound
	}
	return entry.expiresAt.Sub(s.clock.Now()), nil
}

func (s *fakeStore) takeErr() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.get(key)
	return ok
}
