// Package session keeps the page-local state of each visitor in memory.
// A visitor owns at most one mounted page: mounting a route discards whatever
// the previous page held, so form data never travels between pages.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caremate/caremate-web/forms"
	"github.com/google/uuid"
)

var (
	// ErrNoMount is returned when the visitor has no mounted page (new or swept)
	ErrNoMount = errors.New("session: no mounted page")
	// ErrStale is returned when an action targets a page that is no longer mounted
	ErrStale = errors.New("session: stale page")
)

// Mount is one page instance. Token changes on every mount and is echoed
// back by the page's forms.
type Mount struct {
	Route     string
	Token     string
	State     forms.PageState
	MountedAt time.Time
}

func (m *Mount) snapshot() *Mount {
	c := *m
	c.State = m.State.Clone()
	return &c
}

type visit struct {
	mount    *Mount
	lastSeen time.Time
}

// Store is a mutex-guarded map of visitor ID to mounted page
type Store struct {
	mu     sync.Mutex
	visits map[string]*visit
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates a store dropping visitors idle for longer than ttl
func NewStore(ttl time.Duration) *Store {
	return &Store{
		visits: make(map[string]*visit),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Mount replaces the visitor's page with state and returns a snapshot
func (s *Store) Mount(visitorID string, state forms.PageState) *Mount {
	now := s.now()
	m := &Mount{
		Route:     state.Route(),
		Token:     uuid.NewString(),
		State:     state,
		MountedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[visitorID] = &visit{mount: m, lastSeen: now}
	return m.snapshot()
}

// current returns a snapshot of the visitor's mounted page
func (s *Store) current(visitorID string) (*Mount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.live(visitorID)
	if !ok {
		return nil, ErrNoMount
	}
	v.lastSeen = s.now()
	return v.mount.snapshot(), nil
}

// Apply runs fn against the mounted state if route and token still identify
// the visitor's current page. fn runs under the store lock; an error from fn
// is returned as is and the snapshot still reflects any changes fn made.
func (s *Store) Apply(visitorID, route, token string, fn func(forms.PageState) error) (*Mount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.live(visitorID)
	if !ok {
		return nil, ErrNoMount
	}
	if v.mount.Route != route || v.mount.Token != token {
		return nil, fmt.Errorf("%w: %s is mounted, action targets %s", ErrStale, v.mount.Route, route)
	}

	v.lastSeen = s.now()
	err := fn(v.mount.State)
	return v.mount.snapshot(), err
}

// live returns the visit when it exists and has not expired (caller holds the lock)
func (s *Store) live(visitorID string) (*visit, bool) {
	v, ok := s.visits[visitorID]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(v.lastSeen) > s.ttl {
		delete(s.visits, visitorID)
		return nil, false
	}
	return v, true
}

// Sweep removes expired visitors and returns how many were removed
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, v := range s.visits {
		if v.lastSeen.Before(cutoff) {
			delete(s.visits, id)
			removed++
		}
	}
	return removed
}

// Len reports how many visitors currently have a mounted page
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visits)
}
