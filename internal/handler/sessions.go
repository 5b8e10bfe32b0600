package handler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/order-entry/internal/domain/order"
)

var errSessionNotFound = errors.New("editing session not found")

// DefaultSessionTTL is how long an editing session may stay idle before it
// is discarded.
const DefaultSessionTTL = 30 * time.Minute

type sessionEntry struct {
	mu       sync.Mutex
	sess     *order.Session
	lastUsed time.Time
	closed   atomic.Bool
}

// Sessions holds the open editing sessions keyed by a random identifier.
// Sessions idle for longer than the TTL are dropped on the next Open or
// Sweep and can no longer be used.
type Sessions struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*sessionEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewSessions returns an empty session registry. A non-positive ttl
// selects DefaultSessionTTL.
func NewSessions(ttl time.Duration, now func() time.Time) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Sessions{
		entries: make(map[uuid.UUID]*sessionEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Open registers s and returns its identifier. Expired sessions are swept
// first.
func (r *Sessions) Open(s *order.Session) uuid.UUID {
	id := uuid.New()
	now := r.now()

	r.mu.Lock()
	r.sweepLocked(now)
	r.entries[id] = &sessionEntry{sess: s, lastUsed: now}
	r.mu.Unlock()
	return id
}

// Do runs fn with exclusive access to the session and marks it used.
func (r *Sessions) Do(id string, fn func(s *order.Session) error) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return errSessionNotFound
	}

	r.mu.Lock()
	e, ok := r.entries[key]
	if ok && r.expired(e, r.now()) {
		delete(r.entries, key)
		e.closed.Store(true)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return errSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return errSessionNotFound
	}
	err = fn(e.sess)
	e.lastUsed = r.now()
	return err
}

// Close discards a session without committing it.
func (r *Sessions) Close(id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return errSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return errSessionNotFound
	}
	delete(r.entries, key)
	e.closed.Store(true)
	return nil
}

// Sweep drops every expired session and returns how many were dropped.
func (r *Sessions) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

// Len returns the number of registered sessions, expired ones included
// until they are swept.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Sessions) sweepLocked(now time.Time) int {
	n := 0
	for id, e := range r.entries {
		if r.expired(e, now) {
			delete(r.entries, id)
			e.closed.Store(true)
			n++
		}
	}
	return n
}

// expired reports whether e has been idle past the TTL. An entry whose lock
// is held is in use and never expires.
func (r *Sessions) expired(e *sessionEntry, now time.Time) bool {
	if !e.mu.TryLock() {
		return false
	}
	defer e.mu.Unlock()
	return now.Sub(e.lastUsed) > r.ttl
}
