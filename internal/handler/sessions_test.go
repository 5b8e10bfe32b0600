package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/order-entry/internal/domain/order"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSessions_IdleExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)}
	reg := NewSessions(10*time.Minute, clock.now)

	idle := reg.Open(order.NewSession()).String()
	active := reg.Open(order.NewSession()).String()

	clock.advance(6 * time.Minute)
	require.NoError(t, reg.Do(active, func(*order.Session) error { return nil }))

	// idle has been untouched for 11 minutes, active for 5.
	clock.advance(5 * time.Minute)
	assert.ErrorIs(t, reg.Do(idle, func(*order.Session) error { return nil }), errSessionNotFound)
	assert.NoError(t, reg.Do(active, func(*order.Session) error { return nil }))
	assert.Equal(t, 1, reg.Len())
}

func TestSessions_OpenSweepsExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)}
	reg := NewSessions(time.Minute, clock.now)

	for range 5 {
		reg.Open(order.NewSession())
	}
	require.Equal(t, 5, reg.Len())

	clock.advance(2 * time.Minute)
	reg.Open(order.NewSession())
	assert.Equal(t, 1, reg.Len())

	clock.advance(2 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	assert.Zero(t, reg.Len())
}

func TestSessions_Close(t *testing.T) {
	reg := NewSessions(0, nil)
	id := reg.Open(order.NewSession()).String()

	require.NoError(t, reg.Close(id))
	assert.ErrorIs(t, reg.Close(id), errSessionNotFound)
	assert.ErrorIs(t, reg.Do(id, func(*order.Session) error { return nil }), errSessionNotFound)
	assert.ErrorIs(t, reg.Close("not-a-uuid"), errSessionNotFound)
}
