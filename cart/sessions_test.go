package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsOpenReturnsSameStore(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(NewMemorySnapshotStore(), nil)

	a := s.Open(ctx, UserKey("u1"))
	b := s.Open(ctx, UserKey("u1"))
	assert.Same(t, a, b)
	assert.Equal(t, 1, s.Len())
}

func TestSessionsCloseKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(NewMemorySnapshotStore(), nil)

	st := s.Open(ctx, UserKey("u1"))
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	s.Close(UserKey("u1"))
	assert.Zero(t, s.Len())

	again := s.Open(ctx, UserKey("u1"))
	assert.NotSame(t, st, again)
	assert.Equal(t, 1, again.ItemCount())
}

func TestMergeGuestIntoUser(t *testing.T) {
	ctx := context.Background()
	snaps := NewMemorySnapshotStore()
	s := NewSessions(snaps, nil)

	guest := s.Open(ctx, GuestKey("g1"))
	require.NoError(t, guest.AddItem(ctx, item(1, "10")))
	require.NoError(t, guest.AddItem(ctx, item(1, "10")))
	require.NoError(t, guest.AddItem(ctx, item(2, "5")))

	user := s.Open(ctx, UserKey("u1"))
	require.NoError(t, user.AddItem(ctx, item(1, "10")))

	merged, err := s.Merge(ctx, GuestKey("g1"), UserKey("u1"))
	require.NoError(t, err)
	assert.True(t, merged)

	items := user.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)

	_, err = snaps.Load(ctx, GuestKey("g1"))
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.Empty(t, s.Open(ctx, GuestKey("g1")).Items())
}

func TestMergeEmptyGuest(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(NewMemorySnapshotStore(), nil)

	merged, err := s.Merge(ctx, GuestKey("nobody"), UserKey("u1"))
	require.NoError(t, err)
	assert.False(t, merged)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestSessionsEvictIdleStores(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	snaps := NewMemorySnapshotStore()
	s := NewSessions(snaps, nil, WithIdleTTL(time.Minute))
	s.now = clock.now

	st := s.Open(ctx, GuestKey("g1"))
	require.NoError(t, st.AddItem(ctx, item(1, "10")))
	s.Open(ctx, GuestKey("g2"))

	clock.t = clock.t.Add(30 * time.Second)
	s.Open(ctx, GuestKey("g2"))
	assert.Zero(t, s.EvictIdle())

	clock.t = clock.t.Add(45 * time.Second)
	assert.Equal(t, 1, s.EvictIdle())
	assert.Equal(t, 1, s.Len())

	// the evicted cart comes back from its snapshot
	again := s.Open(ctx, GuestKey("g1"))
	assert.NotSame(t, st, again)
	assert.Equal(t, 1, again.ItemCount())
}

func TestSessionsOpenSweepsIdleStores(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSessions(NewMemorySnapshotStore(), nil, WithIdleTTL(time.Minute))
	s.now = clock.now
	s.lastSweep = clock.t

	for i := 0; i < 100; i++ {
		s.Open(ctx, GuestKey(fmt.Sprintf("g%d", i)))
	}
	require.Equal(t, 100, s.Len())

	clock.t = clock.t.Add(2 * time.Minute)
	s.Open(ctx, GuestKey("fresh"))
	assert.Equal(t, 1, s.Len())
}

func TestSessionsCapDropsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSessions(NewMemorySnapshotStore(), nil, WithMaxOpen(2))
	s.now = clock.now

	s.Open(ctx, GuestKey("a"))
	clock.t = clock.t.Add(time.Second)
	b := s.Open(ctx, GuestKey("b"))
	clock.t = clock.t.Add(time.Second)
	s.Open(ctx, GuestKey("a"))
	clock.t = clock.t.Add(time.Second)
	s.Open(ctx, GuestKey("c"))

	assert.Equal(t, 2, s.Len())
	assert.NotSame(t, b, s.Open(ctx, GuestKey("b")))
}

func TestSessionsShareSnapshotStore(t *testing.T) {
	ctx := context.Background()
	snaps := NewMemorySnapshotStore()
	replicaA := NewSessions(snaps, nil)
	replicaB := NewSessions(snaps, nil)

	// both processes have the cart open before either writes
	a := replicaA.Open(ctx, UserKey("u1"))
	b := replicaB.Open(ctx, UserKey("u1"))

	require.NoError(t, a.AddItem(ctx, item(1, "10")))
	require.NoError(t, b.AddItem(ctx, item(2, "5")))

	raw, err := snaps.Load(ctx, UserKey("u1"))
	require.NoError(t, err)
	items, err := Decode(raw)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	assert.Equal(t, 2, replicaA.Open(ctx, UserKey("u1")).ItemCount())
}
