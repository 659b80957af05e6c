package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	s, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, s)

	require.NoError(t, m.Save(ctx, "sid", entity.Session{UserID: "E1", Role: entity.RoleHR, Name: "Ann"}, time.Hour))

	s, err = m.Get(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, "E1", s.UserID)
	require.Equal(t, entity.RoleHR, s.Role)

	require.NoError(t, m.Delete(ctx, "sid"))
	s, err = m.Get(ctx, "sid")
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, "a", entity.Session{UserID: "E1"}, time.Hour))
	require.NoError(t, m.Save(ctx, "b", entity.Session{UserID: "E2"}, 3*time.Hour))

	now = now.Add(time.Hour)
	s, err := m.Get(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, s, "session must not outlive its ttl")
	require.Equal(t, 1, m.Len())

	now = now.Add(2 * time.Hour)
	require.Equal(t, 1, m.Sweep())
	require.Equal(t, 0, m.Len())
}

func TestMemoryStore_RunSweeperStopsOnCancel(t *testing.T) {
	m := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestMemoryStore_RunSweeperNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		done := make(chan struct{})
		go func() {
			NewMemoryStore().RunSweeper(context.Background(), interval)
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("sweeper with interval %v did not return", interval)
		}
	}
}
