package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/game"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/player"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, id string) *Session {
	t.Helper()
	alice, err := player.New("Alice", game.PlayerX)
	require.NoError(t, err)
	bob, err := player.New("Bob", game.PlayerO)
	require.NoError(t, err)

	m := match.New()
	require.NoError(t, m.Start(alice, bob))
	snap, err := m.Snapshot()
	require.NoError(t, err)

	now := time.Now()
	return &Session{ID: id, Match: snap, CreatedAt: now, UpdatedAt: now}
}

// placeMove restores the stored match, applies index and stores it back.
func placeMove(index int) UpdateFunc {
	return func(s *Session) error {
		m, err := match.Restore(s.Match)
		if err != nil {
			return err
		}
		if _, err := m.ApplyMove(index); err != nil {
			return err
		}
		s.Match, err = m.Snapshot()
		return err
	}
}

func TestMemorySessionRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository(time.Hour)

	t.Run("Get unknown session", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	s := newSession(t, "s1")
	require.NoError(t, repo.Create(ctx, s))

	t.Run("Create twice fails", func(t *testing.T) {
		assert.Error(t, repo.Create(ctx, s))
	})

	t.Run("Get returns a copy", func(t *testing.T) {
		got, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, s.Match, got.Match)

		got.Match.Round = 99
		again, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, again.Match.Round)
	})

	t.Run("Update persists the change", func(t *testing.T) {
		got, err := repo.Update(ctx, "s1", placeMove(4))
		require.NoError(t, err)
		assert.Equal(t, game.PlayerX, got.Match.Board[4])
		assert.Equal(t, game.PlayerO, got.Match.CurrentTurn)

		stored, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, got.Match, stored.Match)
	})

	t.Run("Failed update leaves the session alone", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := repo.Update(ctx, "s1", func(s *Session) error {
			s.Match.Round = 42
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Match.Round)
	})

	t.Run("Update unknown session", func(t *testing.T) {
		_, err := repo.Update(ctx, "missing", placeMove(0))
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "s1"))
		assert.ErrorIs(t, repo.Delete(ctx, "s1"), ErrSessionNotFound)
		_, err := repo.Get(ctx, "s1")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestMemorySessionRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository(time.Minute).(*memorySessionRepository)
	now := time.Now()
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Create(ctx, newSession(t, "s1")))

	now = now.Add(30 * time.Second)
	_, err := repo.Update(ctx, "s1", placeMove(0))
	require.NoError(t, err)

	// the update pushed expiry forward
	now = now.Add(45 * time.Second)
	_, err = repo.Get(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionRepository_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository(time.Hour)
	require.NoError(t, repo.Create(ctx, newSession(t, "s1")))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			_, err := repo.Update(ctx, "s1", placeMove(index))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Every goroutine got the cell it asked for unless a round ended first,
	// so the stored match is always internally consistent.
	stored, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	_, err = match.Restore(stored.Match)
	assert.NoError(t, err)
}
