package puzzles

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateGet(t *testing.T) {
	r := NewRegistry()

	sess, err := r.Create(1, CategoryLogic)
	require.NoError(t, err)
	assert.Equal(t, StateSelectingDifficulty, sess.State)
	assert.Equal(t, CategoryLogic, sess.Category)
	assert.NotEqual(t, uuid.Nil, sess.ID)

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, sess.ID, got.ID)

	_, ok = r.Get(2)
	assert.False(t, ok)
}

func TestRegistryCreateBlocksSolvingSession(t *testing.T) {
	r := NewRegistry()

	first, err := r.Create(1, CategoryRiddles)
	require.NoError(t, err)

	// A session still picking difficulty is replaced, not protected.
	second, err := r.Create(1, CategoryMath)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = r.Mutate(1, second.ID, func(s *Session) error {
		s.State = StateSolving
		return nil
	})
	require.NoError(t, err)

	_, err = r.Create(1, CategoryLogic)
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestRegistryMutateFencing(t *testing.T) {
	r := NewRegistry()

	sess, err := r.Create(1, CategoryCharades)
	require.NoError(t, err)

	// A stale session ID must not touch the live session.
	_, err = r.Mutate(1, uuid.New(), func(s *Session) error {
		s.Score = 99
		return nil
	})
	assert.ErrorIs(t, err, ErrNotInSession)

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, 0.0, got.Score)

	updated, err := r.Mutate(1, sess.ID, func(s *Session) error {
		s.Score = 1.5
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1.5, updated.Score)
}

func TestRegistryRemoveFencing(t *testing.T) {
	r := NewRegistry()

	sess, err := r.Create(1, CategoryAssociations)
	require.NoError(t, err)

	assert.False(t, r.Remove(1, uuid.New()))
	assert.True(t, r.Remove(1, sess.ID))
	assert.False(t, r.Remove(1, sess.ID))

	_, ok := r.Get(1)
	assert.False(t, ok)
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry()

	sess, err := r.Create(1, CategoryLogic)
	require.NoError(t, err)

	got, _ := r.Get(1)
	got.Score = 42

	fresh, _ := r.Get(1)
	assert.Equal(t, 0.0, fresh.Score)
	assert.Equal(t, sess.ID, fresh.ID)
}

func TestRegistryConcurrentUsers(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			sess, err := r.Create(userID, CategoryMath)
			if err != nil {
				t.Error(err)
				return
			}
			for range 10 {
				if _, err := r.Mutate(userID, sess.ID, func(s *Session) error {
					s.Score += 1
					return nil
				}); err != nil {
					t.Error(err)
					return
				}
			}
		}(int64(i))
	}
	wg.Wait()

	for i := range 64 {
		got, ok := r.Get(int64(i))
		if assert.True(t, ok) {
			assert.Equal(t, 10.0, got.Score)
		}
	}
}
