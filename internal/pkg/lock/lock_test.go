package lock

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestTryLock(t *testing.T) {
	sl := NewSquadLock()
	squadID := uuid.New()

	assert.True(t, sl.TryLock(squadID))
	assert.True(t, sl.IsLocked(squadID))
	assert.False(t, sl.TryLock(squadID))

	sl.Unlock(squadID)
	assert.False(t, sl.IsLocked(squadID))
	assert.True(t, sl.TryLock(squadID))
	sl.Unlock(squadID)
}

func TestLocksAreIndependentPerSquad(t *testing.T) {
	sl := NewSquadLock()
	a, b := uuid.New(), uuid.New()

	sl.Lock(a)
	assert.True(t, sl.TryLock(b))
	sl.Unlock(b)
	sl.Unlock(a)
}

// Concurrent roster mutations on the same squad must serialise: the final
// count has to match sequential execution of all joins and leaves.
func TestConcurrentRosterMutations(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")
		deltas := make([]int, numOps)
		expected := 0
		for i := range deltas {
			deltas[i] = rapid.IntRange(-1, 1).Draw(t, "delta")
			expected += deltas[i]
		}

		sl := NewSquadLock()
		squadID := uuid.New()
		roster := 0

		var wg sync.WaitGroup
		for _, delta := range deltas {
			wg.Add(1)
			go func(d int) {
				defer wg.Done()
				_ = sl.WithLock(squadID, func() error {
					roster += d
					return nil
				})
			}(delta)
		}
		wg.Wait()

		if roster != expected {
			t.Fatalf("roster %d after concurrent mutations, want %d", roster, expected)
		}
	})
}
