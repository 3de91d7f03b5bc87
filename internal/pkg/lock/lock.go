// Package lock provides per-squad locking for membership mutations.
// The database row lock is the authoritative guard; this keeps concurrent
// mutations on the same squad from piling up on the store within a process.
package lock

import (
	"sync"

	"github.com/google/uuid"
)

// keyMutex wraps a mutex with reference counting for reuse.
type keyMutex struct {
	mu       sync.Mutex
	refCount int
}

// SquadLock provides per-squad locking to serialise membership changes.
type SquadLock struct {
	locks sync.Map // map[uuid.UUID]*keyMutex
	pool  sync.Pool
}

// NewSquadLock creates a new SquadLock instance.
func NewSquadLock() *SquadLock {
	return &SquadLock{
		pool: sync.Pool{
			New: func() any {
				return &keyMutex{}
			},
		},
	}
}

// getLock retrieves or creates a mutex for the given squad ID.
func (sl *SquadLock) getLock(squadID uuid.UUID) *keyMutex {
	if v, ok := sl.locks.Load(squadID); ok {
		return v.(*keyMutex)
	}

	newLock := sl.pool.Get().(*keyMutex)
	newLock.refCount = 0

	actual, loaded := sl.locks.LoadOrStore(squadID, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool.
		sl.pool.Put(newLock)
	}
	return actual.(*keyMutex)
}

// Lock acquires the lock for a squad.
func (sl *SquadLock) Lock(squadID uuid.UUID) {
	lock := sl.getLock(squadID)
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for a squad.
func (sl *SquadLock) Unlock(squadID uuid.UUID) {
	if v, ok := sl.locks.Load(squadID); ok {
		lock := v.(*keyMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired.
func (sl *SquadLock) TryLock(squadID uuid.UUID) bool {
	lock := sl.getLock(squadID)
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// WithLock executes fn while holding the squad's lock.
func (sl *SquadLock) WithLock(squadID uuid.UUID, fn func() error) error {
	sl.Lock(squadID)
	defer sl.Unlock(squadID)
	return fn()
}

// IsLocked reports whether a squad currently has an active lock.
// This is a point-in-time check and may change immediately after.
func (sl *SquadLock) IsLocked(squadID uuid.UUID) bool {
	if v, ok := sl.locks.Load(squadID); ok {
		lock := v.(*keyMutex)
		if lock.mu.TryLock() {
			lock.mu.Unlock()
			return false
		}
		return true
	}
	return false
}
