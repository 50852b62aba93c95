package util

import (
	"sync"

	"github.com/petermattis/goid"
)

// ReentryLock is a mutex that the owning goroutine may acquire again
// without deadlocking. The table append path relies on this: growing
// the chunk list locks on its own and is also reached with the lock
// already held.
//
// Ownership is keyed by goroutine id. All state is guarded by mu, so
// plain fields suffice.
type ReentryLock struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner int64
	depth int
}

func NewReentryLock() *ReentryLock {
	lock := &ReentryLock{}
	lock.cond = sync.NewCond(&lock.mu)
	return lock
}

func (lock *ReentryLock) Lock() {
	rid := goid.Get()
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.owner == rid {
		lock.depth++
		return
	}
	for lock.owner != 0 {
		lock.cond.Wait()
	}
	lock.owner = rid
	lock.depth = 1
}

func (lock *ReentryLock) Unlock() {
	rid := goid.Get()
	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.owner != rid || lock.depth == 0 {
		panic("unlock of unheld ReentryLock")
	}
	lock.depth--
	if lock.depth == 0 {
		lock.owner = 0
		lock.cond.Signal()
	}
}

// HeldByCurrent reports whether the calling goroutine owns the lock.
func (lock *ReentryLock) HeldByCurrent() bool {
	rid := goid.Get()
	lock.mu.Lock()
	defer lock.mu.Unlock()
	return lock.owner == rid
}

var _ sync.Locker = (*ReentryLock)(nil)
