package services

import (
	"fmt"
	"sync"
)

// cohortLocks hands out one mutex per key. Entries are reference counted and dropped
// once nobody holds or waits on them.
type cohortLocks struct {
	mu    sync.Mutex
	locks map[string]*cohortLock
}

type cohortLock struct {
	mu   sync.Mutex
	refs int
}

func newCohortLocks() *cohortLocks {
	return &cohortLocks{locks: make(map[string]*cohortLock)}
}

func cohortKey(tournamentID, round int, phase string) string {
	return fmt.Sprintf("%d/%d/%s", tournamentID, round, phase)
}

// Lock blocks until key is free and returns the matching unlock function.
func (c *cohortLocks) Lock(key string) func() {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &cohortLock{}
		c.locks[key] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, key)
		}
		c.mu.Unlock()
	}
}

func (c *cohortLocks) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}
