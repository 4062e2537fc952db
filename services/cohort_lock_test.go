package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCohortLocksSerializeSameKey(t *testing.T) {
	locks := newCohortLocks()
	key := cohortKey(1, 2, "Principal")
	assert.Equal(t, "1/2/Principal", key)

	unlock := locks.Lock(key)
	acquired := make(chan struct{})
	go func() {
		release := locks.Lock(key)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired a locked cohort")
	case <-time.After(50 * time.Millisecond):
	}

	other := locks.Lock(cohortKey(1, 3, "Principal"))
	other()

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("cohort lock was never released")
	}
	assert.Eventually(t, func() bool { return locks.size() == 0 }, time.Second, 5*time.Millisecond)
}
