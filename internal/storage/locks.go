package storage

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const lockStripes = 512

// stripedLock maps keys onto a fixed set of mutexes. Two keys may share a
// stripe, so a holder must never take a second lock from the same table.
type stripedLock struct {
	mu [lockStripes]sync.Mutex
}

func (l *stripedLock) lock(key []byte) func() {
	m := &l.mu[xxhash.Sum64(key)%lockStripes]
	m.Lock()
	return m.Unlock
}
