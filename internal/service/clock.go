package service

import (
	"hash/fnv"
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// nextStamp returns a millisecond timestamp strictly after prev, even when the
// clock has not moved or went backwards.
func nextStamp(clock Clock, prev time.Time) time.Time {
	now := clock.Now().Truncate(time.Millisecond)
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}

const lockStripes = 64

// ownerLocks serializes mutations per owner key. Keys share a fixed set of
// mutexes, so two owners may occasionally wait on each other.
type ownerLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *ownerLocks) lock(ownerKey string) func() {
	m := &l.stripes[stripe(ownerKey)]
	m.Lock()
	return m.Unlock
}

func stripe(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % lockStripes
}
