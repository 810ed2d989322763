package thr

import (
	stdsync "sync"

	"github.com/wilhasse/mxuser-go/os"
)

// Held records one lock currently held by a goroutine.
type Held struct {
	Rank int64
	Name string
	ID   uint32
}

type localState struct {
	id   os.ThreadID
	held []Held
}

var (
	localMu  stdsync.Mutex
	localMap map[os.ThreadID]*localState
)

// Push records a newly acquired lock for the current goroutine.
func Push(h Held) {
	id := os.CurrentThread()
	localMu.Lock()
	defer localMu.Unlock()
	if localMap == nil {
		localMap = make(map[os.ThreadID]*localState)
	}
	local := localMap[id]
	if local == nil {
		local = &localState{id: id}
		localMap[id] = local
	}
	local.held = append(local.held, h)
}

// Pop removes the most recent record with the given lock id for the
// current goroutine. It reports whether a record was found.
func Pop(lockID uint32) bool {
	id := os.CurrentThread()
	localMu.Lock()
	defer localMu.Unlock()
	local := localMap[id]
	if local == nil {
		return false
	}
	for i := len(local.held) - 1; i >= 0; i-- {
		if local.held[i].ID == lockID {
			local.held = append(local.held[:i], local.held[i+1:]...)
			if len(local.held) == 0 {
				delete(localMap, id)
			}
			return true
		}
	}
	return false
}

// HeldLocks returns a snapshot of the locks held by the current goroutine,
// in acquisition order.
func HeldLocks() []Held {
	id := os.CurrentThread()
	localMu.Lock()
	defer localMu.Unlock()
	local := localMap[id]
	if local == nil {
		return nil
	}
	out := make([]Held, len(local.held))
	copy(out, local.held)
	return out
}

// HeldCount returns the number of locks held by the current goroutine.
func HeldCount() int {
	id := os.CurrentThread()
	localMu.Lock()
	defer localMu.Unlock()
	local := localMap[id]
	if local == nil {
		return 0
	}
	return len(local.held)
}

// Reset clears all per-goroutine state. Test helper.
func Reset() {
	localMu.Lock()
	localMap = nil
	localMu.Unlock()
}
