package mx

import (
	"sync/atomic"

	"github.com/wilhasse/mxuser-go/os"
)

// GetOrCreate returns the recursive lock published in slot, constructing
// and publishing one on first use. Construction is race free: the first
// CAS into the empty slot wins, losers destroy their freshly built
// instance, and no caller ever observes a partially constructed lock.
//
// Internal locks created this way carry no observability; the library
// uses them for its own bookkeeping and deliberately avoids a mandatory
// process-start hook.
func GetOrCreate(slot *atomic.Pointer[RecLock]) *RecLock {
	if l := slot.Load(); l != nil {
		return l
	}
	fresh, err := NewRecLock("mxInternalSingleton", RankUnranked,
		Config{Backend: os.DefaultBackend})
	if err != nil {
		fatalf(nil, "singleton init: %v", err)
		return nil
	}
	if slot.CompareAndSwap(nil, fresh) {
		return fresh
	}
	_ = fresh.Destroy()
	return slot.Load()
}
