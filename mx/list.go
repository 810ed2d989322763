package mx

import (
	"sync/atomic"

	"github.com/wilhasse/mxuser-go/ut"
)

// The process-wide registry of live lock objects, used for enumeration
// and diagnostic dumps. It holds non-owning back references only: a
// header must be removed before its object is destroyed. The registry is
// guarded by its own internal singleton lock, never by any client lock,
// so an object can dump itself without self-deadlock.
var (
	registrySlot atomic.Pointer[RecLock]
	registry     ut.List[*Header]
)

func registryLock() *RecLock {
	return GetOrCreate(&registrySlot)
}

// AddToRegistry links a header into the process-wide object list.
func AddToRegistry(header *Header) {
	if header == nil {
		return
	}
	l := registryLock()
	l.Acquire()
	header.node = registry.PushBack(header)
	l.Release()
}

// RemoveFromRegistry unlinks a header. Safe to call on a header that was
// never registered.
func RemoveFromRegistry(header *Header) {
	if header == nil || header.node == nil {
		return
	}
	l := registryLock()
	l.Acquire()
	registry.Remove(header.node)
	header.node = nil
	l.Release()
}

// RegisteredCount returns the number of live registered objects.
func RegisteredCount() int {
	l := registryLock()
	l.Acquire()
	n := registry.Len
	l.Release()
	return n
}

// ForEachHeader visits every registered header until fn returns false.
// The registry lock is held for the duration; fn must not create or
// destroy observability-enabled locks.
func ForEachHeader(fn func(*Header) bool) {
	if fn == nil {
		return
	}
	l := registryLock()
	l.Acquire()
	registry.Each(fn)
	l.Release()
}

// DumpAll renders the dump and statistics output of every registered
// object.
func DumpAll() []string {
	var lines []string
	ForEachHeader(func(h *Header) bool {
		if h.DumpFunc != nil {
			lines = append(lines, h.DumpFunc(h))
		}
		if h.StatsFunc != nil {
			lines = append(lines, h.StatsFunc(h))
		}
		return true
	})
	return lines
}
