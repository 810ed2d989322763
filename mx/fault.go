package mx

import stdsync "sync"

// ForceFailFunc decides whether a named lock's try-acquire should be
// forced to fail. Used by tests to exercise contention handling without
// real thread races.
type ForceFailFunc func(name string) bool

var (
	forceFailMu stdsync.Mutex
	forceFail   ForceFailFunc
)

// SetTryAcquireForceFail installs the process-wide fault-injection
// predicate and returns the previous one. Pass nil to clear. The
// predicate is consulted only on try-acquire paths of locks built with
// observability.
func SetTryAcquireForceFail(fn ForceFailFunc) ForceFailFunc {
	forceFailMu.Lock()
	defer forceFailMu.Unlock()
	prev := forceFail
	forceFail = fn
	return prev
}

// tryAcquireFail reports whether fault injection fails this attempt. The
// native mutex is never touched on a forced failure.
func (l *RecLock) tryAcquireFail() bool {
	if !l.cfg.Observability {
		return false
	}
	if l.cfg.ForceFail != nil {
		return l.cfg.ForceFail(l.hdr.Name)
	}
	forceFailMu.Lock()
	fn := forceFail
	forceFailMu.Unlock()
	return fn != nil && fn(l.hdr.Name)
}
