package mx

import stdsync "sync"

// LegacyBindings routes an older recursive-lock API through this library.
// The four slots mirror the legacy entry points; an older layer rebinds
// them to inject its own routing. Pure indirection at the boundary.
type LegacyBindings struct {
	LockRec                    func(*RecLock)
	UnlockRec                  func(*RecLock)
	TryLockRec                 func(*RecLock) bool
	IsLockedByCurrentThreadRec func(*RecLock) bool
}

var (
	legacyMu stdsync.Mutex
	legacy   = DefaultBindings()
)

// DefaultBindings routes all four slots straight through the lock core.
func DefaultBindings() LegacyBindings {
	return LegacyBindings{
		LockRec:    func(l *RecLock) { l.Acquire() },
		UnlockRec:  func(l *RecLock) { l.Release() },
		TryLockRec: func(l *RecLock) bool { return l.TryAcquire() },
		IsLockedByCurrentThreadRec: func(l *RecLock) bool {
			return l.IsOwner()
		},
	}
}

// Rebind installs legacy bindings and returns the previous set. Unset
// slots fall back to the defaults.
func Rebind(b LegacyBindings) LegacyBindings {
	defaults := DefaultBindings()
	if b.LockRec == nil {
		b.LockRec = defaults.LockRec
	}
	if b.UnlockRec == nil {
		b.UnlockRec = defaults.UnlockRec
	}
	if b.TryLockRec == nil {
		b.TryLockRec = defaults.TryLockRec
	}
	if b.IsLockedByCurrentThreadRec == nil {
		b.IsLockedByCurrentThreadRec = defaults.IsLockedByCurrentThreadRec
	}
	legacyMu.Lock()
	prev := legacy
	legacy = b
	legacyMu.Unlock()
	return prev
}

// Bindings returns the currently installed legacy bindings.
func Bindings() LegacyBindings {
	legacyMu.Lock()
	defer legacyMu.Unlock()
	return legacy
}
