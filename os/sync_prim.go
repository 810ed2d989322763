package os

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrBusy reports that a non-blocking acquire found the mutex held.
// Backends must return it (possibly wrapped) for the busy case and
// distinct errors for anything else.
var ErrBusy = errors.New("os: mutex busy")

// ErrNotHeld reports a release of a mutex that is not held.
var ErrNotHeld = errors.New("os: mutex not held")

// Backend selects a native mutex implementation.
type Backend int

const (
	// BackendFast is a sync.Mutex with non-blocking TryLock.
	BackendFast Backend = iota
	// BackendChan is a one-slot channel semaphore.
	BackendChan
)

// DefaultBackend is the process-wide backend for new native mutexes.
var DefaultBackend = BackendFast

// NativeMutex is the contract shared by all backends. TryAcquire returns
// nil on success, ErrBusy when the mutex is held, and any other error for
// a backend failure.
type NativeMutex interface {
	Acquire() error
	TryAcquire() error
	Release() error
	Destroy() error
}

// NativeMutexCount tracks live native mutexes.
var NativeMutexCount uint64

// NewNativeMutex constructs a mutex for the given backend.
func NewNativeMutex(backend Backend) (NativeMutex, error) {
	switch backend {
	case BackendFast:
		atomic.AddUint64(&NativeMutexCount, 1)
		return &FastMutex{}, nil
	case BackendChan:
		atomic.AddUint64(&NativeMutexCount, 1)
		return &ChanMutex{ch: make(chan struct{}, 1)}, nil
	default:
		return nil, fmt.Errorf("os: unknown mutex backend %d", backend)
	}
}

// FastMutex backs a native mutex with sync.Mutex.
type FastMutex struct {
	mu sync.Mutex
}

// Acquire blocks until the mutex is held.
func (m *FastMutex) Acquire() error {
	m.mu.Lock()
	return nil
}

// TryAcquire attempts the mutex without blocking.
func (m *FastMutex) TryAcquire() error {
	if m.mu.TryLock() {
		return nil
	}
	return ErrBusy
}

// Release drops the mutex.
func (m *FastMutex) Release() error {
	m.mu.Unlock()
	return nil
}

// Destroy releases backend resources.
func (m *FastMutex) Destroy() error {
	atomic.AddUint64(&NativeMutexCount, ^uint64(0))
	return nil
}

// ChanMutex backs a native mutex with a one-slot channel semaphore.
type ChanMutex struct {
	ch chan struct{}
}

// Acquire blocks until the mutex is held.
func (m *ChanMutex) Acquire() error {
	m.ch <- struct{}{}
	return nil
}

// TryAcquire attempts the mutex without blocking.
func (m *ChanMutex) TryAcquire() error {
	select {
	case m.ch <- struct{}{}:
		return nil
	default:
		return ErrBusy
	}
}

// Release drops the mutex.
func (m *ChanMutex) Release() error {
	select {
	case <-m.ch:
		return nil
	default:
		return ErrNotHeld
	}
}

// Destroy releases backend resources. Destroying a held mutex fails and
// leaves it held.
func (m *ChanMutex) Destroy() error {
	if len(m.ch) != 0 {
		return errors.New("os: destroy of held mutex")
	}
	atomic.AddUint64(&NativeMutexCount, ^uint64(0))
	return nil
}
