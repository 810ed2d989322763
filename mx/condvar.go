package mx

import (
	stdsync "sync"
	"time"

	"github.com/wilhasse/mxuser-go/ut"
)

// WaitForever blocks a condition wait indefinitely. A zero timeout polls
// without waiting; positive timeouts bound the wait.
const WaitForever time.Duration = -1

// CondVar couples a condition variable to the header and recursive lock
// it is used with. Waiters park on per-waiter channels so that timeouts
// and wakeups cannot be lost.
type CondVar struct {
	hdr  *Header
	lock *RecLock

	mu      stdsync.Mutex
	waiters ut.List[chan struct{}]
}

// NewCondVar associates a new condition variable with the owning header
// and the lock it will be used with.
func NewCondVar(header *Header, lock *RecLock) *CondVar {
	return &CondVar{hdr: header, lock: lock}
}

// Wait atomically releases the lock, blocks until signaled or the timeout
// elapses, then reacquires the lock before returning. It reports whether
// the wait ended by timeout. The caller must hold the lock at count 1;
// waiting with a recursive hold is a fatal usage error.
func (cv *CondVar) Wait(timeout time.Duration) bool {
	l := cv.lock
	if !l.IsOwner() || l.Count() != 1 {
		fatalf(cv.hdr, "condition wait without top-level lock hold (count %d)",
			l.Count())
		return false
	}

	ch := make(chan struct{})
	cv.mu.Lock()
	node := cv.waiters.PushBack(ch)
	cv.mu.Unlock()
	l.Release()

	timedOut := false
	switch {
	case timeout < 0:
		<-ch
	case timeout == 0:
		select {
		case <-ch:
		default:
			timedOut = true
		}
	default:
		timer := time.NewTimer(timeout)
		select {
		case <-ch:
			timer.Stop()
		case <-timer.C:
			timedOut = true
		}
	}

	if timedOut {
		cv.mu.Lock()
		select {
		case <-ch:
			// Signaled between the timeout firing and the unlink.
			timedOut = false
		default:
			cv.waiters.Remove(node)
		}
		cv.mu.Unlock()
	}

	l.Acquire()
	return timedOut
}

// Signal wakes one waiter, if any.
func (cv *CondVar) Signal() {
	cv.mu.Lock()
	if ch, ok := cv.waiters.PopFront(); ok {
		close(ch)
	}
	cv.mu.Unlock()
}

// Broadcast wakes every waiter.
func (cv *CondVar) Broadcast() {
	cv.mu.Lock()
	for {
		ch, ok := cv.waiters.PopFront()
		if !ok {
			break
		}
		close(ch)
	}
	cv.mu.Unlock()
}

// Destroy tears down the condition variable. Destroying it with waiters
// parked is a fatal usage error.
func (cv *CondVar) Destroy() {
	cv.mu.Lock()
	n := cv.waiters.Len
	cv.mu.Unlock()
	if n != 0 {
		fatalf(cv.hdr, "destroy of condition variable with %d waiters", n)
	}
}
