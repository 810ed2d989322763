package mx

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newCondVarPair(t *testing.T) (*RecLock, *CondVar) {
	t.Helper()
	l, err := NewRecLock(t.Name(), RankUnranked, Config{})
	require.NoError(t, err)
	return l, NewCondVar(l.Header(), l)
}

func TestCondVarSignal(t *testing.T) {
	l, cv := newCondVarPair(t)

	woke := make(chan bool)
	go func() {
		l.Acquire()
		timedOut := cv.Wait(WaitForever)
		l.Release()
		woke <- timedOut
	}()

	select {
	case <-woke:
		t.Fatalf("waiter woke without a signal")
	case <-time.After(50 * time.Millisecond):
	}

	// The waiter released the lock while parked.
	l.Acquire()
	cv.Signal()
	l.Release()

	select {
	case timedOut := <-woke:
		require.False(t, timedOut)
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("signal did not wake the waiter")
	}
	cv.Destroy()
	require.NoError(t, l.Destroy())
}

func TestCondVarTimeout(t *testing.T) {
	l, cv := newCondVarPair(t)

	l.Acquire()
	start := time.Now()
	timedOut := cv.Wait(30 * time.Millisecond)
	require.True(t, timedOut)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	require.True(t, l.IsOwner(), "lock reacquired after timeout")
	require.Equal(t, uint32(1), l.Count())
	l.Release()

	cv.Destroy()
	require.NoError(t, l.Destroy())
}

func TestCondVarZeroTimeoutPolls(t *testing.T) {
	l, cv := newCondVarPair(t)

	l.Acquire()
	require.True(t, cv.Wait(0), "no signal pending: immediate timeout")
	require.True(t, l.IsOwner())
	l.Release()

	cv.Destroy()
	require.NoError(t, l.Destroy())
}

func TestCondVarBroadcast(t *testing.T) {
	l, cv := newCondVarPair(t)

	const waiters = 4
	var wg sync.WaitGroup
	woke := make(chan bool, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Acquire()
			timedOut := cv.Wait(WaitForever)
			l.Release()
			woke <- timedOut
		}()
	}

	// Let every waiter park.
	require.Eventually(t, func() bool {
		cv.mu.Lock()
		n := cv.waiters.Len
		cv.mu.Unlock()
		return n == waiters
	}, time.Second, time.Millisecond)

	l.Acquire()
	cv.Broadcast()
	l.Release()
	wg.Wait()

	for i := 0; i < waiters; i++ {
		require.False(t, <-woke)
	}
	cv.Destroy()
	require.NoError(t, l.Destroy())
}

func TestCondVarWaitRequiresTopLevelHold(t *testing.T) {
	l, cv := newCondVarPair(t)

	require.Panics(t, func() { cv.Wait(WaitForever) }, "not held at all")

	l.Acquire()
	l.Acquire()
	require.Panics(t, func() { cv.Wait(WaitForever) }, "recursive hold")
	l.Release()
	l.Release()

	cv.Destroy()
	require.NoError(t, l.Destroy())
}

func TestCondVarSignalNoWaiters(t *testing.T) {
	l, cv := newCondVarPair(t)
	require.NotPanics(t, func() {
		cv.Signal()
		cv.Broadcast()
	})
	cv.Destroy()
	require.NoError(t, l.Destroy())
}
