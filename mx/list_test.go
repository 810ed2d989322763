package mx

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryTracksObservableLocks(t *testing.T) {
	before := RegisteredCount()

	l, err := NewRecLock("registered", RankUnranked, Config{Observability: true})
	require.NoError(t, err)
	require.Equal(t, before+1, RegisteredCount())

	found := false
	ForEachHeader(func(h *Header) bool {
		if h == l.Header() {
			found = true
			return false
		}
		return true
	})
	require.True(t, found)

	require.NoError(t, l.Destroy())
	require.Equal(t, before, RegisteredCount(), "unlinked before destroy")
}

func TestRegistrySkipsPlainLocks(t *testing.T) {
	before := RegisteredCount()
	l, err := NewRecLock("plain", RankUnranked, Config{})
	require.NoError(t, err)
	require.Equal(t, before, RegisteredCount())
	require.NoError(t, l.Destroy())
}

func TestDumpAllRendersIdentityAndStats(t *testing.T) {
	l, err := NewRecLock("dumpme", RankUnranked, Config{Observability: true})
	require.NoError(t, err)
	l.Acquire()
	l.Release()

	lines := DumpAll()
	joined := strings.Join(lines, "\n")
	require.Contains(t, joined, `"dumpme"`)
	require.Contains(t, joined, "attempts=1")

	require.NoError(t, l.Destroy())
}

func TestRegistryConcurrentAddRemove(t *testing.T) {
	before := RegisteredCount()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				l, err := NewRecLock(fmt.Sprintf("w%d-%d", i, j), RankUnranked,
					Config{Observability: true})
				if err != nil {
					t.Error(err)
					return
				}
				l.Acquire()
				l.Release()
				if err := l.Destroy(); err != nil {
					t.Error(err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, before, RegisteredCount())
}

func TestRemoveFromRegistryUnregistered(t *testing.T) {
	require.NotPanics(t, func() {
		RemoveFromRegistry(nil)
		RemoveFromRegistry(&Header{Name: "never registered"})
	})
}
