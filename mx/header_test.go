package mx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeSignature(t *testing.T) {
	sig := MakeSignature('R', 'E', 'C', 'K')
	require.Equal(t, Signature(0x4b434552), sig)
	require.Equal(t, SigRecLock, sig)
	require.NotEqual(t, SigRecLock, SigCondVar)
}

func TestAllocIDConcurrentUnique(t *testing.T) {
	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	ids := make(chan uint32, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- AllocID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint32]bool)
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, workers*perWorker)
}

func TestHeaderIdent(t *testing.T) {
	h := &Header{
		Signature:  SigRecLock,
		Rank:       3,
		Name:       "acct",
		Identifier: 42,
	}
	s := h.Ident()
	require.Contains(t, s, `"acct"`)
	require.Contains(t, s, "id 42")
	require.Contains(t, s, "rank 3")

	var nilHeader *Header
	require.Equal(t, "<no header>", nilHeader.Ident())
}

func TestFatalSinkReplaceable(t *testing.T) {
	var gotHeader *Header
	var gotMsg string
	prev := SetFatalSink(func(h *Header, msg string) {
		gotHeader = h
		gotMsg = msg
	})
	defer SetFatalSink(prev)

	hdr := &Header{Name: "sinked"}
	fatalf(hdr, "boom %d", 7)
	require.Same(t, hdr, gotHeader)
	require.Equal(t, "boom 7", gotMsg)
}

func TestDumpAndPanicIncludesDump(t *testing.T) {
	hdr := &Header{
		Name:     "paniced",
		DumpFunc: func(h *Header) string { return "state-dump" },
	}
	defer func() {
		r := recover()
		require.NotNil(t, r)
		msg, ok := r.(string)
		require.True(t, ok)
		require.Contains(t, msg, `"paniced"`)
		require.Contains(t, msg, "state-dump")
	}()
	DumpAndPanic(hdr, "bad usage")
}
