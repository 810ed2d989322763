package mx

import (
	"fmt"
	stdsync "sync"

	"github.com/wilhasse/mxuser-go/os"
)

// FatalFunc reports an unrecoverable usage or native error. It must not
// return; the default sink panics after dumping the offending object.
type FatalFunc func(header *Header, msg string)

var (
	fatalMu   stdsync.Mutex
	fatalSink FatalFunc = DumpAndPanic
)

// SetFatalSink installs the process diagnostic sink and returns the
// previous one. A test harness may install a sink that unwinds instead of
// terminating the process.
func SetFatalSink(fn FatalFunc) FatalFunc {
	fatalMu.Lock()
	defer fatalMu.Unlock()
	prev := fatalSink
	if fn == nil {
		fn = DumpAndPanic
	}
	fatalSink = fn
	return prev
}

// DumpAndPanic renders the offending object's identity and state, then
// panics.
func DumpAndPanic(header *Header, msg string) {
	out := fmt.Sprintf("mx: %s: %s", header.Ident(), msg)
	if header != nil && header.DumpFunc != nil {
		out += "\n" + header.DumpFunc(header)
	}
	panic(out)
}

func fatalf(header *Header, format string, args ...any) {
	fatalMu.Lock()
	sink := fatalSink
	fatalMu.Unlock()
	sink(header, fmt.Sprintf(format, args...))
}

// Config fixes a lock's capabilities at construction.
//
// Observability enables per-lock statistics, held-lock tracking, registry
// membership and fault injection. CheckRank adds rank-order validation on
// first acquisition. StrictNative makes any non-busy native mutex failure
// on the acquire and release paths fatal; when clear those failures are
// ignored there, an unchecked fast path, and only Init and Destroy report
// them. Unchecked disables usage-error validation (recursion depth,
// release without ownership, destroy while held); with it set those
// misuses corrupt the lock silently.
type Config struct {
	Observability bool
	CheckRank     bool
	StrictNative  bool
	Unchecked     bool
	Backend       os.Backend

	// Native, when non-nil, supplies the native mutex directly and
	// Backend is ignored. Lets tests inject failing backends.
	Native os.NativeMutex

	// ForceFail, when set on an observability-enabled lock, is consulted
	// on try-acquire paths; returning true forces the attempt to fail
	// without touching the native mutex. Overrides the process-wide
	// predicate installed by SetTryAcquireForceFail.
	ForceFail ForceFailFunc
}
