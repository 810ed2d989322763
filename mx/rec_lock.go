package mx

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/wilhasse/mxuser-go/os"
	"github.com/wilhasse/mxuser-go/ut"
)

// MaxRecDepth bounds same-thread reentrancy of a RecLock.
const MaxRecDepth = 16

// RecLock is a portable recursive lock: a native mutex plus same-thread
// reentrancy bookkeeping. The owner is stored atomically so any thread
// may test ownership; the count is touched only by the thread that holds
// the native mutex, whose own serialization orders the handoff.
//
// A recursive lock underlies every lock type in this library because it
// can be used directly for recursive semantics, while non-recursive
// flavors catch the recursion and report it rather than deadlock.
type RecLock struct {
	native os.NativeMutex
	count  uint32
	owner  atomic.Int64 // os.ThreadID; os.NoThread when unheld

	cfg Config
	hdr *Header

	acq       *AcquisitionStats // nil unless observability
	rel       *ReleaseStats     // nil unless observability
	heldSince uint64            // ns; valid while count > 0

	// Failed tries happen without holding the lock, so they cannot feed
	// the serialized acquisition aggregate and get an atomic counter.
	tryFails atomic.Uint64
}

// NewRecLock constructs and initializes a recursive lock.
func NewRecLock(name string, rank Rank, cfg Config) (*RecLock, error) {
	l := &RecLock{}
	if err := l.Init(name, rank, cfg); err != nil {
		return nil, err
	}
	return l, nil
}

// Init constructs the native mutex and resets ownership state. On error
// the lock must not be used. Init and Destroy are the only RecLock
// operations that report errors to the caller.
func (l *RecLock) Init(name string, rank Rank, cfg Config) error {
	native := cfg.Native
	if native == nil {
		var err error
		native, err = os.NewNativeMutex(cfg.Backend)
		if err != nil {
			return fmt.Errorf("mx: init %q: %w", name, err)
		}
	}
	l.native = native
	l.count = 0
	l.owner.Store(int64(os.NoThread))
	l.cfg = cfg
	l.hdr = &Header{
		Signature:  SigRecLock,
		Rank:       rank,
		Name:       name,
		Identifier: AllocID(),
		DumpFunc:   l.dump,
	}
	if cfg.Observability {
		l.acq = &AcquisitionStats{}
		l.acq.SetUp()
		l.rel = &ReleaseStats{}
		l.rel.SetUp()
		l.hdr.StatsFunc = l.dumpStats
		AddToRegistry(l.hdr)
	}
	return nil
}

// Destroy tears down the lock. Destroying a held lock is a usage error.
func (l *RecLock) Destroy() error {
	if l.count != 0 && !l.cfg.Unchecked {
		l.fatal("destroy of held lock (count %d)", l.count)
		return nil
	}
	if l.cfg.Observability {
		RemoveFromRegistry(l.hdr)
		l.acq.TearDown()
		l.rel.TearDown()
		l.acq = nil
		l.rel = nil
	}
	if err := l.native.Destroy(); err != nil {
		if l.cfg.StrictNative {
			l.fatal("native destroy: %v", err)
		}
		return fmt.Errorf("mx: destroy %q: %w", l.hdr.Name, err)
	}
	return nil
}

// Acquire takes the lock, blocking if another thread holds it. It reports
// whether the acquisition was contended. A thread that already owns the
// lock reenters without touching the native mutex.
func (l *RecLock) Acquire() bool {
	self := os.CurrentThread()
	if os.ThreadEq(os.ThreadID(l.owner.Load()), self) {
		if l.count >= MaxRecDepth && !l.cfg.Unchecked {
			l.fatal("recursion depth %d at limit %d", l.count, MaxRecDepth)
			return false
		}
		l.count++
		if l.acq != nil {
			l.acq.Sample(true, false, 0)
		}
		return false
	}

	// Rank is validated before touching the native mutex: an ordering
	// violation must be reported, not parked on.
	if l.cfg.Observability {
		AcquisitionTracking(l.hdr, l.cfg.CheckRank)
	}

	var start uint64
	if l.acq != nil {
		start = ut.NowNs()
	}

	// Try first: the uncontended path stays cheap and a failed try is
	// what marks the acquisition contended.
	contended := false
	if err := l.native.TryAcquire(); err != nil {
		if !errors.Is(err, os.ErrBusy) && l.cfg.StrictNative {
			l.fatal("native try-acquire: %v", err)
		}
		if err := l.native.Acquire(); err != nil && l.cfg.StrictNative {
			l.fatal("native acquire: %v", err)
		}
		contended = true
	}

	l.owner.Store(int64(self))
	l.count = 1
	l.heldSince = ut.NowNs()
	atomic.AddUint64(&AcquireCount, 1)
	if l.cfg.Observability {
		AcquisitionRecord(l.hdr)
	}
	if l.acq != nil {
		l.acq.Sample(true, contended, ut.SinceNs(start))
	}
	return contended
}

// TryAcquire attempts the lock without blocking and reports whether it was
// acquired. The owning thread reenters exactly as with Acquire. A busy
// lock is a normal result, not an error.
func (l *RecLock) TryAcquire() bool {
	self := os.CurrentThread()
	if os.ThreadEq(os.ThreadID(l.owner.Load()), self) {
		if l.count >= MaxRecDepth && !l.cfg.Unchecked {
			l.fatal("recursion depth %d at limit %d", l.count, MaxRecDepth)
			return false
		}
		l.count++
		if l.acq != nil {
			l.acq.Sample(true, false, 0)
		}
		return true
	}

	if l.tryAcquireFail() {
		if l.cfg.Observability {
			l.tryFails.Add(1)
		}
		return false
	}

	if l.cfg.Observability {
		AcquisitionTracking(l.hdr, l.cfg.CheckRank)
	}

	var start uint64
	if l.acq != nil {
		start = ut.NowNs()
	}
	if err := l.native.TryAcquire(); err != nil {
		if !errors.Is(err, os.ErrBusy) && l.cfg.StrictNative {
			l.fatal("native try-acquire: %v", err)
		}
		if l.cfg.Observability {
			l.tryFails.Add(1)
		}
		return false
	}

	l.owner.Store(int64(self))
	l.count = 1
	l.heldSince = ut.NowNs()
	atomic.AddUint64(&AcquireCount, 1)
	if l.cfg.Observability {
		AcquisitionRecord(l.hdr)
	}
	if l.acq != nil {
		l.acq.Sample(true, false, ut.SinceNs(start))
	}
	return true
}

// Release drops one level of ownership. The outermost release clears the
// owner and releases the native mutex. Releasing a lock the calling
// thread does not hold is a usage error.
func (l *RecLock) Release() {
	if !l.cfg.Unchecked {
		if l.count == 0 {
			l.fatal("release of unheld lock")
			return
		}
		if l.count > MaxRecDepth {
			l.fatal("corrupted count %d exceeds limit %d", l.count, MaxRecDepth)
			return
		}
		if !os.ThreadEq(os.ThreadID(l.owner.Load()), os.CurrentThread()) {
			l.fatal("release by thread %d, held by thread %d",
				os.CurrentThread(), l.owner.Load())
			return
		}
	}
	if l.rel != nil && l.count == 1 {
		l.rel.Sample(ut.SinceNs(l.heldSince))
	}
	l.count--
	if l.count != 0 {
		return
	}
	l.owner.Store(int64(os.NoThread))
	if l.cfg.Observability {
		ReleaseTracking(l.hdr)
	}
	atomic.AddUint64(&ReleaseCount, 1)
	if err := l.native.Release(); err != nil && l.cfg.StrictNative {
		l.fatal("native release: %v", err)
	}
}

// Count returns the current reference count.
func (l *RecLock) Count() uint32 {
	return l.count
}

// IsOwner reports whether the calling thread holds the lock.
func (l *RecLock) IsOwner() bool {
	return os.ThreadEq(os.ThreadID(l.owner.Load()), os.CurrentThread())
}

// Header returns the lock's identity block.
func (l *RecLock) Header() *Header {
	return l.hdr
}

func (l *RecLock) fatal(format string, args ...any) {
	fatalf(l.hdr, format, args...)
}

func (l *RecLock) dump(h *Header) string {
	return fmt.Sprintf("RecLock %s count=%d owner=%d",
		h.Ident(), l.count, l.owner.Load())
}

func (l *RecLock) dumpStats(h *Header) string {
	if l.acq == nil {
		return ""
	}
	out := l.acq.Dump(h) + "\n" + l.rel.Dump(h)
	if fails := l.tryFails.Load(); fails != 0 {
		out += fmt.Sprintf("\n%s failed tries=%d", h.Ident(), fails)
	}
	if ratio, isHot, _ := l.acq.Kitchen(); isHot {
		out += fmt.Sprintf("\n%s hot: contention ratio %.3f", h.Ident(), ratio)
	}
	return out
}

// TryFails returns the number of failed try-acquires, forced or real.
func (l *RecLock) TryFails() uint64 {
	return l.tryFails.Load()
}
