package mx

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Histo is a log10-bucketed latency histogram: one bucket per decade
// starting at a minimum tracked value, with explicit underflow and
// overflow accounting. Every non-negative sample lands in exactly one of
// underflow, a decade bucket, or overflow.
type Histo struct {
	typeName string
	minValue uint64
	decades  uint32

	counts  []uint64
	callers []uintptr // most recent caller per bucket; 0 when unknown

	underflow    uint64
	overflow     uint64
	totalSamples uint64
}

// HistoSetUp allocates a histogram covering decades powers of ten
// starting at minValue. A zero minValue tracks from 1; zero decades get
// a single bucket.
func HistoSetUp(typeName string, minValue uint64, decades uint32) *Histo {
	if minValue == 0 {
		minValue = 1
	}
	if decades == 0 {
		decades = 1
	}
	return &Histo{
		typeName: typeName,
		minValue: minValue,
		decades:  decades,
		counts:   make([]uint64, decades),
		callers:  make([]uintptr, decades),
	}
}

// Sample adds a value, attributing it to caller when non-zero. The bucket
// index is floor(log10(value/minValue)), clipped into the decade range.
func (h *Histo) Sample(value uint64, caller uintptr) {
	h.totalSamples++
	if value < h.minValue {
		h.underflow++
		return
	}
	index := uint32(0)
	for v := value / h.minValue; v >= 10; v /= 10 {
		index++
	}
	if index >= h.decades {
		h.overflow++
		return
	}
	h.counts[index]++
	if caller != 0 {
		h.callers[index] = caller
	}
}

// TotalSamples returns the number of samples fed to the histogram.
func (h *Histo) TotalSamples() uint64 {
	return h.totalSamples
}

// Counts returns the per-decade bucket counts plus underflow and overflow.
func (h *Histo) Counts() (buckets []uint64, underflow, overflow uint64) {
	buckets = make([]uint64, len(h.counts))
	copy(buckets, h.counts)
	return buckets, h.underflow, h.overflow
}

// Dump renders bucket counts against the owning object's identity.
func (h *Histo) Dump(header *Header) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s histo %s: samples=%d underflow=%d overflow=%d",
		header.Ident(), h.typeName, h.totalSamples, h.underflow, h.overflow)
	low := h.minValue
	for i, count := range h.counts {
		fmt.Fprintf(&b, "\n  [%d, %d): %d", low, low*10, count)
		if h.callers[i] != 0 {
			fmt.Fprintf(&b, " caller=0x%x", h.callers[i])
		}
		low *= 10
	}
	return b.String()
}

// TearDown frees bucket storage.
func (h *Histo) TearDown() {
	h.counts = nil
	h.callers = nil
}

// ForceHisto publishes a new histogram into slot exactly once. Racing
// losers discard their instance and every caller observes the winner.
func ForceHisto(slot *atomic.Pointer[Histo], typeName string, minValue uint64, decades uint32) *Histo {
	if h := slot.Load(); h != nil {
		return h
	}
	fresh := HistoSetUp(typeName, minValue, decades)
	if slot.CompareAndSwap(nil, fresh) {
		return fresh
	}
	fresh.TearDown()
	return slot.Load()
}
