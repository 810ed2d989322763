package mx

import (
	"fmt"
	"sync/atomic"

	"github.com/wilhasse/mxuser-go/ut"
)

// Rank orders lock acquisition for debug checking. Locks must be acquired
// in strictly increasing rank order within a goroutine.
type Rank int64

// RankUnranked exempts a lock from ordering checks.
const RankUnranked Rank = -1

// Signature is a four-byte tag identifying a lock-like object's type.
type Signature uint32

// MakeSignature builds a signature from four bytes.
func MakeSignature(a, b, c, d byte) Signature {
	return Signature(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// Signatures of the object types defined by this package.
var (
	SigRecLock = MakeSignature('R', 'E', 'C', 'K')
	SigCondVar = MakeSignature('C', 'V', 'A', 'R')
)

// Header is the common identity block embedded in every lock-like object.
// DumpFunc renders the object's state; StatsFunc, set only on objects built
// with observability, renders its statistics.
type Header struct {
	Signature  Signature
	Rank       Rank
	Name       string
	Identifier uint32
	DumpFunc   func(*Header) string
	StatsFunc  func(*Header) string

	node *ut.ListNode[*Header] // registry linkage; nil when unregistered
}

// Ident renders the header's identity for diagnostics.
func (h *Header) Ident() string {
	if h == nil {
		return "<no header>"
	}
	return fmt.Sprintf("%q (sig 0x%08x id %d rank %d)",
		h.Name, uint32(h.Signature), h.Identifier, int64(h.Rank))
}

var idCounter uint32

// AllocID returns a process-unique object identifier. Safe under
// concurrent object creation.
func AllocID() uint32 {
	return atomic.AddUint32(&idCounter, 1)
}
