package mx

import "github.com/wilhasse/mxuser-go/thr"

// AcquisitionTracking validates lock ordering before an acquire. With
// checkRank set, acquiring a ranked lock while holding any lock of equal
// or higher rank is a fatal usage error: ranked locks must be taken in
// strictly increasing rank order. It runs before the native acquire so
// that an ordering violation is reported rather than parking the
// goroutine in the deadlock the ordering exists to prevent. Advisory
// instrumentation only; it never touches the lock's own state.
func AcquisitionTracking(header *Header, checkRank bool) {
	if header == nil || !checkRank || header.Rank == RankUnranked {
		return
	}
	for _, held := range thr.HeldLocks() {
		if held.Rank == int64(RankUnranked) {
			continue
		}
		if held.Rank >= int64(header.Rank) {
			fatalf(header,
				"rank violation: acquiring rank %d while holding %q (rank %d)",
				header.Rank, held.Name, held.Rank)
			return
		}
	}
}

// AcquisitionRecord marks the lock as held by the calling goroutine.
// Called after a successful acquire.
func AcquisitionRecord(header *Header) {
	if header == nil {
		return
	}
	thr.Push(thr.Held{
		Rank: int64(header.Rank),
		Name: header.Name,
		ID:   header.Identifier,
	})
}

// ReleaseTracking removes the lock from the calling goroutine's held
// list. Releasing a lock not recorded as held is a fatal usage error.
func ReleaseTracking(header *Header) {
	if header == nil {
		return
	}
	if !thr.Pop(header.Identifier) {
		fatalf(header, "release of lock not recorded as held")
	}
}
