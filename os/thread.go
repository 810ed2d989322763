package os

import "github.com/petermattis/goid"

// ThreadID identifies a goroutine.
type ThreadID int64

// NoThread is the explicit "no owner" thread id.
const NoThread ThreadID = -1

// CurrentThread returns the calling goroutine's id.
func CurrentThread() ThreadID {
	return ThreadID(goid.Get())
}

// ThreadEq compares thread ids for equality.
func ThreadEq(a, b ThreadID) bool {
	return a == b
}
