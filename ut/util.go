package ut

import "time"

var baseTime = time.Now()

// NowNs returns nanoseconds on a process-local monotonic clock.
func NowNs() uint64 {
	return uint64(time.Since(baseTime))
}

// SinceNs returns the nanoseconds elapsed since a NowNs reading.
func SinceNs(start uint64) uint64 {
	now := NowNs()
	if now < start {
		return 0
	}
	return now - start
}

// TimestampString formats the current time as YYMMDD HH:MM:SS.
func TimestampString() string {
	return time.Now().Format("060102 15:04:05")
}
