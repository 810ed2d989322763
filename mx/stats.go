package mx

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// Stat class labels used in dumps.
const (
	StatClassAcquisition = "a"
	StatClassHeld        = "h"
)

// Kitchen heuristic thresholds: a lock is hot when at least
// kitchenMinSuccesses acquisitions have seen a contention ratio of
// kitchenHotRatio or more; logging additionally requires
// kitchenLogContentionNs of cumulative contention.
const (
	kitchenMinSuccesses    = 100
	kitchenHotRatio        = 0.20
	kitchenLogContentionNs = uint64(time.Millisecond)
)

// Process-wide acquire/release totals for status export.
var (
	AcquireCount uint64
	ReleaseCount uint64
)

// ResetCounters zeroes the process-wide counters.
func ResetCounters() {
	atomic.StoreUint64(&AcquireCount, 0)
	atomic.StoreUint64(&ReleaseCount, 0)
}

// BasicStats is a named running aggregate: sample count, min, max, sum
// and sum of squares, enough for O(1) mean and variance. It is mutated
// only by the thread performing the timed operation; the surrounding lock
// serializes updates.
type BasicStats struct {
	TypeName       string
	NumSamples     uint64
	MinTime        uint64
	MaxTime        uint64
	TimeSum        uint64
	TimeSquaredSum float64
}

// SetUp zeroes the aggregate and stores its label.
func (s *BasicStats) SetUp(typeName string) {
	*s = BasicStats{TypeName: typeName, MinTime: math.MaxUint64}
}

// Sample folds one observation into the aggregate.
func (s *BasicStats) Sample(value uint64) {
	s.NumSamples++
	if value < s.MinTime {
		s.MinTime = value
	}
	if value > s.MaxTime {
		s.MaxTime = value
	}
	s.TimeSum += value
	v := float64(value)
	s.TimeSquaredSum += v * v
}

// Mean returns the sample mean; ok is false when there are no samples.
func (s *BasicStats) Mean() (mean float64, ok bool) {
	if s.NumSamples == 0 {
		return 0, false
	}
	return float64(s.TimeSum) / float64(s.NumSamples), true
}

// Variance returns the population variance; ok is false when there are no
// samples.
func (s *BasicStats) Variance() (variance float64, ok bool) {
	mean, ok := s.Mean()
	if !ok {
		return 0, false
	}
	return s.TimeSquaredSum/float64(s.NumSamples) - mean*mean, true
}

// Dump renders the aggregate against the owning object's identity.
func (s *BasicStats) Dump(header *Header) string {
	if s.NumSamples == 0 {
		return fmt.Sprintf("%s %s: no samples", header.Ident(), s.TypeName)
	}
	mean, _ := s.Mean()
	variance, _ := s.Variance()
	return fmt.Sprintf("%s %s: n=%d min=%d max=%d mean=%.2f var=%.2f",
		header.Ident(), s.TypeName, s.NumSamples, s.MinTime, s.MaxTime,
		mean, variance)
}

// TearDown releases the label and zeroes the aggregate.
func (s *BasicStats) TearDown() {
	*s = BasicStats{}
}

// AcquisitionStats tracks lock acquisition outcomes and wait times.
type AcquisitionStats struct {
	NumAttempts           uint64
	NumSuccesses          uint64
	NumSuccessesContended uint64
	SuccessContentionTime uint64
	TotalAcquisitionTime  uint64

	Basic BasicStats
}

// SetUp zeroes the statistics.
func (s *AcquisitionStats) SetUp() {
	*s = AcquisitionStats{}
	s.Basic.SetUp(StatClassAcquisition)
}

// Sample records one acquisition attempt.
func (s *AcquisitionStats) Sample(wasAcquired, wasContended bool, elapsed uint64) {
	s.NumAttempts++
	if wasAcquired {
		s.NumSuccesses++
		if wasContended {
			s.NumSuccessesContended++
			s.SuccessContentionTime += elapsed
		}
	}
	s.TotalAcquisitionTime += elapsed
	s.Basic.Sample(elapsed)
}

// Kitchen classifies the lock's contention profile: the contention ratio,
// whether the lock is hot, and whether a periodic diagnostic dump should
// fire. A heuristic, not a correctness mechanism.
func (s *AcquisitionStats) Kitchen() (contentionRatio float64, isHot, doLog bool) {
	if s.NumSuccesses == 0 {
		return 0, false, false
	}
	contentionRatio = float64(s.NumSuccessesContended) / float64(s.NumSuccesses)
	if s.NumSuccesses >= kitchenMinSuccesses && contentionRatio >= kitchenHotRatio {
		isHot = true
		doLog = s.SuccessContentionTime >= kitchenLogContentionNs
	}
	return contentionRatio, isHot, doLog
}

// Dump renders the statistics against the owning object's identity.
func (s *AcquisitionStats) Dump(header *Header) string {
	return fmt.Sprintf(
		"%s attempts=%d successes=%d contended=%d contentionTime=%dns totalTime=%dns\n%s",
		header.Ident(), s.NumAttempts, s.NumSuccesses, s.NumSuccessesContended,
		s.SuccessContentionTime, s.TotalAcquisitionTime, s.Basic.Dump(header))
}

// TearDown zeroes the statistics.
func (s *AcquisitionStats) TearDown() {
	s.Basic.TearDown()
	*s = AcquisitionStats{}
}

// ReleaseStats tracks hold durations observed at release.
type ReleaseStats struct {
	Basic BasicStats
}

// SetUp zeroes the statistics.
func (s *ReleaseStats) SetUp() {
	s.Basic.SetUp(StatClassHeld)
}

// Sample records the hold duration of one outermost release.
func (s *ReleaseStats) Sample(heldNs uint64) {
	s.Basic.Sample(heldNs)
}

// Dump renders the statistics against the owning object's identity.
func (s *ReleaseStats) Dump(header *Header) string {
	return s.Basic.Dump(header)
}

// TearDown zeroes the statistics.
func (s *ReleaseStats) TearDown() {
	s.Basic.TearDown()
}
