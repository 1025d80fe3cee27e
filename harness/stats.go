package harness

import "time"

// Accumulator aggregates the frames attributed to one mode. It is reset only
// at construction; a benchmark session owns exactly one per mode.
type Accumulator struct {
	Frames int
	Calls  int64
	Total  time.Duration
}

func (a *Accumulator) add(elapsed time.Duration, calls int64) {
	a.Frames++
	a.Calls += calls
	a.Total += elapsed
}

// AvgFrame returns the mean frame time, or zero when no frames were recorded.
func (a *Accumulator) AvgFrame() time.Duration {
	if a.Frames == 0 {
		return 0
	}

	return a.Total / time.Duration(a.Frames)
}

// Stats holds the per-mode accumulators of a benchmark session. A frame is
// attributed to the mode that was active at its start, even when individual
// calls inside it fell back to the reference path.
type Stats struct {
	Compiled  Accumulator
	Reference Accumulator

	// FallbackCalls counts draw calls requested in compiled mode that ran
	// the reference path because no generated code was resident.
	FallbackCalls int64
}

// Speedup returns the reference average frame time divided by the compiled
// one, or zero when either mode recorded no frames.
func (s *Stats) Speedup() float64 {
	ref := s.Reference.AvgFrame()
	com := s.Compiled.AvgFrame()

	if ref <= 0 || com <= 0 {
		return 0
	}

	return float64(ref) / float64(com)
}
