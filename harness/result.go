package harness

// ModeResult summarizes the frames attributed to one mode.
type ModeResult struct {
	Mode       string  `json:"mode"`
	Frames     int     `json:"frames"`
	DrawCalls  int64   `json:"draw_calls"`
	TotalMs    float64 `json:"total_ms"`
	AvgFrameMs float64 `json:"avg_frame_ms"`
}

// Result holds the structured summary of a benchmark session.
type Result struct {
	Backend       string     `json:"backend"`
	Rewrites      int        `json:"rewrites"`
	Compiled      ModeResult `json:"compiled"`
	Reference     ModeResult `json:"reference"`
	FallbackCalls int64      `json:"fallback_calls"`
	Speedup       float64    `json:"speedup,omitempty"`
}

// Result builds the session summary. backend names the code generator used
// and rewrites is its buffer rewrite count.
func (h *Harness) Result(backend string, rewrites int) Result {
	return Result{
		Backend:       backend,
		Rewrites:      rewrites,
		Compiled:      modeResult(ModeCompiled, &h.stats.Compiled),
		Reference:     modeResult(ModeReference, &h.stats.Reference),
		FallbackCalls: h.stats.FallbackCalls,
		Speedup:       h.stats.Speedup(),
	}
}

func modeResult(m Mode, a *Accumulator) ModeResult {
	return ModeResult{
		Mode:       m.Label(),
		Frames:     a.Frames,
		DrawCalls:  a.Calls,
		TotalMs:    millis(a.Total),
		AvgFrameMs: millis(a.AvgFrame()),
	}
}
