// Package harness drives benchmark frames through the two column-drawing
// paths, switching modes on demand or on a timer, attributing per-frame
// statistics, and appending a CSV benchmark log.
package harness

import (
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/voxfall/colbench/codegen"
	"github.com/voxfall/colbench/column"
)

// debugLogEvery is the frame period of the auto-switch timer debug log.
const debugLogEvery = 60

// Harness dispatches draw calls per the controller's mode and aggregates
// frame statistics. A frame's mode is latched at FrameStart; every call until
// FrameEnd is attributed to that mode.
type Harness struct {
	ctrl   *Controller
	gen    *codegen.Generator
	rec    *Recorder
	stats  Stats
	logger *slog.Logger
	now    func() time.Time

	frameMode  Mode
	frameBegan time.Time
	frameCalls int64
	frames     int
}

// New creates a Harness. rec may be nil, in which case no log is written and
// statistics remain queryable through Stats.
func New(ctrl *Controller, gen *codegen.Generator, rec *Recorder, logger *slog.Logger) *Harness {
	return &Harness{
		ctrl:   ctrl,
		gen:    gen,
		rec:    rec,
		logger: logger,
		now:    time.Now,
	}
}

// Generate rebakes the compiled loop for cmap. A failed generation leaves no
// variant resident, so subsequent compiled-mode calls fall back safely.
func (h *Harness) Generate(cmap uintptr) error {
	if _, err := h.gen.Generate(cmap); err != nil {
		return fmt.Errorf("generate column code: %w", err)
	}

	return nil
}

// FrameStart opens a frame: the auto-switch timer is evaluated, the frame's
// mode latched, and the frame clock started.
func (h *Harness) FrameStart() {
	h.ctrl.tick()
	h.frameMode = h.ctrl.Mode()
	h.frameCalls = 0
	h.frameBegan = h.now()
}

// DrawColumn draws one column through the active path. In compiled mode with
// no resident variant the call silently runs the reference path and is
// counted as a fallback.
func (h *Harness) DrawColumn(dest, src, cmap unsafe.Pointer, count, fracstep, frac int32) {
	h.frameCalls++

	if h.frameMode == ModeCompiled {
		if v := h.gen.Resident(); v != nil {
			v.Fn()(dest, src, cmap, count, fracstep, frac)

			return
		}

		h.stats.FallbackCalls++
	}

	column.Reference(dest, src, cmap, count, fracstep, frac)
}

// FrameEnd closes the frame: elapsed time and call count go to the latched
// mode's accumulator and one record goes to the log.
func (h *Harness) FrameEnd() {
	ended := h.now()
	elapsed := ended.Sub(h.frameBegan)

	acc := &h.stats.Compiled
	if h.frameMode == ModeReference {
		acc = &h.stats.Reference
	}
	acc.add(elapsed, h.frameCalls)

	h.frames++

	if h.rec != nil {
		err := h.rec.Append(Record{
			When:      ended,
			Mode:      h.frameMode,
			FrameTime: elapsed,
			DrawCalls: h.frameCalls,
		})
		if err != nil {
			// Logging stops but the benchmark keeps running.
			h.logger.Warn("benchmark log write failed, disabling log",
				slog.String("error", err.Error()),
			)
			h.rec = nil
		}
	}

	if h.frames%debugLogEvery == 0 {
		h.logger.Debug("frame checkpoint",
			slog.Int("frame", h.frames),
			slog.String("mode", h.frameMode.Label()),
			slog.Duration("since_switch", h.ctrl.SinceSwitch()),
		)
	}
}

// Stats returns the session statistics accumulated so far.
func (h *Harness) Stats() *Stats { return &h.stats }

// Frames returns the number of completed frames.
func (h *Harness) Frames() int { return h.frames }
