package harness

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/voxfall/colbench/column"
	"github.com/voxfall/colbench/workload"
)

// Runner drives a full benchmark session: for every frame it rebakes the
// compiled loop when the workload rotates shading tables, then draws the
// frame's column batch through the harness.
type Runner struct {
	h      *Harness
	wl     *workload.Generator
	frames int
	screen []byte
	logger *slog.Logger
}

// NewRunner creates a Runner drawing into an off-screen framebuffer.
func NewRunner(h *Harness, wl *workload.Generator, frames int, logger *slog.Logger) *Runner {
	return &Runner{
		h:      h,
		wl:     wl,
		frames: frames,
		screen: make([]byte, column.Stride*workload.Height),
		logger: logger,
	}
}

// Run executes the session. The workload keeps every shading table alive and
// in place for the whole run, which the generated code relies on.
func (r *Runner) Run(ctx context.Context) error {
	active := -1

	for frame := 0; frame < r.frames; frame++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("benchmark interrupted at frame %d: %w", frame, err)
		}

		if idx := r.wl.ColormapIndex(frame); idx != active {
			table := r.wl.Colormap(idx)
			if err := r.h.Generate(uintptr(unsafe.Pointer(&table[0]))); err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}

			active = idx
		}

		table := r.wl.Colormap(active)

		r.h.FrameStart()

		for _, col := range r.wl.Frame(frame) {
			tex := r.wl.Texture(col.Tex)
			r.h.DrawColumn(
				unsafe.Pointer(&r.screen[col.X]),
				unsafe.Pointer(&tex[0]),
				unsafe.Pointer(&table[0]),
				col.Count, col.Fracstep, col.Frac,
			)
		}

		r.h.FrameEnd()
	}

	r.logger.Info("benchmark finished",
		slog.Int("frames", r.frames),
	)

	return nil
}

// Screen returns the framebuffer the session drew into.
func (r *Runner) Screen() []byte { return r.screen }
