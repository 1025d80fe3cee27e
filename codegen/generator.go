package codegen

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/voxfall/colbench/codebuf"
	"github.com/voxfall/colbench/column"
)

// Variant is the single resident compiled rendition of the column loop.
type Variant struct {
	// Colormap is the address baked into the code as an immediate.
	Colormap uintptr
	// Size is the emitted byte length.
	Size int

	entry unsafe.Pointer
	fn    column.Fn
}

// Fn returns the callable entry point of the generated code.
func (v *Variant) Fn() column.Fn { return v.fn }

// Generator owns the executable buffer and rewrites it whenever the baked
// colormap address changes. It is confined to the rendering thread:
// generation completes, including the write-to-execute transition and cache
// invalidation, strictly before the entry point is handed to any caller.
type Generator struct {
	backend  Backend
	buf      *codebuf.Buffer
	stride   int32
	resident *Variant
	logger   *slog.Logger
	rewrites int
}

// NewGenerator builds a generator over buf. A nil buf (allocation failed)
// or an unsupported backend makes Generate a permanent no-op, leaving the
// compiled path unavailable. stride must fit in 16 bits and is fixed for
// the generator's lifetime; a resolution change needs a new generator.
func NewGenerator(backend Backend, buf *codebuf.Buffer, stride int32, logger *slog.Logger) *Generator {
	return &Generator{
		backend: backend,
		buf:     buf,
		stride:  stride,
		logger:  logger.With(slog.String("backend", backend.Name())),
	}
}

// Generate bakes cmap into the compiled loop, reporting whether the buffer
// was rewritten. Generating for the address already resident is a no-op, so
// an unchanged colormap costs neither protection toggles nor cache
// invalidation. The caller must keep the colormap table at cmap alive and
// in place for as long as the variant stays resident.
//
// Generation is atomic from the caller's view: on any error no variant is
// resident and dispatch falls back to the reference path.
func (g *Generator) Generate(cmap uintptr) (bool, error) {
	if g.buf == nil || !g.backend.Supported() {
		return false, nil
	}
	if v := g.resident; v != nil && v.Colormap == cmap {
		return false, nil
	}

	// The old code is stale the moment a different address is requested.
	g.resident = nil

	if err := g.buf.BeginWrite(); err != nil {
		return false, fmt.Errorf("begin code rewrite: %w", err)
	}
	n := g.backend.Emit(g.buf.Bytes(), cmap, g.stride)
	if err := g.buf.Seal(n); err != nil {
		return false, fmt.Errorf("seal code buffer: %w", err)
	}

	v := &Variant{Colormap: cmap, Size: n, entry: g.buf.Base()}
	v.fn = fnAt(&v.entry)
	g.resident = v
	g.rewrites++

	// Only the first few rewrites are worth logging.
	if g.rewrites <= 3 {
		g.logger.Info("generated column code",
			slog.Int("bytes", n),
			slog.String("colormap", fmt.Sprintf("%#x", cmap)),
		)
	}
	return true, nil
}

// Resident returns the current compiled variant, or nil when the compiled
// path is unavailable.
func (g *Generator) Resident() *Variant { return g.resident }

// Rewrites returns how many times the buffer has been rewritten.
func (g *Generator) Rewrites() int { return g.rewrites }

// Supported reports whether the compiled path can ever become available.
func (g *Generator) Supported() bool { return g.buf != nil && g.backend.Supported() }
