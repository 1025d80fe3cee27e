// Package workload generates deterministic synthetic render work: texture
// columns, shading tables, and per-frame batches of column draws with
// configurable height distributions.
package workload

import (
	"math"
	mrand "math/rand"

	"github.com/voxfall/colbench/column"
)

const (
	// Height is the screen height in rows; column heights never exceed it.
	Height = 200
	// TexSize is the texture column length in texels.
	TexSize = 128
	// CmapSize is the shading table length in entries.
	CmapSize = 256

	numTextures = 8
)

// Column is one draw call's worth of work.
type Column struct {
	X        int
	Tex      int
	Count    int32
	Fracstep int32
	Frac     int32
}

// Summary contains statistics about the configured workload.
type Summary struct {
	Frames       int
	Columns      int
	TotalColumns int
	Colormaps    int
}

// Config controls workload generation parameters.
type Config struct {
	Frames       int
	Columns      int
	MinCount     int
	MaxCount     int
	Distribution string
	Seed         int64
	Colormaps    int
	SwitchEvery  int
}

// Generator produces deterministic frames from a Config. Frames are
// addressable by index: Frame(i) returns the same batch every time it is
// called, so two runs with the same seed draw identical work.
type Generator struct {
	cfg       Config
	textures  [][]byte
	colormaps [][]byte
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	rng := mrand.New(mrand.NewSource(cfg.Seed))

	textures := make([][]byte, numTextures)
	for i := range textures {
		tex := make([]byte, TexSize)
		rng.Read(tex)
		textures[i] = tex
	}

	// Each table is byte(j) xored with a per-table tint, so any two tables
	// produce visibly different pixels for the same texel.
	n := cfg.Colormaps
	if n < 1 {
		n = 1
	}
	colormaps := make([][]byte, n)
	for i := range colormaps {
		cmap := make([]byte, CmapSize)
		tint := byte(i*41 + 13)
		for j := range cmap {
			cmap[j] = byte(j) ^ tint
		}
		colormaps[i] = cmap
	}

	return &Generator{
		cfg:       cfg,
		textures:  textures,
		colormaps: colormaps,
	}
}

// Texture returns texture column i.
func (g *Generator) Texture(i int) []byte { return g.textures[i] }

// Colormap returns shading table i.
func (g *Generator) Colormap(i int) []byte { return g.colormaps[i] }

// ColormapIndex returns the shading table active during frame. Tables rotate
// every SwitchEvery frames; a non-positive period pins table zero.
func (g *Generator) ColormapIndex(frame int) int {
	if g.cfg.SwitchEvery <= 0 || len(g.colormaps) < 2 {
		return 0
	}

	return (frame / g.cfg.SwitchEvery) % len(g.colormaps)
}

// Frame returns the column batch for frame i. The batch is derived from the
// seed and the frame index alone.
func (g *Generator) Frame(i int) []Column {
	rng := mrand.New(mrand.NewSource(g.cfg.Seed ^ int64(uint64(i+1)*0x9e3779b97f4a7c15)))

	counts := g.countDistribution(rng)

	cols := make([]Column, g.cfg.Columns)
	for c := range cols {
		cols[c] = Column{
			X:        rng.Intn(column.Stride),
			Tex:      rng.Intn(len(g.textures)),
			Count:    int32(counts[c]),
			Fracstep: rng.Int31n(3<<16) + 1<<14,
			Frac:     rng.Int31n(TexSize << 16),
		}
	}

	return cols
}

// Summary returns statistics for the configured workload.
func (g *Generator) Summary() Summary {
	return Summary{
		Frames:       g.cfg.Frames,
		Columns:      g.cfg.Columns,
		TotalColumns: g.cfg.Frames * g.cfg.Columns,
		Colormaps:    len(g.colormaps),
	}
}

func (g *Generator) countDistribution(rng *mrand.Rand) []int {
	dist := make([]int, g.cfg.Columns)

	minC := g.cfg.MinCount
	maxC := g.cfg.MaxCount
	if maxC > Height-1 {
		maxC = Height - 1
	}
	if minC > maxC {
		minC = maxC
	}

	switch g.cfg.Distribution {
	case "power-law":
		alpha := 1.5
		base := math.Max(1, float64(minC))
		for i := range dist {
			u := rng.Float64()
			count := base / math.Pow(1-u, 1/alpha)
			if count > float64(maxC) {
				count = float64(maxC)
			}
			dist[i] = max(minC, int(count))
		}

	case "exponential":
		quarter := maxC / 4
		if quarter < 1 {
			quarter = 1
		}
		lambda := math.Log(2) / float64(quarter)
		for i := range dist {
			u := rng.Float64()
			count := -math.Log(1-u) / lambda
			clamped := math.Max(
				float64(minC),
				math.Min(count, float64(maxC)),
			)
			dist[i] = int(clamped)
		}

	default:
		// Uniform, also the fallback for unknown names.
		span := maxC - minC + 1
		for i := range dist {
			dist[i] = minC + rng.Intn(span)
		}
	}

	return dist
}
