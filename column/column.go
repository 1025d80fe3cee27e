// Package column implements the textured pixel column inner loop that the
// benchmark compares across its two dispatch paths. Reference is the
// statically compiled rendition; the codegen package emits machine code with
// identical per-iteration semantics.
package column

import "unsafe"

// Stride is the screen width in bytes between vertically adjacent pixels.
// Generated code bakes it in as a constant, so it is fixed for the lifetime
// of a code generator.
const Stride = 320

// TexMask wraps the fixed-point texture coordinate inside a 128-texel column.
const TexMask = 127

// FracBits is the fractional bit count of the frac accumulator.
const FracBits = 16

// Fn draws one textured pixel column. dest is the write cursor for the top
// pixel, src the texture column, cmap the shading lookup table. count is the
// remaining pixel count minus one: the loop runs count+1 iterations and a
// negative count draws nothing.
type Fn func(dest, src, cmap unsafe.Pointer, count, fracstep, frac int32)

// Reference draws a column through the colormap indirection. Its loop is the
// bit-exact contract every generated backend must match:
//
//	texel  = src[(frac>>16) & 127]
//	*dest  = cmap[texel]
//	dest  += Stride
//	frac  += fracstep
//
// repeated while the post-decremented count stays non-negative. The shift is
// logical: only bits 16..22 of frac reach the texture index.
func Reference(dest, src, cmap unsafe.Pointer, count, fracstep, frac int32) {
	for ; count >= 0; count-- {
		texel := *(*byte)(unsafe.Add(src, uintptr(uint32(frac)>>FracBits)&TexMask))
		*(*byte)(dest) = *(*byte)(unsafe.Add(cmap, uintptr(texel)))
		dest = unsafe.Add(dest, Stride)
		frac += fracstep
	}
}
