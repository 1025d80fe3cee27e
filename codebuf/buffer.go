// Package codebuf manages the page-backed memory block that holds generated
// machine code. The block alternates between an explicit writable phase for
// code emission and an executable phase for dispatch, with the instruction
// cache invalidated on every transition into the executable phase.
package codebuf

import (
	"fmt"
	"unsafe"
)

// Size is the fixed capacity of the code buffer in bytes.
const Size = 4096

// Phase is the protection state of the buffer. It is tracked as one field
// rather than inferred from platform behavior, so the current phase is never
// ambiguous.
type Phase int

const (
	// PhaseWritable allows data writes into the buffer; code in it must not
	// run.
	PhaseWritable Phase = iota
	// PhaseExecutable allows execution; the buffer must not be written.
	PhaseExecutable
)

func (p Phase) String() string {
	if p == PhaseWritable {
		return "writable"
	}
	return "executable"
}

// Buffer is a single fixed-capacity mapping with read/write/execute
// capability, toggled between phases through mprotect. It is confined to the
// rendering thread: nothing executes buffer code while it is being rewritten.
type Buffer struct {
	mem   []byte
	phase Phase
}

// Acquire maps one Size-byte anonymous region and returns it in the writable
// phase. Failure is non-fatal for callers: without a buffer the harness
// degrades to the reference-only path.
func Acquire() (*Buffer, error) {
	mem, err := mapPage(Size)
	if err != nil {
		return nil, fmt.Errorf("map code buffer: %w", err)
	}
	return &Buffer{mem: mem, phase: PhaseWritable}, nil
}

// Release unmaps the buffer. The buffer must not be used afterwards.
func (b *Buffer) Release() error {
	mem := b.mem
	b.mem = nil
	if mem == nil {
		return nil
	}
	if err := unmap(mem); err != nil {
		return fmt.Errorf("unmap code buffer: %w", err)
	}
	return nil
}

// Phase returns the current protection phase.
func (b *Buffer) Phase() Phase { return b.phase }

// Bytes exposes the underlying memory for emission. The buffer must be in
// the writable phase.
func (b *Buffer) Bytes() []byte { return b.mem }

// Base returns the entry address of the buffer.
func (b *Buffer) Base() unsafe.Pointer { return unsafe.Pointer(&b.mem[0]) }

// BeginWrite places the buffer in the writable phase so new instructions can
// be emitted.
func (b *Buffer) BeginWrite() error {
	if b.phase == PhaseWritable {
		return nil
	}
	if err := protectRW(b.mem); err != nil {
		return fmt.Errorf("make code buffer writable: %w", err)
	}
	b.phase = PhaseWritable
	return nil
}

// Seal places the buffer in the executable phase and invalidates any
// instruction cache lines covering the first n bytes, so the processor
// cannot execute stale cached instructions. Code in the buffer must not run
// before Seal returns.
func (b *Buffer) Seal(n int) error {
	if b.phase == PhaseExecutable {
		return nil
	}
	if err := protectRX(b.mem); err != nil {
		return fmt.Errorf("make code buffer executable: %w", err)
	}
	invalidateICache(b.Base(), n)
	b.phase = PhaseExecutable
	return nil
}
