// Package codegen emits the machine code for the column inner loop with the
// active colormap address baked in as an immediate operand, and manages the
// single resident compiled variant.
package codegen

import "runtime"

// Backend emits the column-drawing loop for one instruction set.
//
// Emit writes a closed instruction sequence into code and returns the number
// of bytes written. The sequence implements column.Reference exactly, except
// that cmap is embedded as a full pointer-width immediate and the colormap
// argument passed at call time is ignored. Arguments arrive in the integer
// argument registers of Go's internal calling convention, in declaration
// order of column.Fn.
//
// Emission is pure byte encoding: it carries no memory-protection concerns
// and every backend can run on every platform, so encodings are testable
// anywhere. Only execution requires the matching architecture.
type Backend interface {
	// Name returns the instruction set name.
	Name() string
	// Supported reports whether code emitted by this backend can execute
	// in the current process.
	Supported() bool
	// Emit writes the loop into code and returns the encoded length.
	// stride is the screen width baked into the advance of the write
	// cursor; it must fit in 16 bits.
	Emit(code []byte, cmap uintptr, stride int32) int
}

// Select returns the backend for the current architecture. Unsupported
// architectures get a backend whose Emit is a safe no-op, which keeps the
// compiled entry point unset and the dispatch on the reference path.
func Select() Backend {
	return forArch(runtime.GOARCH)
}

func forArch(goarch string) Backend {
	switch goarch {
	case "arm64":
		return arm64Backend{}
	case "amd64":
		return amd64Backend{}
	default:
		return unsupportedBackend{}
	}
}
