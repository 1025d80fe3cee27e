package codegen

import (
	"unsafe"

	"github.com/voxfall/colbench/column"
)

// fnAt builds a callable func value for the code address stored in *entry.
// A Go func value is a pointer to a word holding the code address, so the
// address of the entry slot, reinterpreted, calls straight into the buffer.
// The slot must stay alive as long as the func value does; Variant keeps it
// in a field for that reason.
func fnAt(entry *unsafe.Pointer) column.Fn {
	return *(*column.Fn)(unsafe.Pointer(&entry))
}
