//go:build !arm64

package codebuf

import "unsafe"

// invalidateICache is a no-op on architectures with a coherent instruction
// cache (x86) and on platforms where the compiled path never runs.
func invalidateICache(base unsafe.Pointer, n int) {}
