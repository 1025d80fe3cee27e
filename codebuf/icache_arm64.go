//go:build arm64

package codebuf

import "unsafe"

const cacheLine = 64

// icacheInvalidate is implemented in icache_arm64.s. start and end must be
// cache-line aligned.
func icacheInvalidate(start, end uintptr)

// invalidateICache forces the processor to refetch the first n bytes of the
// region after a data-side write. arm64 has split caches: mprotect alone
// does not synchronize the instruction side with modified data.
func invalidateICache(base unsafe.Pointer, n int) {
	if n <= 0 {
		return
	}
	start := uintptr(base) &^ (cacheLine - 1)
	end := (uintptr(base) + uintptr(n) + cacheLine - 1) &^ (cacheLine - 1)
	icacheInvalidate(start, end)
}
