//go:build unix

package codebuf

import "golang.org/x/sys/unix"

// The region is mapped read/write and flipped to read/exec per phase, which
// also satisfies platforms that forbid simultaneous write+execute mappings.

func mapPage(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
}

func unmap(mem []byte) error {
	return unix.Munmap(mem)
}

func protectRW(mem []byte) error {
	return unix.Mprotect(mem, unix.PROT_READ|unix.PROT_WRITE)
}

func protectRX(mem []byte) error {
	return unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC)
}
