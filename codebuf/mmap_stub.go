//go:build !unix

package codebuf

import "errors"

// Without a page-protection API the compiled path is unavailable; Acquire
// fails and the harness stays on the reference implementation.

var errUnsupported = errors.New("executable memory not supported on this platform")

func mapPage(size int) ([]byte, error) { return nil, errUnsupported }

func unmap(mem []byte) error { return nil }

func protectRW(mem []byte) error { return errUnsupported }

func protectRX(mem []byte) error { return errUnsupported }
