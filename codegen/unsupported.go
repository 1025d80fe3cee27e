package codegen

// unsupportedBackend is the fallback for architectures without a hand-built
// loop template. Emit writes nothing, so no compiled variant ever becomes
// resident and dispatch stays on the reference path.
type unsupportedBackend struct{}

func (unsupportedBackend) Name() string { return "none" }

func (unsupportedBackend) Supported() bool { return false }

func (unsupportedBackend) Emit(code []byte, cmap uintptr, stride int32) int { return 0 }
