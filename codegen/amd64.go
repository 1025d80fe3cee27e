package codegen

import (
	"runtime"

	"github.com/voxfall/colbench/column"
)

// x86-64 register numbers (ModRM/SIB encoding order).
const (
	x64RAX = 0  // dest argument / write cursor
	x64RDX = 2  // texture index scratch (closure context register, free)
	x64RBX = 3  // source argument
	x64RSI = 6  // fracstep argument (ESI)
	x64RDI = 7  // count argument (EDI)
	x64R8  = 8  // frac argument (R8D)
	x64R12 = 12 // baked colormap base (callee-saved, pushed)
	x64R13 = 13 // stride constant (callee-saved, pushed)
)

// x64 encodes x86-64 instructions into a byte slice.
type x64 struct {
	code []byte
	n    int
}

func (a *x64) bytes(bs ...byte) {
	a.n += copy(a.code[a.n:], bs)
}

func (a *x64) u32(v uint32) {
	a.bytes(byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (a *x64) u64(v uint64) {
	a.u32(uint32(v))
	a.u32(uint32(v >> 32))
}

func rexBit(r int) byte {
	if r >= 8 {
		return 1
	}
	return 0
}

func modrm(mod, reg, rm int) byte {
	return byte(mod<<6 | (reg&7)<<3 | rm&7)
}

// push emits PUSH r64.
func (a *x64) push(r int) {
	if r >= 8 {
		a.bytes(0x41)
	}
	a.bytes(0x50 + byte(r&7))
}

// pop emits POP r64.
func (a *x64) pop(r int) {
	if r >= 8 {
		a.bytes(0x41)
	}
	a.bytes(0x58 + byte(r&7))
}

// movImm64 emits MOV r64, imm64: the full pointer-width immediate load that
// bakes the colormap address into the code.
func (a *x64) movImm64(r int, v uint64) {
	a.bytes(0x48|rexBit(r), 0xb8+byte(r&7))
	a.u64(v)
}

// movImm32 emits MOV r32, imm32.
func (a *x64) movImm32(r int, v uint32) {
	if r >= 8 {
		a.bytes(0x41)
	}
	a.bytes(0xb8 + byte(r&7))
	a.u32(v)
}

// movRR32 emits MOV r/m32, r32 (dst <- src).
func (a *x64) movRR32(dst, src int) {
	if rex := rexBit(src)<<2 | rexBit(dst); rex != 0 {
		a.bytes(0x40 | rex)
	}
	a.bytes(0x89, modrm(3, src, dst))
}

// shrImm8 emits SHR r32, imm8.
func (a *x64) shrImm8(r int, imm byte) {
	if r >= 8 {
		a.bytes(0x41)
	}
	a.bytes(0xc1, modrm(3, 5, r), imm)
}

// andImm8 emits AND r32, imm8 (sign-extended).
func (a *x64) andImm8(r int, imm byte) {
	if r >= 8 {
		a.bytes(0x41)
	}
	a.bytes(0x83, modrm(3, 4, r), imm)
}

// movzxByteIndexed emits MOVZX r32, BYTE PTR [base+index]. base and index
// with encoding 4 or 5 (RSP/RBP patterns) are not representable here.
func (a *x64) movzxByteIndexed(dst, base, index int) {
	if rex := rexBit(dst)<<2 | rexBit(index)<<1 | rexBit(base); rex != 0 {
		a.bytes(0x40 | rex)
	}
	a.bytes(0x0f, 0xb6, modrm(0, dst, 4), byte((index&7)<<3|base&7))
}

// storeByteAt emits MOV BYTE PTR [base], r8low. base must not use the
// RSP/RBP encodings.
func (a *x64) storeByteAt(base, src int) {
	if rex := rexBit(src)<<2 | rexBit(base); rex != 0 {
		a.bytes(0x40 | rex)
	}
	a.bytes(0x88, modrm(0, src, base))
}

// addRR64 emits ADD r/m64, r64 (dst <- dst + src).
func (a *x64) addRR64(dst, src int) {
	a.bytes(0x48|rexBit(src)<<2|rexBit(dst), 0x01, modrm(3, src, dst))
}

// addRR32 emits ADD r/m32, r32 (dst <- dst + src).
func (a *x64) addRR32(dst, src int) {
	if rex := rexBit(src)<<2 | rexBit(dst); rex != 0 {
		a.bytes(0x40 | rex)
	}
	a.bytes(0x01, modrm(3, src, dst))
}

// testRR32 emits TEST r/m32, r32.
func (a *x64) testRR32(dst, src int) {
	if rex := rexBit(src)<<2 | rexBit(dst); rex != 0 {
		a.bytes(0x40 | rex)
	}
	a.bytes(0x85, modrm(3, src, dst))
}

// dec32 emits DEC r32.
func (a *x64) dec32(r int) {
	if r >= 8 {
		a.bytes(0x41)
	}
	a.bytes(0xff, modrm(3, 1, r))
}

// jns emits JNS rel8 where rel8 is relative to the end of this instruction.
func (a *x64) jns(rel8 int) {
	a.bytes(0x79, byte(rel8))
}

// js emits JS rel8 where rel8 is relative to the end of this instruction.
func (a *x64) js(rel8 int) {
	a.bytes(0x78, byte(rel8))
}

// ret emits RET.
func (a *x64) ret() {
	a.bytes(0xc3)
}

// amd64Backend generates the column loop for x86-64. Go's internal calling
// convention passes integer arguments in RAX, RBX, RCX, RDI, RSI, R8, so
// the six arguments land as:
//
//	rax dest, rbx source, rcx colormap argument (ignored),
//	edi count, esi fracstep, r8d frac.
//
// r12 holds the baked colormap base and r13 the stride; both are pushed on
// entry and popped on exit. edx is scratch (the closure context register,
// dead on entry).
type amd64Backend struct{}

func (amd64Backend) Name() string { return "amd64" }

func (amd64Backend) Supported() bool { return runtime.GOARCH == "amd64" }

func (amd64Backend) Emit(code []byte, cmap uintptr, stride int32) int {
	a := &x64{code: code}

	a.push(x64R12)
	a.push(x64R13)
	a.movImm64(x64R12, uint64(cmap))
	a.movImm32(x64R13, uint32(stride))

	// A negative count draws nothing: skip straight to the epilogue, as
	// the reference loop's pre-test does.
	a.testRR32(x64RDI, x64RDI)
	guard := a.n
	a.js(0) // patched below once the loop size is known

	loop := a.n
	a.movRR32(x64RDX, x64R8)                    // edx = frac
	a.shrImm8(x64RDX, column.FracBits)          // edx >>= 16
	a.andImm8(x64RDX, column.TexMask)           // edx &= 127
	a.movzxByteIndexed(x64RDX, x64RBX, x64RDX)  // edx = source[edx]
	a.movzxByteIndexed(x64RDX, x64R12, x64RDX)  // edx = colormap[edx]
	a.storeByteAt(x64RAX, x64RDX)               // *dest = dl
	a.addRR64(x64RAX, x64R13)                   // dest += stride
	a.addRR32(x64R8, x64RSI)                    // frac += fracstep
	a.dec32(x64RDI)                             // count--
	a.jns(loop - (a.n + 2))                     // while count >= 0

	a.code[guard+1] = byte(a.n - (guard + 2))

	a.pop(x64R13)
	a.pop(x64R12)
	a.ret()

	return a.n
}
