package codegen

import (
	"runtime"

	"github.com/voxfall/colbench/column"
)

// AArch64 register numbers. X28 (goroutine pointer) and X26 (closure
// context) belong to the Go runtime and are never touched.
const (
	a64X0  = 0  // dest argument
	a64X1  = 1  // source argument
	a64X3  = 3  // count argument (W3)
	a64X4  = 4  // fracstep argument (W4)
	a64X5  = 5  // frac argument (W5)
	a64X8  = 8  // texture index scratch
	a64X9  = 9  // texel / pixel scratch
	a64X19 = 19 // baked colormap base (callee-saved)
	a64X20 = 20 // stride constant (callee-saved)
	a64X21 = 21 // dest cursor (callee-saved)
	a64X22 = 22 // frac accumulator (callee-saved)
	a64SP  = 31
	a64XZR = 31 // zero register in data-processing encodings
)

const (
	condGE = 0xa
	condLT = 0xb
)

// a64 encodes fixed-width AArch64 instructions, little-endian, into a byte
// slice.
type a64 struct {
	code []byte
	n    int
}

func (a *a64) inst(w uint32) {
	a.code[a.n+0] = byte(w)
	a.code[a.n+1] = byte(w >> 8)
	a.code[a.n+2] = byte(w >> 16)
	a.code[a.n+3] = byte(w >> 24)
	a.n += 4
}

// movz emits MOVZ Xd, #imm16, LSL #shift.
func (a *a64) movz(rd int, imm uint16, shift uint) {
	a.inst(0xd2800000 | uint32(shift/16)<<21 | uint32(imm)<<5 | uint32(rd))
}

// movk emits MOVK Xd, #imm16, LSL #shift.
func (a *a64) movk(rd int, imm uint16, shift uint) {
	a.inst(0xf2800000 | uint32(shift/16)<<21 | uint32(imm)<<5 | uint32(rd))
}

// loadImm64 loads a full 64-bit immediate with MOVZ plus three MOVK, always
// four instructions. A shorter sequence would truncate colormap tables that
// live high in the address space.
func (a *a64) loadImm64(rd int, v uint64) {
	a.movz(rd, uint16(v), 0)
	a.movk(rd, uint16(v>>16), 16)
	a.movk(rd, uint16(v>>32), 32)
	a.movk(rd, uint16(v>>48), 48)
}

// movX emits MOV Xd, Xm (ORR Xd, XZR, Xm).
func (a *a64) movX(rd, rm int) {
	a.inst(0xaa0003e0 | uint32(rm)<<16 | uint32(rd))
}

// movW emits MOV Wd, Wm (ORR Wd, WZR, Wm), zeroing the upper half.
func (a *a64) movW(rd, rm int) {
	a.inst(0x2a0003e0 | uint32(rm)<<16 | uint32(rd))
}

// stpPre emits STP Xt1, Xt2, [SP, #off]! (pre-index).
func (a *a64) stpPre(rt1, rt2, off int) {
	imm7 := uint32(off/8) & 0x7f
	a.inst(0xa9800000 | imm7<<15 | uint32(rt2)<<10 | uint32(a64SP)<<5 | uint32(rt1))
}

// ldpPost emits LDP Xt1, Xt2, [SP], #off (post-index).
func (a *a64) ldpPost(rt1, rt2, off int) {
	imm7 := uint32(off/8) & 0x7f
	a.inst(0xa8c00000 | imm7<<15 | uint32(rt2)<<10 | uint32(a64SP)<<5 | uint32(rt1))
}

// lsrImmW emits LSR Wd, Wn, #shift (UBFM Wd, Wn, #shift, #31).
func (a *a64) lsrImmW(rd, rn int, shift uint32) {
	a.inst(0x53000000 | shift<<16 | 31<<10 | uint32(rn)<<5 | uint32(rd))
}

// andMaskW emits AND Wd, Wn, #((1<<width)-1) as a logical immediate of width
// consecutive ones starting at bit 0.
func (a *a64) andMaskW(rd, rn int, width uint32) {
	a.inst(0x12000000 | (width-1)<<10 | uint32(rn)<<5 | uint32(rd))
}

// ldrbReg emits LDRB Wt, [Xn, Xm] (register offset, zero-extended byte).
func (a *a64) ldrbReg(rt, rn, rm int) {
	a.inst(0x38606800 | uint32(rm)<<16 | uint32(rn)<<5 | uint32(rt))
}

// strb emits STRB Wt, [Xn].
func (a *a64) strb(rt, rn int) {
	a.inst(0x39000000 | uint32(rn)<<5 | uint32(rt))
}

// addX emits ADD Xd, Xn, Xm.
func (a *a64) addX(rd, rn, rm int) {
	a.inst(0x8b000000 | uint32(rm)<<16 | uint32(rn)<<5 | uint32(rd))
}

// addW emits ADD Wd, Wn, Wm.
func (a *a64) addW(rd, rn, rm int) {
	a.inst(0x0b000000 | uint32(rm)<<16 | uint32(rn)<<5 | uint32(rd))
}

// subsImmW emits SUBS Wd, Wn, #imm12.
func (a *a64) subsImmW(rd, rn int, imm uint32) {
	a.inst(0x71000000 | imm<<10 | uint32(rn)<<5 | uint32(rd))
}

// bcondWord encodes B.<cond> to a target instrOff instructions away.
func bcondWord(cond uint32, instrOff int) uint32 {
	return 0x54000000 | (uint32(instrOff)&0x7ffff)<<5 | cond
}

// bcond emits a conditional branch.
func (a *a64) bcond(cond uint32, instrOff int) {
	a.inst(bcondWord(cond, instrOff))
}

// patch rewrites the instruction at byte offset at.
func (a *a64) patch(at int, w uint32) {
	a.code[at+0] = byte(w)
	a.code[at+1] = byte(w >> 8)
	a.code[at+2] = byte(w >> 16)
	a.code[at+3] = byte(w >> 24)
}

// ret emits RET.
func (a *a64) ret() {
	a.inst(0xd65f03c0)
}

// arm64Backend generates the column loop for AArch64. Go's internal calling
// convention on arm64 passes the six arguments in R0-R5, matching the
// register plan of the loop:
//
//	x0 dest (copied to x21), x1 source, x2 colormap argument (ignored),
//	w3 count, w4 fracstep, w5 frac (copied to w22),
//	x19 baked colormap, x20 stride, w8/w9 scratch.
//
// x19-x22 are callee-saved and restored by the epilogue.
type arm64Backend struct{}

func (arm64Backend) Name() string { return "arm64" }

func (arm64Backend) Supported() bool { return runtime.GOARCH == "arm64" }

func (arm64Backend) Emit(code []byte, cmap uintptr, stride int32) int {
	a := &a64{code: code}

	a.stpPre(a64X19, a64X20, -16)
	a.stpPre(a64X21, a64X22, -16)
	a.loadImm64(a64X19, uint64(cmap))
	a.movz(a64X20, uint16(stride), 0)
	a.movX(a64X21, a64X0)
	a.movW(a64X22, a64X5)

	// A negative count draws nothing: skip straight to the epilogue, as
	// the reference loop's pre-test does.
	a.subsImmW(a64XZR, a64X3, 0)
	guard := a.n
	a.bcond(condLT, 0) // patched below once the loop size is known

	loop := a.n
	a.lsrImmW(a64X8, a64X22, column.FracBits)
	a.andMaskW(a64X8, a64X8, 7) // & TexMask
	a.ldrbReg(a64X9, a64X1, a64X8)
	a.ldrbReg(a64X9, a64X19, a64X9)
	a.strb(a64X9, a64X21)
	a.addX(a64X21, a64X21, a64X20)
	a.addW(a64X22, a64X22, a64X4)
	a.subsImmW(a64X3, a64X3, 1)
	a.bcond(condGE, (loop-a.n)/4)

	a.patch(guard, bcondWord(condLT, (a.n-guard)/4))

	a.ldpPost(a64X21, a64X22, 16)
	a.ldpPost(a64X19, a64X20, 16)
	a.ret()

	return a.n
}
