package codegen

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func emitARM64(t *testing.T, cmap uintptr) []byte {
	t.Helper()
	code := make([]byte, 4096)
	n := arm64Backend{}.Emit(code, cmap, 320)
	if n <= 0 || n%4 != 0 {
		t.Fatalf("emitted %d bytes, want a positive multiple of 4", n)
	}
	return code[:n]
}

func words(code []byte) []uint32 {
	ws := make([]uint32, len(code)/4)
	for i := range ws {
		ws[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return ws
}

func TestARM64Encoding(t *testing.T) {
	code := emitARM64(t, 0x00007fff12345678)

	want := []uint32{
		0xa9bf53f3, // stp x19, x20, [sp, #-16]!
		0xa9bf5bf5, // stp x21, x22, [sp, #-16]!
		0xd28acf13, // movz x19, #0x5678
		0xf2a24693, // movk x19, #0x1234, lsl #16
		0xf2cffff3, // movk x19, #0x7fff, lsl #32
		0xf2e00013, // movk x19, #0x0, lsl #48
		0xd2802814, // movz x20, #320
		0xaa0003f5, // mov x21, x0
		0x2a0503f6, // mov w22, w5
		0x7100007f, // cmp w3, #0
		0x5400014b, // b.lt epilogue
		0x53107ec8, // lsr w8, w22, #16
		0x12001908, // and w8, w8, #127
		0x38686829, // ldrb w9, [x1, x8]
		0x38696a69, // ldrb w9, [x19, x9]
		0x390002a9, // strb w9, [x21]
		0x8b1402b5, // add x21, x21, x20
		0x0b0402d6, // add w22, w22, w4
		0x71000463, // subs w3, w3, #1
		0x54ffff0a, // b.ge loop (-8 instructions)
		0xa8c15bf5, // ldp x21, x22, [sp], #16
		0xa8c153f3, // ldp x19, x20, [sp], #16
		0xd65f03c0, // ret
	}

	got := words(code)
	if len(got) != len(want) {
		t.Fatalf("emitted %d instructions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruction %d = %#08x, want %#08x", i, got[i], want[i])
		}
	}
}

func TestARM64ImmediateNotTruncated(t *testing.T) {
	// Colormap tables may live anywhere in a 64-bit address space: all four
	// 16-bit chunks must survive into the MOVZ/MOVK sequence.
	cmap := uintptr(0xdeadbeefcafe0123)
	ws := words(emitARM64(t, cmap))

	for i, shift := range []uint{0, 16, 32, 48} {
		word := ws[2+i]
		imm := uint16(word >> 5)
		want := uint16(cmap >> shift)
		if imm != want {
			t.Errorf("chunk %d: imm16 = %#x, want %#x", i, imm, want)
		}
	}
}

func TestARM64PrologueEpilogueSymmetry(t *testing.T) {
	// Clobbering a callee-saved register corrupts the caller silently, so
	// the save and restore sets must agree exactly.
	ws := words(emitARM64(t, 0x1000))

	pairRegs := func(w uint32) (int, int) {
		return int(w & 0x1f), int(w >> 10 & 0x1f)
	}

	// STP/LDP to SP carry Rn=31 in bits 9-5.
	const (
		stpPreSP  = 0xa9800000 | 31<<5
		ldpPostSP = 0xa8c00000 | 31<<5
	)

	saved := map[int]bool{}
	for _, w := range ws[:2] {
		if w&0xffc003e0 != stpPreSP {
			t.Fatalf("prologue word %#08x is not STP [SP]!", w)
		}
		rt, rt2 := pairRegs(w)
		if rt == rt2 {
			t.Fatalf("STP saves the same register twice: x%d", rt)
		}
		saved[rt] = true
		saved[rt2] = true
	}

	restored := map[int]bool{}
	for _, w := range ws[len(ws)-3 : len(ws)-1] {
		if w&0xffc003e0 != ldpPostSP {
			t.Fatalf("epilogue word %#08x is not LDP [SP]", w)
		}
		rt, rt2 := pairRegs(w)
		restored[rt] = true
		restored[rt2] = true
	}

	for r := range saved {
		if !restored[r] {
			t.Errorf("x%d saved but never restored", r)
		}
	}
	for r := range restored {
		if !saved[r] {
			t.Errorf("x%d restored but never saved", r)
		}
	}

	if ws[len(ws)-1] != 0xd65f03c0 {
		t.Errorf("last instruction = %#08x, want ret", ws[len(ws)-1])
	}
}

func TestARM64RebakeChangesOnlyImmediate(t *testing.T) {
	a := emitARM64(t, 0x1111222233334444)
	b := emitARM64(t, 0x5555666677778888)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}

	// The immediate-load sequence occupies instructions 2-5.
	if bytes.Equal(a[8:24], b[8:24]) {
		t.Error("immediate sequence unchanged across different colormaps")
	}
	if !bytes.Equal(a[:8], b[:8]) || !bytes.Equal(a[24:], b[24:]) {
		t.Error("code outside the immediate sequence changed")
	}
}
