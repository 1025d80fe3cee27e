package codegen

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func emitAMD64(t *testing.T, cmap uintptr) []byte {
	t.Helper()
	code := make([]byte, 4096)
	n := amd64Backend{}.Emit(code, cmap, 320)
	if n <= 0 {
		t.Fatalf("emitted %d bytes", n)
	}
	return code[:n]
}

func TestAMD64Encoding(t *testing.T) {
	code := emitAMD64(t, 0x00007fff12345678)

	want := []byte{
		0x41, 0x54, // push r12
		0x41, 0x55, // push r13
		0x49, 0xbc, 0x78, 0x56, 0x34, 0x12, 0xff, 0x7f, 0x00, 0x00, // mov r12, imm64
		0x41, 0xbd, 0x40, 0x01, 0x00, 0x00, // mov r13d, 320
		0x85, 0xff, // test edi, edi
		0x78, 0x1e, // js epilogue
		0x44, 0x89, 0xc2, // mov edx, r8d
		0xc1, 0xea, 0x10, // shr edx, 16
		0x83, 0xe2, 0x7f, // and edx, 127
		0x0f, 0xb6, 0x14, 0x13, // movzx edx, byte [rbx+rdx]
		0x41, 0x0f, 0xb6, 0x14, 0x14, // movzx edx, byte [r12+rdx]
		0x88, 0x10, // mov [rax], dl
		0x4c, 0x01, 0xe8, // add rax, r13
		0x41, 0x01, 0xf0, // add r8d, esi
		0xff, 0xcf, // dec edi
		0x79, 0xe2, // jns loop
		0x41, 0x5d, // pop r13
		0x41, 0x5c, // pop r12
		0xc3, // ret
	}

	if !bytes.Equal(code, want) {
		t.Fatalf("emitted code mismatch\n got %x\nwant %x", code, want)
	}
}

func TestAMD64ImmediateNotTruncated(t *testing.T) {
	// The colormap pointer goes in as a full 8-byte immediate after the
	// two pushes and the REX.W mov opcode.
	cmap := uintptr(0xdeadbeefcafe0123)
	code := emitAMD64(t, cmap)

	got := binary.LittleEndian.Uint64(code[6:14])
	if got != uint64(cmap) {
		t.Errorf("baked immediate = %#x, want %#x", got, cmap)
	}
}

func TestAMD64PrologueEpilogueSymmetry(t *testing.T) {
	code := emitAMD64(t, 0x1000)

	pushes := []byte{code[1] & 7, code[3] & 7}
	pops := []byte{code[len(code)-4] & 7, code[len(code)-2] & 7}

	if code[0] != 0x41 || code[2] != 0x41 {
		t.Fatal("prologue is not two REX.B pushes")
	}
	if code[len(code)-5] != 0x41 || code[len(code)-3] != 0x41 {
		t.Fatal("epilogue is not two REX.B pops")
	}
	if pushes[0] != pops[1] || pushes[1] != pops[0] {
		t.Errorf("pops %v do not mirror pushes %v", pops, pushes)
	}
	if code[len(code)-1] != 0xc3 {
		t.Errorf("last byte = %#x, want ret", code[len(code)-1])
	}
}

func TestAMD64RebakeChangesOnlyImmediate(t *testing.T) {
	a := emitAMD64(t, 0x1111222233334444)
	b := emitAMD64(t, 0x5555666677778888)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	if bytes.Equal(a[6:14], b[6:14]) {
		t.Error("immediate unchanged across different colormaps")
	}
	if !bytes.Equal(a[:6], b[:6]) || !bytes.Equal(a[14:], b[14:]) {
		t.Error("code outside the immediate changed")
	}
}
