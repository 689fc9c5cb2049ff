package memdump

import (
	"strings"
	"testing"

	"github.com/andrea010901/interp"
)

func testLoc() interp.SourceLoc {
	return interp.SourceLoc{File: "test.cpp", Line: 1}
}

func pointDesc() *interp.Descriptor {
	rec := interp.NewRecord(interp.NewDecl("Point", testLoc()), false)
	rec.AddField("a", interp.NewPrimitiveDescriptor(interp.NewDecl("a", testLoc()), interp.PrimInt32))
	rec.AddField("b", interp.NewPrimitiveDescriptor(interp.NewDecl("b", testLoc()), interp.PrimFloat32))
	return interp.NewRecordDescriptor(interp.NewDecl("p", testLoc()), rec)
}

func fieldPtr(t *testing.T, b *interp.Block, name string) *interp.Pointer {
	t.Helper()
	p := interp.NewPointer(b)
	f, ok := p.GetRecord().FieldByName(name)
	if !ok {
		t.Fatalf("no field %q", name)
	}
	return p.AtField(f.Offset)
}

func TestBlockDump(t *testing.T) {
	b := interp.NewBlock(pointDesc())
	fieldPtr(t, b, "a").Initialize()

	out := Block(b, Options{})
	for _, want := range []string{"struct Point", "live", "OFFSET", "a", "b", "int32", "float32", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("uncolored dump contains ANSI escapes")
	}

	// Rendering is deterministic.
	if again := Block(b, Options{}); again != out {
		t.Error("dump not deterministic")
	}
}

func TestBlockDump_Array(t *testing.T) {
	desc := interp.NewPrimitiveArrayDescriptor(interp.NewDecl("arr", testLoc()), interp.PrimInt32, 3)
	b := interp.NewBlock(desc)
	interp.NewPointer(b).AtIndex(1).Initialize()

	out := Block(b, Options{})
	for _, want := range []string{"int32[3]", "[0]", "[1]", "[2]"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	var elem1 string
	for _, ln := range lines {
		if strings.Contains(ln, "[1]") {
			elem1 = ln
		}
	}
	if !strings.Contains(elem1, "yes") {
		t.Errorf("initialized element not marked:\n%s", out)
	}
}

func TestBlockDump_Color(t *testing.T) {
	b := interp.NewBlock(pointDesc())
	out := Block(b, Options{Color: true})
	if !strings.Contains(out, "\x1b[32m") {
		t.Error("colored dump has no green escape")
	}
	// Alignment ignores escape bytes, so both renderings line up the same.
	plain := Block(b, Options{})
	if len(strings.Split(out, "\n")) != len(strings.Split(plain, "\n")) {
		t.Error("color changed the table shape")
	}
}

func TestPointerDump(t *testing.T) {
	b := interp.NewBlock(pointDesc())
	p := fieldPtr(t, b, "b")

	out := Pointer(p, Options{})
	for _, want := range []string{"flags:", "field", "offset:", "names:", ".b"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "!initialized") {
		t.Errorf("uninitialized field not flagged:\n%s", out)
	}
}

func TestPointerDump_Null(t *testing.T) {
	out := Pointer(interp.NewPointer(nil), Options{})
	if !strings.Contains(out, "nullptr") {
		t.Errorf("null dump = %q", out)
	}
	if strings.Contains(out, "flags:") {
		t.Error("null pointer must not render flags")
	}
}

func TestStripANSI(t *testing.T) {
	in := "\x1b[32myes\x1b[0m"
	if got := stripANSI(in); got != "yes" {
		t.Errorf("stripANSI = %q", got)
	}
}
