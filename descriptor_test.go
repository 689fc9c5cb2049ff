package interp

import "testing"

func TestDescriptor_PrimitiveSizes(t *testing.T) {
	for _, tc := range []struct {
		prim PrimType
		size uint32
	}{
		{PrimBool, 1},
		{PrimInt16, 2},
		{PrimInt32, 4},
		{PrimFloat64, 8},
	} {
		d := NewPrimitiveDescriptor(NewDecl("x", testLoc()), tc.prim)
		if d.Size() != tc.size || d.ElemSize() != tc.size || d.AllocSize() != tc.size {
			t.Errorf("%s: size=%d elem=%d alloc=%d", tc.prim, d.Size(), d.ElemSize(), d.AllocSize())
		}
	}
}

func TestDescriptor_PrimitiveArrayLayout(t *testing.T) {
	d := intArrayDesc(t, 4)
	if !d.IsArray() || d.ElemDesc() != nil {
		t.Fatal("expected a primitive array")
	}
	if d.Size() != 16 {
		t.Errorf("size = %d", d.Size())
	}
	if d.AllocSize() != initMapSize+16 {
		t.Errorf("alloc size = %d", d.AllocSize())
	}
	if d.NumElems() != 4 || d.ElemSize() != 4 {
		t.Errorf("elems = %d stride = %d", d.NumElems(), d.ElemSize())
	}
}

func TestDescriptor_RecordLayout(t *testing.T) {
	desc := pointDesc(t)
	rec := desc.Record()
	if rec == nil {
		t.Fatal("expected a record")
	}

	fa, ok := rec.FieldByName("a")
	if !ok || fa.Offset != inlineDescSize {
		t.Errorf("field a offset = %d", fa.Offset)
	}
	fb, ok := rec.FieldByName("b")
	if !ok || fb.Offset != inlineDescSize+4+inlineDescSize {
		t.Errorf("field b offset = %d", fb.Offset)
	}
	if desc.Size() != rec.Size() {
		t.Errorf("descriptor size %d != record size %d", desc.Size(), rec.Size())
	}

	if f, ok := rec.FieldAt(fb.Offset); !ok || f.Name != "b" {
		t.Error("FieldAt did not find b")
	}
	if _, ok := rec.FieldByName("nope"); ok {
		t.Error("found a field that does not exist")
	}
}

func TestDescriptor_CompositeArrayStride(t *testing.T) {
	elem := pointDesc(t)
	d := NewCompositeArrayDescriptor(NewDecl("pts", testLoc()), elem, 3)
	wantStride := elem.AllocSize() + inlineDescSize
	if d.ElemSize() != wantStride {
		t.Errorf("stride = %d, want %d", d.ElemSize(), wantStride)
	}
	if d.Size() != 3*wantStride || d.AllocSize() != d.Size() {
		t.Errorf("size = %d alloc = %d", d.Size(), d.AllocSize())
	}
	if d.ElemDesc() != elem {
		t.Error("element descriptor not retained")
	}
	// The array descriptor itself is not a record.
	if d.Record() != nil {
		t.Error("array descriptor must not carry a record")
	}
}

func TestDescriptor_Qualifiers(t *testing.T) {
	d := NewPrimitiveDescriptor(NewDecl("c", testLoc()), PrimInt32, DescOpts{IsConst: true})
	if !d.IsConst() {
		t.Error("const qualifier lost")
	}
	p := NewPointer(NewBlock(d))
	if !p.IsConst() {
		t.Error("const not visible through the pointer")
	}

	dummy := NewDummyDescriptor(NewDecl("ext", testLoc()))
	if !dummy.IsDummy() {
		t.Error("dummy marker lost")
	}
}

func TestDescriptor_String(t *testing.T) {
	for _, tc := range []struct {
		desc *Descriptor
		want string
	}{
		{NewPrimitiveDescriptor(NewDecl("x", testLoc()), PrimInt32), "int32"},
		{intArrayDesc(t, 4), "int32[4]"},
		{pointDesc(t), "struct Point"},
		{NewUnknownSizeArrayDescriptor(NewDecl("u", testLoc()), PrimInt8), "int8[?]"},
	} {
		if got := tc.desc.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestProgram_Interning(t *testing.T) {
	prog := NewProgram()
	builds := 0
	mk := func() *Descriptor {
		builds++
		return intArrayDesc(t, 4)
	}
	d1 := prog.GetOrCreateDescriptor("arr", mk)
	d2 := prog.GetOrCreateDescriptor("arr", mk)
	if d1 != d2 {
		t.Error("descriptor not interned")
	}
	if builds != 1 {
		t.Errorf("builder ran %d times", builds)
	}
	if _, ok := prog.LookupDescriptor("arr"); !ok {
		t.Error("interned descriptor not found")
	}
	if _, ok := prog.LookupDescriptor("other"); ok {
		t.Error("found a descriptor that was never interned")
	}
}

func TestProgram_Records(t *testing.T) {
	prog := NewProgram()
	rec := NewRecord(NewDecl("Point", testLoc()), false)
	if err := prog.RegisterRecord(rec); err != nil {
		t.Fatalf("RegisterRecord: %v", err)
	}
	if err := prog.RegisterRecord(rec); err == nil {
		t.Error("duplicate registration must fail")
	}
	if r, ok := prog.LookupRecord("Point"); !ok || r != rec {
		t.Error("record not found")
	}
}

func TestProgram_Globals(t *testing.T) {
	prog := NewProgram()
	b, err := prog.AllocGlobal("g", intArrayDesc(t, 2))
	if err != nil {
		t.Fatalf("AllocGlobal: %v", err)
	}
	if !b.IsStatic() {
		t.Error("global storage must be static")
	}
	if _, ok := b.DeclID(); !ok {
		t.Error("global block has no decl ID")
	}
	if _, err := prog.AllocGlobal("g", intArrayDesc(t, 2)); err == nil {
		t.Error("duplicate global must fail")
	}
	if got, ok := prog.Global("g"); !ok || got != b {
		t.Error("global not found")
	}
	if prog.NumGlobals() != 1 {
		t.Errorf("global count = %d", prog.NumGlobals())
	}
}
