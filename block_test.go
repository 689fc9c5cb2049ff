package interp

import "testing"

func TestBlock_LifetimeStateMachine(t *testing.T) {
	ctx := NewEvalContext(DefaultEvalOptions())
	ctx.PushScope()
	b := ctx.AllocLocal(intArrayDesc(t, 4))
	p := NewPointer(b)

	if b.IsDead() || b.IsReclaimed() {
		t.Fatal("fresh block must be live")
	}
	if !p.IsLive() {
		t.Fatal("pointer into a live block must be live")
	}

	// Scope exit with an outstanding pointer demotes, not reclaims.
	ctx.PopScope()
	if !b.IsDead() {
		t.Fatal("block must be dead after its scope ended")
	}
	if b.IsReclaimed() {
		t.Fatal("referenced block must not be reclaimed")
	}
	if p.IsLive() {
		t.Error("pointer into a dead block must not be live")
	}
	if got := ctx.DeadBlockCount(); got != 1 {
		t.Errorf("dead block count = %d", got)
	}
	if d, ok := ctx.DeadBlockFor(b); !ok || d.Block() != b {
		t.Error("dead-block entry missing")
	}

	// Introspection through the dangling pointer stays safe.
	if got := p.GetFieldDesc().NumElems(); got != 4 {
		t.Errorf("descriptor through dangling pointer = %d elems", got)
	}

	// Releasing the last pointer reclaims the storage.
	p.Release()
	if got := ctx.DeadBlockCount(); got != 0 {
		t.Errorf("dead block count after release = %d", got)
	}
	if !b.IsReclaimed() {
		t.Error("unreferenced dead block must be reclaimed")
	}
}

func TestBlock_DirectReclaim(t *testing.T) {
	ctx := NewEvalContext(DefaultEvalOptions())
	ctx.PushScope()
	b := ctx.AllocLocal(intArrayDesc(t, 4))
	p := NewPointer(b)
	p.Release()
	ctx.PopScope()

	if !b.IsReclaimed() {
		t.Error("unreferenced block must be reclaimed at scope exit")
	}
	if got := ctx.DeadBlockCount(); got != 0 {
		t.Errorf("dead block count = %d", got)
	}
}

func TestBlock_MultiplePointers(t *testing.T) {
	ctx := NewEvalContext(DefaultEvalOptions())
	ctx.PushScope()
	b := ctx.AllocLocal(intArrayDesc(t, 4))
	p1 := NewPointer(b)
	p2 := p1.AtIndex(2)
	if got := b.NumPointers(); got != 2 {
		t.Fatalf("pointer registry size = %d", got)
	}

	ctx.PopScope()
	p1.Release()
	if b.IsReclaimed() {
		t.Fatal("block reclaimed while a pointer remains")
	}
	p2.Release()
	if !b.IsReclaimed() {
		t.Error("block not reclaimed after the last release")
	}
}

func TestBlock_PointerIntoReclaimedPanics(t *testing.T) {
	ctx := NewEvalContext(DefaultEvalOptions())
	ctx.PushScope()
	b := ctx.AllocLocal(intArrayDesc(t, 4))
	ctx.PopScope()
	if !b.IsReclaimed() {
		t.Fatal("expected reclaimed block")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic when linking into a reclaimed block")
		}
	}()
	NewPointer(b)
}

func TestBlock_DynamicLifetime(t *testing.T) {
	ctx := NewEvalContext(DefaultEvalOptions())
	b := ctx.AllocDynamic(intArrayDesc(t, 2))
	if !b.IsDynamic() {
		t.Fatal("expected dynamic storage")
	}
	p := NewPointer(b)
	ctx.Free(b)
	if p.IsLive() {
		t.Error("pointer into freed storage must not be live")
	}
	p.Release()
	if !b.IsReclaimed() {
		t.Error("freed block not reclaimed after release")
	}
}

func TestBlock_Subobjects(t *testing.T) {
	desc := pointDesc(t)
	b := NewBlock(desc)
	subs := b.Subobjects()
	if len(subs) != 2 {
		t.Fatalf("subobject count = %d", len(subs))
	}
	if subs[0].Name != "a" || subs[1].Name != "b" {
		t.Errorf("subobject names = %q, %q", subs[0].Name, subs[1].Name)
	}
	if subs[0].Base != inlineDescSize {
		t.Errorf("first field base = %d", subs[0].Base)
	}

	arr := NewBlock(intArrayDesc(t, 3))
	asubs := arr.Subobjects()
	if len(asubs) != 3 {
		t.Fatalf("array subobject count = %d", len(asubs))
	}
	for i, s := range asubs {
		if s.Index != i || !s.IsPrim || s.Prim != PrimInt32 {
			t.Errorf("element %d = %+v", i, s)
		}
		if s.Initialized {
			t.Errorf("element %d initialized before any write", i)
		}
	}

	NewPointer(arr).AtIndex(1).Initialize()
	asubs = arr.Subobjects()
	if asubs[0].Initialized || !asubs[1].Initialized || asubs[2].Initialized {
		t.Error("init map not reflected in subobject walk")
	}
}

func TestBlock_StorageClasses(t *testing.T) {
	id := uint32(7)
	b := NewBlock(intArrayDesc(t, 1), BlockOpts{IsStatic: true, IsTemp: true, DeclID: &id})
	p := NewPointer(b)
	if !p.IsStatic() || !p.IsTemporary() || !p.IsStaticTemporary() {
		t.Error("storage class flags not reported")
	}
	if got, ok := p.GetDeclID(); !ok || got != 7 {
		t.Errorf("decl ID = %d, %v", got, ok)
	}
	if p.IsExtern() {
		t.Error("block is not extern")
	}
}
