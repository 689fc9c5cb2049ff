package interp

import (
	"fmt"
	"io"
	"strings"
)

// Pointer is a navigable handle to a memory block, live or dead.
//
// In the simplest form a Pointer has a block and both base and offset
// are 0, addressing the block's root object directly. The base field
// selects the subobject the pointer currently treats as its navigation
// root and gives access to that subobject's metadata: composite
// subobjects are preceded by an inline descriptor slot, primitive array
// payloads by an init map slot. The offset field addresses the exact
// position within the block.
//
//	block                        offset
//	│                              │
//	▼                              ▼
//	┌────────────┬─────────┬────────────────────────────┐
//	│ InlineDesc │ InitMap │ actual data                │
//	└────────────┴─────────┴────────────────────────────┘
//	             ▲
//	             │
//	            base
//
// Two mode flags replace the sentinel offsets of the classic encoding:
// rootMode views the whole block as an array of one element (offset then
// carries a byte position, with the declared size meaning one past the
// whole object), and pastEnd marks an element one past the end of its
// array, valid for comparison and arithmetic but never for dereference.
//
// Every pointer addressing a block is linked into that block's registry
// when created and must be released when discarded; the registry is what
// keeps a dead block's storage alive until the last referent is gone.
type Pointer struct {
	pointee *Block
	base    uint32
	offset  uint32

	rootMode bool
	pastEnd  bool
}

// NewPointer returns the root pointer for a block. A nil block yields
// the null pointer.
func NewPointer(b *Block) *Pointer {
	return newPointer(b, 0, 0, false, false)
}

func newPointer(b *Block, base, offset uint32, rootMode, pastEnd bool) *Pointer {
	p := &Pointer{pointee: b, base: base, offset: offset, rootMode: rootMode, pastEnd: pastEnd}
	if b != nil {
		b.link(p)
	}
	return p
}

// Clone creates an independent handle to the same position.
func (p *Pointer) Clone() *Pointer {
	return newPointer(p.pointee, p.base, p.offset, p.rootMode, p.pastEnd)
}

// Release unlinks the pointer from its block's registry. A dead block
// whose registry empties is reclaimed. The pointer becomes the null
// pointer and must not be navigated afterwards.
func (p *Pointer) Release() {
	if p.pointee == nil {
		return
	}
	p.pointee.unlink(p)
	p.pointee = nil
	p.base = 0
	p.offset = 0
	p.rootMode = false
	p.pastEnd = false
}

// Equals reports positional equality. Only for tests.
func (p *Pointer) Equals(o *Pointer) bool {
	return p.pointee == o.pointee && p.base == o.base && p.offset == o.offset &&
		p.rootMode == o.rootMode && p.pastEnd == o.pastEnd
}

// AtIndex returns the pointer to element idx of the array this pointer
// is rooted at. No bounds check is performed; the caller validates idx
// against the descriptor's element count. Indexing one past the declared
// size yields a one-past-end pointer.
func (p *Pointer) AtIndex(idx uint32) *Pointer {
	if p.rootMode {
		return newPointer(p.pointee, 0, p.declDesc().size, true, false)
	}
	off := idx * p.ElemSize()
	if p.fieldDesc().elemDesc != nil {
		off += inlineDescSize
	} else {
		off += initMapSize
	}
	return newPointer(p.pointee, p.base, p.base+off, false, false)
}

// AtField descends into the field whose data lives at byte offset off
// from the current position. The caller verifies the offset against the
// record layout.
func (p *Pointer) AtField(off uint32) *Pointer {
	f := p.offset + off
	return newPointer(p.pointee, f, f, false, false)
}

// AtFieldSub subtracts off from the current base and offset, undoing an
// AtField step.
func (p *Pointer) AtFieldSub(off uint32) *Pointer {
	if off > p.offset {
		panic("field offset exceeds pointer offset")
	}
	o := p.offset - off
	return newPointer(p.pointee, o, o, false, false)
}

// Narrow restricts the scope of the pointer one level toward element
// storage: a root-mode pointer enters the block, an array pointer moves
// to its first element. Null and unknown-size-array pointers are
// returned unchanged.
func (p *Pointer) Narrow() *Pointer {
	if p.IsZero() || p.IsUnknownSizeArray() {
		return p.Clone()
	}

	// Root-mode pointer: enter the block.
	if p.rootMode {
		if p.offset == 0 {
			return newPointer(p.pointee, 0, 0, false, false)
		}
		return newPointer(p.pointee, 0, 0, false, true)
	}

	// One past end: keep the marker.
	if p.IsOnePastEnd() {
		return newPointer(p.pointee, p.base, 0, false, true)
	}

	// Primitive arrays have no per-element inline descriptors. If the
	// pointer already addresses an element there is nothing to do;
	// otherwise step past the init map slot to the first element.
	if p.InPrimitiveArray() {
		if p.offset != p.base {
			return p.Clone()
		}
		return newPointer(p.pointee, p.base, p.offset+initMapSize, false, false)
	}

	// Field or composite array element: enter it.
	if p.offset != p.base {
		return newPointer(p.pointee, p.offset, p.offset, false, false)
	}

	// Enter the first element of a composite array.
	if !p.fieldDesc().isArray {
		return p.Clone()
	}
	nb := p.base + inlineDescSize
	return newPointer(p.pointee, nb, nb, false, false)
}

// Expand steps back out to the containing array, undoing Narrow.
func (p *Pointer) Expand() *Pointer {
	if p.IsElementPastEnd() {
		// Revert to an outer one-past-end pointer.
		var adjust uint32
		if p.InPrimitiveArray() {
			adjust = initMapSize
		} else {
			adjust = inlineDescSize
		}
		return newPointer(p.pointee, p.base, p.base+p.GetSize()+adjust, false, false)
	}

	// Do not step out of array elements.
	if p.base != p.offset {
		return p.Clone()
	}

	// At the block root: view the whole object as an array of one.
	if p.base == 0 && !p.rootMode {
		return newPointer(p.pointee, 0, 0, true, false)
	}
	if p.rootMode {
		return p.Clone()
	}

	// Step into the containing array, if inside one.
	next := p.base - p.inlineDesc().Offset
	var desc *Descriptor
	if next == 0 {
		desc = p.declDesc()
	} else {
		desc = p.descriptorAt(next).Desc
	}
	if !desc.isArray {
		return p.Clone()
	}
	return newPointer(p.pointee, next, p.offset, false, false)
}

// GetBase returns a pointer to the object of which this pointer is a
// field. The pointer must address the start of an inner subobject.
func (p *Pointer) GetBase() *Pointer {
	if p.rootMode {
		if !p.pastEnd {
			panic("cannot get base of a block")
		}
		return newPointer(p.pointee, 0, 0, true, false)
	}
	if p.offset != p.base {
		panic("not an inner field")
	}
	nb := p.base - p.inlineDesc().Offset
	return newPointer(p.pointee, nb, nb, false, false)
}

// GetArray returns the pointer to the array this element belongs to.
func (p *Pointer) GetArray() *Pointer {
	if p.rootMode {
		if p.offset == 0 || p.pastEnd {
			panic("not an array element")
		}
		return newPointer(p.pointee, 0, 0, true, false)
	}
	if p.offset == p.base {
		panic("not an array element")
	}
	return newPointer(p.pointee, p.base, p.base, false, false)
}

// GetDeclPtr returns the root pointer for the same block, discarding
// all navigation state.
func (p *Pointer) GetDeclPtr() *Pointer {
	return NewPointer(p.pointee)
}

// IsZero reports whether this is the null pointer.
func (p *Pointer) IsZero() bool { return p.pointee == nil }

// IsLive reports whether the referenced block exists and its scope has
// not ended. Recomputed from block state on every call.
func (p *Pointer) IsLive() bool { return p.pointee != nil && !p.pointee.dead }

// IsField reports whether the pointer addresses a subobject rather than
// the block root.
func (p *Pointer) IsField() bool { return p.base != 0 && !p.rootMode }

// Accessors for information about the declaration site.
func (p *Pointer) declDesc() *Descriptor {
	if p.pointee == nil {
		panic("null pointer")
	}
	return p.pointee.desc
}

// GetDeclDesc returns the descriptor of the whole declared object.
func (p *Pointer) GetDeclDesc() *Descriptor { return p.declDesc() }

// GetDeclLoc returns the source location of the declaration.
func (p *Pointer) GetDeclLoc() SourceLoc { return p.declDesc().decl.Loc }

// GetDeclID returns the block's global declaration ID, if any.
func (p *Pointer) GetDeclID() (uint32, bool) {
	if p.pointee == nil {
		panic("null pointer")
	}
	return p.pointee.DeclID()
}

// fieldDesc returns the descriptor of the innermost subobject.
func (p *Pointer) fieldDesc() *Descriptor {
	if p.base == 0 || p.rootMode {
		return p.declDesc()
	}
	return p.inlineDesc().Desc
}

// GetFieldDesc returns the descriptor of the innermost subobject.
func (p *Pointer) GetFieldDesc() *Descriptor { return p.fieldDesc() }

// GetPrimType reports the primitive type at the current position: the
// element type inside a primitive array, otherwise the innermost
// field's own type if primitive.
func (p *Pointer) GetPrimType() (PrimType, bool) {
	return p.fieldDesc().PrimType()
}

func (p *Pointer) inlineDesc() *InlineDescriptor { return p.descriptorAt(p.base) }

func (p *Pointer) descriptorAt(off uint32) *InlineDescriptor {
	if off == 0 {
		panic("not a nested pointer")
	}
	in := p.pointee.inline[off]
	if in == nil {
		panic("no inline descriptor at offset")
	}
	return in
}

// ElemSize returns the element stride of the innermost field. In root
// mode the whole object counts as one element.
func (p *Pointer) ElemSize() uint32 {
	if p.rootMode {
		return p.declDesc().size
	}
	return p.fieldDesc().elemSize
}

// GetSize returns the total payload size of the innermost field.
func (p *Pointer) GetSize() uint32 { return p.fieldDesc().size }

// GetOffset returns the logical offset into the innermost field, with
// metadata prefixes subtracted.
func (p *Pointer) GetOffset() uint32 {
	if p.pastEnd {
		panic("invalid offset")
	}
	if p.rootMode {
		return p.offset
	}
	var adjust uint32
	if p.offset != p.base {
		if p.fieldDesc().elemDesc != nil {
			adjust = inlineDescSize
		} else {
			adjust = initMapSize
		}
	}
	return p.offset - p.base - adjust
}

// GetByteOffset returns the raw byte offset from the block start.
func (p *Pointer) GetByteOffset() uint32 { return p.offset }

// IsArrayRoot reports whether the pointer addresses an array but not
// one of its elements.
func (p *Pointer) IsArrayRoot() bool {
	return !p.rootMode && p.InArray() && p.offset == p.base
}

// InArray reports whether the innermost field is an array.
func (p *Pointer) InArray() bool { return p.fieldDesc().isArray }

// InPrimitiveArray reports whether the innermost field is an array of
// primitives.
func (p *Pointer) InPrimitiveArray() bool { return p.fieldDesc().isPrimitiveArray() }

// IsUnknownSizeArray reports whether the innermost field is an array of
// unknown bound.
func (p *Pointer) IsUnknownSizeArray() bool { return p.fieldDesc().unknownSize }

// IsArrayElement reports whether the pointer addresses an array element.
func (p *Pointer) IsArrayElement() bool { return p.InArray() && p.base != p.offset }

// IsRoot reports whether the pointer addresses the block directly.
func (p *Pointer) IsRoot() bool {
	return (p.base == 0 || p.rootMode) && p.offset == 0 && !p.pastEnd
}

// GetType returns the descriptor of the type at the current position:
// the element descriptor for composite array elements, otherwise the
// innermost field's own descriptor. Primitive array elements expose
// their element type through GetPrimType instead.
func (p *Pointer) GetType() *Descriptor {
	desc := p.fieldDesc()
	if desc.elemDesc != nil && p.offset != p.base {
		return desc.elemDesc
	}
	return desc
}

// GetRecord returns the record layout of the addressed object, nil for
// non-records.
func (p *Pointer) GetRecord() *Record { return p.fieldDesc().record }

// GetElemRecord returns the element record type of a composite array.
func (p *Pointer) GetElemRecord() *Record {
	elem := p.fieldDesc().elemDesc
	if elem == nil {
		return nil
	}
	return elem.record
}

// GetField returns the record field the pointer addresses, if the
// innermost descriptor was created for one.
func (p *Pointer) GetField() *Field { return p.fieldDesc().field }

// IsUnion reports whether the addressed object is a union.
func (p *Pointer) IsUnion() bool {
	if p.pointee == nil {
		return false
	}
	rec := p.GetRecord()
	return rec != nil && rec.isUnion
}

// Storage class queries.
func (p *Pointer) IsExtern() bool { return p.pointee != nil && p.pointee.isExtern }

func (p *Pointer) IsStatic() bool {
	if p.pointee == nil {
		panic("null pointer")
	}
	return p.pointee.isStatic
}

func (p *Pointer) IsTemporary() bool {
	if p.pointee == nil {
		panic("null pointer")
	}
	return p.pointee.isTemp
}

func (p *Pointer) IsStaticTemporary() bool { return p.IsStatic() && p.IsTemporary() }

// IsMutable reports whether the addressed field was declared mutable.
func (p *Pointer) IsMutable() bool {
	return !p.rootMode && p.base != 0 && p.inlineDesc().IsFieldMutable
}

// IsInitialized reports whether the addressed object has been written.
func (p *Pointer) IsInitialized() bool {
	if p.pointee == nil || p.pastEnd {
		return false
	}
	if p.InPrimitiveArray() && p.offset != p.base {
		desc := p.fieldDesc()
		if desc.numElems == 0 {
			return true
		}
		if p.IsOnePastEnd() {
			return false
		}
		im := p.pointee.initMap(p.base)
		if im == nil {
			return false
		}
		return im.IsInitialized(uint32(p.GetIndex()))
	}
	if p.base == 0 || p.rootMode {
		return true
	}
	return p.inlineDesc().IsInitialized
}

// IsActive reports whether the addressed subobject is the active member
// of its enclosing union, true outside unions.
func (p *Pointer) IsActive() bool {
	return p.base == 0 || p.rootMode || p.inlineDesc().IsActive
}

// IsBaseClass reports whether the pointer addresses a base-class
// subobject.
func (p *Pointer) IsBaseClass() bool { return p.IsField() && p.inlineDesc().IsBase }

// IsDummy reports whether the pointer addresses an opaque stand-in for
// untrackable storage.
func (p *Pointer) IsDummy() bool { return p.declDesc().isDummy }

// IsConst reports whether the addressed object or subobject is const.
func (p *Pointer) IsConst() bool {
	if p.base == 0 || p.rootMode {
		return p.declDesc().isConst
	}
	return p.inlineDesc().IsConst
}

// GetNumElems returns the number of elements of the innermost array.
func (p *Pointer) GetNumElems() uint32 {
	es := p.ElemSize()
	if es == 0 {
		return 0
	}
	return p.GetSize() / es
}

// Block returns the referenced block.
func (p *Pointer) Block() *Block { return p.pointee }

// GetIndex returns the logical array index of the addressed element. A
// one-past-end element reports 1 past a narrowed single element; a
// narrowed composite array element reports 0.
func (p *Pointer) GetIndex() int64 {
	if p.IsElementPastEnd() {
		return 1
	}
	if !p.rootMode && p.base > 0 && p.base == p.offset {
		return 0
	}
	if es := p.ElemSize(); es != 0 {
		return int64(p.GetOffset() / es)
	}
	return 0
}

// IsOnePastEnd reports whether the pointer addresses one element past
// the end of its array.
func (p *Pointer) IsOnePastEnd() bool {
	if p.pointee == nil {
		return false
	}
	if p.pastEnd {
		return true
	}
	if p.IsUnknownSizeArray() {
		return false
	}
	return p.GetSize() == p.GetOffset()
}

// IsElementPastEnd reports whether the pointer carries the element
// past-end marker.
func (p *Pointer) IsElementPastEnd() bool { return p.pastEnd }

// derefOffset computes the byte position Load and Store access.
func (p *Pointer) derefOffset() uint32 {
	if p.IsArrayRoot() {
		return p.base + initMapSize
	}
	return p.offset
}

// Load reads the primitive value at the current position. The pointer
// must be live and not one past the end; violating that is an evaluator
// bug, not a diagnosable condition.
func (p *Pointer) Load() Value {
	if !p.IsLive() {
		panic("deref of non-live pointer")
	}
	if p.pastEnd {
		panic("deref of one-past-end pointer")
	}
	off := p.derefOffset()
	if off >= p.pointee.desc.allocSize {
		panic("deref past the end of the block")
	}
	return p.pointee.values[off]
}

// Store writes the primitive value at the current position. Same
// preconditions as Load; initialization state is tracked separately via
// Initialize.
func (p *Pointer) Store(v Value) {
	if !p.IsLive() {
		panic("store through non-live pointer")
	}
	if p.pastEnd {
		panic("store through one-past-end pointer")
	}
	off := p.derefOffset()
	if off >= p.pointee.desc.allocSize {
		panic("store past the end of the block")
	}
	p.pointee.values[off] = v
}

// Elem reads element i of a primitive array block directly, skipping
// the init map slot.
func (p *Pointer) Elem(i uint32) Value {
	if p.pointee == nil {
		panic("null pointer")
	}
	if i >= p.GetNumElems() {
		panic("element index out of range")
	}
	return p.pointee.values[initMapSize+i*p.declDesc().elemSize]
}

// SetElem writes element i of a primitive array block directly.
func (p *Pointer) SetElem(i uint32, v Value) {
	if p.pointee == nil {
		panic("null pointer")
	}
	if i >= p.GetNumElems() {
		panic("element index out of range")
	}
	p.pointee.values[initMapSize+i*p.declDesc().elemSize] = v
}

// Initialize marks the addressed subobject or array element as written.
func (p *Pointer) Initialize() {
	if p.pointee == nil {
		panic("initialize through null pointer")
	}
	desc := p.fieldDesc()
	if desc.isPrimitiveArray() {
		if desc.unknownSize || desc.numElems == 0 {
			return
		}
		im := p.pointee.ensureInitMap(p.base, desc.numElems)
		im.Initialize(uint32(p.GetIndex()))
		return
	}
	if p.base != 0 && !p.rootMode {
		p.inlineDesc().IsInitialized = true
	}
}

// Activate marks the addressed subobject as the active member of its
// enclosing union and deactivates its siblings, recursively. Outside a
// union it only sets the flag.
func (p *Pointer) Activate() {
	if p.base == 0 || p.rootMode {
		return
	}
	in := p.inlineDesc()
	in.IsActive = true

	parentBase := p.base - in.Offset
	var parentRec *Record
	if parentBase == 0 {
		parentRec = p.declDesc().record
	} else {
		parentRec = p.descriptorAt(parentBase).Desc.record
	}
	if parentRec == nil || !parentRec.isUnion {
		return
	}
	for _, f := range parentRec.fields {
		sub := parentBase + f.Offset
		if sub == p.base {
			continue
		}
		p.pointee.deactivateSubtree(sub, f.Desc)
	}
}

// Deactivate marks the addressed subobject inactive, cascading into all
// of its nested subobjects so a later activation of a sibling union
// member starts from a clean slate.
func (p *Pointer) Deactivate() {
	if p.pointee == nil {
		panic("deactivate through null pointer")
	}
	if p.base == 0 || p.rootMode {
		p.pointee.deactivateSubtree(0, p.declDesc())
		return
	}
	p.pointee.deactivateSubtree(p.base, p.inlineDesc().Desc)
}

// Compare orders two pointers. Pointers into unrelated objects are
// unordered; the evaluator diagnoses such comparisons.
func (p *Pointer) Compare(o *Pointer) ComparisonResult {
	if !HasSameBase(p, o) {
		return CmpUnordered
	}
	// The element past-end marker orders after every real offset; its own
	// offset field is meaningless.
	switch {
	case p.pastEnd && o.pastEnd:
		return CmpEqual
	case p.pastEnd:
		return CmpGreater
	case o.pastEnd:
		return CmpLess
	}
	switch {
	case p.offset < o.offset:
		return CmpLess
	case p.offset > o.offset:
		return CmpGreater
	default:
		return CmpEqual
	}
}

// HasSameBase reports whether two pointers share the same root object
// and are therefore comparable.
func HasSameBase(a, b *Pointer) bool {
	return a.pointee == b.pointee
}

// HasSameArray reports whether two pointers index the same array and can
// be subtracted.
func HasSameArray(a, b *Pointer) bool {
	return HasSameBase(a, b) && a.base == b.base && a.fieldDesc().isArray
}

// ToValue converts the pointer into the generic constant-value
// representation as an address.
func (p *Pointer) ToValue() Value {
	if p.pointee == nil {
		return NewNullPtrValue()
	}
	return Value{Kind: ValPtr, Ptr: &LValue{
		Decl:       p.declDesc().decl,
		Path:       p.pathSegments(),
		ByteOffset: p.offset,
		OnePastEnd: p.IsOnePastEnd(),
	}}
}

// pathSegments rebuilds the navigation path from the declaration to the
// current position by climbing the inline descriptor chain.
func (p *Pointer) pathSegments() []string {
	if p.rootMode || p.pastEnd {
		return nil
	}
	var segs []string
	if p.base != 0 || p.offset != p.base {
		if p.InArray() && p.offset != p.base {
			segs = append(segs, fmt.Sprintf("[%d]", p.GetIndex()))
		}
	}
	b := p.base
	for b != 0 {
		in := p.pointee.inline[b]
		if in == nil {
			break
		}
		parent := b - in.Offset
		var parentDesc *Descriptor
		if parent == 0 {
			parentDesc = p.declDesc()
		} else if pin := p.pointee.inline[parent]; pin != nil {
			parentDesc = pin.Desc
		}
		if parentDesc != nil && parentDesc.isArray {
			idx := (b - parent - inlineDescSize) / parentDesc.elemSize
			segs = append(segs, fmt.Sprintf("[%d]", idx))
		} else if in.IsBase {
			segs = append(segs, "::"+in.Desc.decl.Name)
		} else {
			segs = append(segs, "."+in.Desc.decl.Name)
		}
		b = parent
	}
	// Reverse into declaration order.
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs
}

// ToRValue performs the load implied by an lvalue-to-rvalue conversion.
// It fails, rather than panics, when the referenced storage is dead, a
// dummy, one past the end, or not fully initialized; the evaluator turns
// the failure into a diagnostic.
func (p *Pointer) ToRValue(ctx *EvalContext) (Value, bool) {
	if p.IsZero() || !p.IsLive() || p.IsOnePastEnd() || p.IsDummy() {
		return Value{}, false
	}
	return p.loadValue(ctx)
}

func (p *Pointer) loadValue(ctx *EvalContext) (Value, bool) {
	desc := p.fieldDesc()

	// Element of a primitive array.
	if desc.isPrimitiveArray() && p.offset != p.base {
		if !p.IsInitialized() {
			return Value{}, false
		}
		return p.Load(), true
	}

	switch {
	case desc.unknownSize:
		return Value{}, false

	case desc.isPrimitiveArray():
		elems := make([]Value, 0, desc.numElems)
		for i := uint32(0); i < desc.numElems; i++ {
			ep := &Pointer{pointee: p.pointee, base: p.base, offset: p.base + initMapSize + i*desc.elemSize}
			if !ep.IsInitialized() {
				return Value{}, false
			}
			elems = append(elems, ep.Load())
		}
		return NewArrayValue(elems), true

	case desc.elemDesc != nil:
		elems := make([]Value, 0, desc.numElems)
		for i := uint32(0); i < desc.numElems; i++ {
			eb := p.base + inlineDescSize + i*desc.elemSize
			ep := &Pointer{pointee: p.pointee, base: eb, offset: eb}
			v, ok := ep.loadValue(ctx)
			if !ok {
				return Value{}, false
			}
			elems = append(elems, v)
		}
		return NewArrayValue(elems), true

	case desc.record != nil:
		rec := desc.record
		if rec.isUnion {
			for _, f := range rec.fields {
				fb := p.base + f.Offset
				in := p.pointee.inline[fb]
				if in == nil || !in.IsActive {
					continue
				}
				fp := &Pointer{pointee: p.pointee, base: fb, offset: fb}
				v, ok := fp.loadRecordField(ctx, in)
				if !ok {
					return Value{}, false
				}
				return NewStructValue([]FieldValue{{Name: f.Name, Value: v}}), true
			}
			// No active member: nothing to load.
			return Value{}, false
		}
		fields := make([]FieldValue, 0, len(rec.bases)+len(rec.fields))
		for _, bs := range rec.bases {
			bb := p.base + bs.Offset
			bp := &Pointer{pointee: p.pointee, base: bb, offset: bb}
			v, ok := bp.loadValue(ctx)
			if !ok {
				return Value{}, false
			}
			fields = append(fields, FieldValue{Name: bs.Record.Name(), Value: v})
		}
		for _, f := range rec.fields {
			fb := p.base + f.Offset
			in := p.pointee.inline[fb]
			fp := &Pointer{pointee: p.pointee, base: fb, offset: fb}
			v, ok := fp.loadRecordField(ctx, in)
			if !ok {
				return Value{}, false
			}
			fields = append(fields, FieldValue{Name: f.Name, Value: v})
		}
		return NewStructValue(fields), true

	default:
		// Scalar at the block root or a primitive field.
		if !p.IsInitialized() {
			return Value{}, false
		}
		return p.Load(), true
	}
}

func (p *Pointer) loadRecordField(ctx *EvalContext, in *InlineDescriptor) (Value, bool) {
	if in.Desc.isPrimitive && !in.Desc.isArray {
		if !in.IsInitialized {
			return Value{}, false
		}
		return p.Load(), true
	}
	return p.loadValue(ctx)
}

// DiagnosticString renders the pointer the way diagnostics name it,
// e.g. "arr[2]" or "s.b".
func (p *Pointer) DiagnosticString(ctx *EvalContext) string {
	if p.pointee == nil {
		return "nullptr"
	}
	segs := p.pathSegments()
	if ctx != nil && ctx.opts.DiagMaxPathSegments > 0 && len(segs) > ctx.opts.DiagMaxPathSegments {
		segs = append(segs[:ctx.opts.DiagMaxPathSegments:ctx.opts.DiagMaxPathSegments], "...")
	}
	var b strings.Builder
	b.WriteString(p.declDesc().decl.Name)
	for _, seg := range segs {
		b.WriteString(seg)
	}
	if p.pastEnd {
		b.WriteString(" <past-end>")
	}
	return b.String()
}

// IntegerRepresentation returns a stable integer encoding of the
// address, for diagnostics and casts only.
func (p *Pointer) IntegerRepresentation() uint64 {
	if p.pointee == nil {
		return uint64(p.offset)
	}
	return uint64(p.pointee.id)<<32 | uint64(p.offset)
}

// Print writes the raw pointer encoding.
func (p *Pointer) Print(w io.Writer) {
	var b strings.Builder
	if p.pointee == nil {
		b.WriteString("null {")
	} else {
		fmt.Fprintf(&b, "B#%d {", p.pointee.id)
	}
	if p.rootMode {
		b.WriteString("rootptr, ")
	} else {
		fmt.Fprintf(&b, "%d, ", p.base)
	}
	if p.pastEnd {
		b.WriteString("pastend, ")
	} else {
		fmt.Fprintf(&b, "%d, ", p.offset)
	}
	if p.pointee != nil {
		fmt.Fprintf(&b, "%d", p.pointee.desc.size)
	} else {
		b.WriteString("nullptr")
	}
	b.WriteString("}")
	io.WriteString(w, b.String())
}

func (p *Pointer) String() string {
	var b strings.Builder
	p.Print(&b)
	return b.String()
}
