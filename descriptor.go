package interp

import "fmt"

// Metadata prefixes reserved in a block's offset space. Every nested
// composite subobject is preceded by an inline descriptor slot; a
// primitive array's payload is preceded by an init map slot. The
// metadata itself lives in side tables on the Block, but the prefixes
// participate in all Base/Offset arithmetic so that the layout matches
// the descriptor's static shape.
const (
	inlineDescSize uint32 = 8
	initMapSize    uint32 = 8
)

// SourceLoc identifies where a declaration was written.
type SourceLoc struct {
	File string
	Line int
}

func (l SourceLoc) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Decl is the identity of a declared entity: a variable, a field, a
// record or a temporary. Descriptors keep a Decl so diagnostics can name
// the object they refer to.
type Decl struct {
	Name string
	Loc  SourceLoc
}

// NewDecl creates a declaration identity.
func NewDecl(name string, loc SourceLoc) *Decl {
	return &Decl{Name: name, Loc: loc}
}

// Field is one named member of a record. Offset is the byte offset of
// the field's data within the record layout; the field's inline
// descriptor slot occupies the inlineDescSize bytes before it.
type Field struct {
	Name      string
	Offset    uint32
	Desc      *Descriptor
	IsMutable bool
}

// Base is a base-class subobject of a record.
type Base struct {
	Record *Record
	Offset uint32
	Desc   *Descriptor
}

// Record describes the layout of a class, struct or union: bases first,
// then fields, each preceded by an inline descriptor slot. Union members
// are laid out like struct fields; the overlay is modeled through the
// active flag on their inline descriptors, not through shared storage.
type Record struct {
	decl    *Decl
	isUnion bool
	bases   []*Base
	fields  []*Field
	size    uint32
}

// NewRecord starts an empty record layout.
func NewRecord(decl *Decl, isUnion bool) *Record {
	return &Record{decl: decl, isUnion: isUnion}
}

// AddBase appends a base-class subobject and returns its layout entry.
func (r *Record) AddBase(base *Record) *Base {
	desc := NewRecordDescriptor(base.decl, base)
	b := &Base{Record: base, Offset: r.size + inlineDescSize, Desc: desc}
	r.bases = append(r.bases, b)
	r.size = b.Offset + desc.allocSize
	return b
}

// AddField appends a field with the given layout and returns its entry.
func (r *Record) AddField(name string, desc *Descriptor) *Field {
	f := &Field{Name: name, Offset: r.size + inlineDescSize, Desc: desc}
	if desc.field == nil {
		desc.field = f
	}
	r.fields = append(r.fields, f)
	r.size = f.Offset + desc.allocSize
	return f
}

func (r *Record) Decl() *Decl      { return r.decl }
func (r *Record) Name() string     { return r.decl.Name }
func (r *Record) IsUnion() bool    { return r.isUnion }
func (r *Record) Size() uint32     { return r.size }
func (r *Record) Fields() []*Field { return r.fields }
func (r *Record) Bases() []*Base   { return r.bases }

// FieldByName looks a field up by name.
func (r *Record) FieldByName(name string) (*Field, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FieldAt looks a field up by the byte offset of its data.
func (r *Record) FieldAt(off uint32) (*Field, bool) {
	for _, f := range r.fields {
		if f.Offset == off {
			return f, true
		}
	}
	return nil, false
}

// Descriptor is the immutable layout metadata for one declared type.
// It is created once, shared by every block of that type, and never
// mutated. Size covers the object's payload; allocSize additionally
// covers the metadata prefixes nested inside the layout.
type Descriptor struct {
	decl *Decl

	primType    PrimType
	isPrimitive bool

	size      uint32
	elemSize  uint32
	allocSize uint32
	numElems  uint32

	isArray     bool
	unknownSize bool
	elemDesc    *Descriptor
	record      *Record

	isConst     bool
	isMutable   bool
	isTemporary bool
	isDummy     bool

	// Back reference to the record field this descriptor was created
	// for, if any.
	field *Field
}

// DescOpts carries the optional qualifiers of a descriptor.
type DescOpts struct {
	IsConst     bool
	IsMutable   bool
	IsTemporary bool
}

func applyOpts(d *Descriptor, opts []DescOpts) *Descriptor {
	if len(opts) > 0 {
		d.isConst = opts[0].IsConst
		d.isMutable = opts[0].IsMutable
		d.isTemporary = opts[0].IsTemporary
	}
	return d
}

// NewPrimitiveDescriptor describes a scalar of the given primitive type.
func NewPrimitiveDescriptor(decl *Decl, t PrimType, opts ...DescOpts) *Descriptor {
	size := t.Size()
	return applyOpts(&Descriptor{
		decl:        decl,
		primType:    t,
		isPrimitive: true,
		size:        size,
		elemSize:    size,
		allocSize:   size,
	}, opts)
}

// NewPrimitiveArrayDescriptor describes a fixed-size array of primitives.
// The payload is preceded by an init map slot.
func NewPrimitiveArrayDescriptor(decl *Decl, t PrimType, n uint32, opts ...DescOpts) *Descriptor {
	elem := t.Size()
	return applyOpts(&Descriptor{
		decl:        decl,
		primType:    t,
		isPrimitive: true,
		size:        n * elem,
		elemSize:    elem,
		allocSize:   initMapSize + n*elem,
		numElems:    n,
		isArray:     true,
	}, opts)
}

// NewCompositeArrayDescriptor describes a fixed-size array whose elements
// are records or arrays themselves. Each element is preceded by its own
// inline descriptor slot, so the element stride covers both.
func NewCompositeArrayDescriptor(decl *Decl, elem *Descriptor, n uint32, opts ...DescOpts) *Descriptor {
	stride := elem.allocSize + inlineDescSize
	return applyOpts(&Descriptor{
		decl:      decl,
		size:      n * stride,
		elemSize:  stride,
		allocSize: n * stride,
		numElems:  n,
		isArray:   true,
		elemDesc:  elem,
	}, opts)
}

// NewUnknownSizeArrayDescriptor describes an array whose element count is
// not known to the evaluator (e.g. an extern array of incomplete bound).
// Such arrays can be addressed but never traversed.
func NewUnknownSizeArrayDescriptor(decl *Decl, t PrimType, opts ...DescOpts) *Descriptor {
	elem := t.Size()
	return applyOpts(&Descriptor{
		decl:        decl,
		primType:    t,
		isPrimitive: true,
		elemSize:    elem,
		allocSize:   initMapSize,
		isArray:     true,
		unknownSize: true,
	}, opts)
}

// NewRecordDescriptor describes a class, struct or union object.
func NewRecordDescriptor(decl *Decl, r *Record, opts ...DescOpts) *Descriptor {
	return applyOpts(&Descriptor{
		decl:      decl,
		size:      r.size,
		elemSize:  r.size,
		allocSize: r.size,
		record:    r,
	}, opts)
}

// NewDummyDescriptor describes an opaque stand-in for storage the
// evaluator cannot track (e.g. an extern object of unknown layout).
// Dummy objects can be pointed at but never read or written.
func NewDummyDescriptor(decl *Decl) *Descriptor {
	return &Descriptor{decl: decl, isDummy: true, size: 1, elemSize: 1, allocSize: 1}
}

func (d *Descriptor) Decl() *Decl         { return d.decl }
func (d *Descriptor) Name() string        { return d.decl.Name }
func (d *Descriptor) Location() SourceLoc { return d.decl.Loc }

// Size returns the object payload size in bytes.
func (d *Descriptor) Size() uint32 { return d.size }

// ElemSize returns the element stride for arrays, or the object size for
// scalars and records.
func (d *Descriptor) ElemSize() uint32 { return d.elemSize }

// AllocSize returns the full allocation size including nested metadata.
func (d *Descriptor) AllocSize() uint32 { return d.allocSize }

// NumElems returns the declared element count of an array.
func (d *Descriptor) NumElems() uint32 { return d.numElems }

func (d *Descriptor) IsArray() bool            { return d.isArray }
func (d *Descriptor) IsUnknownSizeArray() bool { return d.unknownSize }
func (d *Descriptor) IsConst() bool            { return d.isConst }
func (d *Descriptor) IsMutable() bool          { return d.isMutable }
func (d *Descriptor) IsTemporary() bool        { return d.isTemporary }
func (d *Descriptor) IsDummy() bool            { return d.isDummy }

// ElemDesc returns the element descriptor of a composite array, nil for
// primitive arrays and non-arrays.
func (d *Descriptor) ElemDesc() *Descriptor { return d.elemDesc }

// Record returns the record layout, nil for non-record types.
func (d *Descriptor) Record() *Record { return d.record }

// PrimType reports the primitive type this descriptor stores, if any.
// For primitive arrays it is the element type.
func (d *Descriptor) PrimType() (PrimType, bool) {
	return d.primType, d.isPrimitive
}

// Field returns the record field this descriptor was built for, if any.
func (d *Descriptor) Field() *Field { return d.field }

func (d *Descriptor) isPrimitiveArray() bool {
	return d.isArray && d.elemDesc == nil
}

func (d *Descriptor) String() string {
	switch {
	case d.isDummy:
		return fmt.Sprintf("dummy %s", d.decl.Name)
	case d.unknownSize:
		return fmt.Sprintf("%s[?]", d.primType)
	case d.isArray && d.elemDesc != nil:
		return fmt.Sprintf("%s[%d]", d.elemDesc, d.numElems)
	case d.isArray:
		return fmt.Sprintf("%s[%d]", d.primType, d.numElems)
	case d.record != nil:
		kind := "struct"
		if d.record.isUnion {
			kind = "union"
		}
		return fmt.Sprintf("%s %s", kind, d.record.Name())
	default:
		return d.primType.String()
	}
}
