package interp

// Block is the allocated, typed storage for one evaluated object. Its
// offset space is laid out exactly per its descriptor: every nested
// composite subobject is preceded by an inline descriptor slot and every
// primitive array payload by an init map slot. The metadata itself is
// held in side tables keyed by byte offset; primitive payloads live in a
// value table keyed the same way.
//
// A block also tracks liveness and the registry of every Pointer
// currently addressing it. When the owning scope ends while the registry
// is non-empty the block is demoted to a DeadBlock; its storage is
// reclaimed once the registry empties.
type Block struct {
	id   uint32
	desc *Descriptor

	declID    uint32
	hasDeclID bool

	isStatic  bool
	isExtern  bool
	isTemp    bool
	isDynamic bool

	dead      bool
	reclaimed bool

	refs map[*Pointer]struct{}

	values   map[uint32]Value
	inline   map[uint32]*InlineDescriptor
	initMaps map[uint32]*InitMap

	// Invoked when a dead block's registry empties, before storage is
	// dropped. Set by the context that demoted the block.
	onEmpty func()
}

// InlineDescriptor is the mutable per-instance metadata of one nested
// subobject: a record field, a base-class subobject or a composite array
// element. Offset points back from the subobject's base to its owner.
type InlineDescriptor struct {
	Offset uint32
	Desc   *Descriptor

	IsInitialized  bool
	IsBase         bool
	IsActive       bool
	IsFieldMutable bool
	IsConst        bool
}

// BlockOpts selects the storage class of a new block.
type BlockOpts struct {
	IsStatic  bool
	IsExtern  bool
	IsTemp    bool
	IsDynamic bool
	DeclID    *uint32
}

var blockIDs uint32

// NewBlock allocates storage for one object of the given layout and
// builds its per-instance metadata.
func NewBlock(desc *Descriptor, opts ...BlockOpts) *Block {
	blockIDs++
	b := &Block{
		id:       blockIDs,
		desc:     desc,
		refs:     make(map[*Pointer]struct{}),
		values:   make(map[uint32]Value),
		inline:   make(map[uint32]*InlineDescriptor),
		initMaps: make(map[uint32]*InitMap),
	}
	if len(opts) > 0 {
		o := opts[0]
		b.isStatic = o.IsStatic
		b.isExtern = o.IsExtern
		b.isTemp = o.IsTemp
		b.isDynamic = o.IsDynamic
		if o.DeclID != nil {
			b.declID = *o.DeclID
			b.hasDeclID = true
		}
	}
	b.initLayout(0, desc)
	return b
}

// initLayout recursively creates the inline descriptors and init map
// slots for every subobject of desc, rooted at base.
func (b *Block) initLayout(base uint32, desc *Descriptor) {
	switch {
	case desc.record != nil:
		r := desc.record
		for _, bs := range r.bases {
			sub := base + bs.Offset
			b.inline[sub] = &InlineDescriptor{
				Offset:   bs.Offset,
				Desc:     bs.Desc,
				IsBase:   true,
				IsActive: true,
				IsConst:  bs.Desc.isConst,
			}
			b.initLayout(sub, bs.Desc)
		}
		for _, f := range r.fields {
			sub := base + f.Offset
			b.inline[sub] = &InlineDescriptor{
				Offset:         f.Offset,
				Desc:           f.Desc,
				IsActive:       !r.isUnion,
				IsFieldMutable: f.IsMutable || f.Desc.isMutable,
				IsConst:        f.Desc.isConst,
			}
			b.initLayout(sub, f.Desc)
		}
	case desc.elemDesc != nil:
		for i := uint32(0); i < desc.numElems; i++ {
			sub := base + inlineDescSize + i*desc.elemSize
			b.inline[sub] = &InlineDescriptor{
				Offset:   sub - base,
				Desc:     desc.elemDesc,
				IsActive: true,
				IsConst:  desc.elemDesc.isConst,
			}
			b.initLayout(sub, desc.elemDesc)
		}
	case desc.isPrimitiveArray():
		// Lazily built on first initialization.
		b.initMaps[base] = nil
	}
}

func (b *Block) Desc() *Descriptor { return b.desc }
func (b *Block) ID() uint32        { return b.id }

// IsDead reports whether the block's owning scope has ended.
func (b *Block) IsDead() bool { return b.dead }

// IsReclaimed reports whether the block's storage has been released.
func (b *Block) IsReclaimed() bool { return b.reclaimed }

func (b *Block) IsStatic() bool    { return b.isStatic }
func (b *Block) IsExtern() bool    { return b.isExtern }
func (b *Block) IsTemporary() bool { return b.isTemp }
func (b *Block) IsDynamic() bool   { return b.isDynamic }

// DeclID returns the global declaration ID, if the block has one.
func (b *Block) DeclID() (uint32, bool) { return b.declID, b.hasDeclID }

// NumPointers returns the number of live pointers addressing the block.
func (b *Block) NumPointers() int { return len(b.refs) }

func (b *Block) link(p *Pointer) {
	if b.reclaimed {
		panic("pointer into reclaimed block")
	}
	b.refs[p] = struct{}{}
}

func (b *Block) unlink(p *Pointer) {
	delete(b.refs, p)
	if b.dead && !b.reclaimed && len(b.refs) == 0 {
		if b.onEmpty != nil {
			b.onEmpty()
		}
		b.reclaim()
	}
}

// endLifetime marks the block's scope as ended. If no pointers reference
// it the storage is released immediately; otherwise the block stays as a
// dead block until the last pointer is released.
func (b *Block) endLifetime() {
	b.dead = true
	if len(b.refs) == 0 {
		if b.onEmpty != nil {
			b.onEmpty()
		}
		b.reclaim()
	}
}

func (b *Block) reclaim() {
	b.reclaimed = true
	b.values = nil
	b.inline = nil
	b.initMaps = nil
	b.onEmpty = nil
}

func (b *Block) initMap(base uint32) *InitMap {
	return b.initMaps[base]
}

func (b *Block) ensureInitMap(base, numElems uint32) *InitMap {
	im := b.initMaps[base]
	if im == nil {
		im = newInitMap(numElems)
		b.initMaps[base] = im
	}
	return im
}

// deactivateSubtree marks the subobject rooted at base, and every
// subobject nested inside it, as inactive.
func (b *Block) deactivateSubtree(base uint32, desc *Descriptor) {
	if in, ok := b.inline[base]; ok && in != nil {
		in.IsActive = false
	}
	switch {
	case desc.record != nil:
		for _, bs := range desc.record.bases {
			b.deactivateSubtree(base+bs.Offset, bs.Desc)
		}
		for _, f := range desc.record.fields {
			b.deactivateSubtree(base+f.Offset, f.Desc)
		}
	case desc.elemDesc != nil:
		for i := uint32(0); i < desc.numElems; i++ {
			b.deactivateSubtree(base+inlineDescSize+i*desc.elemSize, desc.elemDesc)
		}
	}
}

// SubobjectKind classifies entries reported by Subobjects.
type SubobjectKind uint8

const (
	SubField SubobjectKind = iota
	SubBase
	SubElem
)

func (k SubobjectKind) String() string {
	switch k {
	case SubField:
		return "field"
	case SubBase:
		return "base"
	case SubElem:
		return "elem"
	default:
		return "unknown"
	}
}

// Subobject is one row of a block's layout, used by dump tooling.
type Subobject struct {
	Base        uint32
	Kind        SubobjectKind
	Name        string
	Index       int
	Depth       int
	Desc        *Descriptor
	Prim        PrimType
	IsPrim      bool
	Initialized bool
	Active      bool
}

// Subobjects walks the block's layout depth-first and reports every
// subobject including primitive array elements. Intended for diagnostics
// and dump tooling; the order is deterministic.
func (b *Block) Subobjects() []Subobject {
	if b.reclaimed {
		return nil
	}
	var out []Subobject
	b.walkSubobjects(0, b.desc, 0, &out)
	return out
}

func (b *Block) walkSubobjects(base uint32, desc *Descriptor, depth int, out *[]Subobject) {
	switch {
	case desc.record != nil:
		for _, bs := range desc.record.bases {
			sub := base + bs.Offset
			in := b.inline[sub]
			*out = append(*out, Subobject{
				Base: sub, Kind: SubBase, Name: bs.Record.Name(), Index: -1,
				Depth: depth, Desc: bs.Desc,
				Initialized: in.IsInitialized, Active: in.IsActive,
			})
			b.walkSubobjects(sub, bs.Desc, depth+1, out)
		}
		for _, f := range desc.record.fields {
			sub := base + f.Offset
			in := b.inline[sub]
			*out = append(*out, Subobject{
				Base: sub, Kind: SubField, Name: f.Name, Index: -1,
				Depth: depth, Desc: f.Desc,
				Initialized: in.IsInitialized, Active: in.IsActive,
			})
			b.walkSubobjects(sub, f.Desc, depth+1, out)
		}
	case desc.elemDesc != nil:
		for i := uint32(0); i < desc.numElems; i++ {
			sub := base + inlineDescSize + i*desc.elemSize
			in := b.inline[sub]
			*out = append(*out, Subobject{
				Base: sub, Kind: SubElem, Name: "", Index: int(i),
				Depth: depth, Desc: desc.elemDesc,
				Initialized: in.IsInitialized, Active: in.IsActive,
			})
			b.walkSubobjects(sub, desc.elemDesc, depth+1, out)
		}
	case desc.isPrimitiveArray() && !desc.unknownSize:
		im := b.initMaps[base]
		for i := uint32(0); i < desc.numElems; i++ {
			init := im != nil && im.IsInitialized(i)
			*out = append(*out, Subobject{
				Base: base + initMapSize + i*desc.elemSize, Kind: SubElem,
				Index: int(i), Depth: depth,
				Prim: desc.primType, IsPrim: true,
				Initialized: init, Active: true,
			})
		}
	}
}

// DeadBlock is the bookkeeping entry for a block kept alive past its
// scope solely because pointers still reference it.
type DeadBlock struct {
	block *Block
}

// Block returns the underlying dead storage.
func (d *DeadBlock) Block() *Block { return d.block }
