package interp

import "fmt"

// Program interns the layout metadata of everything the evaluator has
// seen: one descriptor per declared type, one record per declared class,
// and the blocks backing global declarations. Descriptors are created
// once and shared by every block of that type.
type Program struct {
	descriptors map[string]*Descriptor
	records     map[string]*Record

	globals      map[string]*Block
	globalIDs    map[string]uint32
	nextGlobalID uint32
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{
		descriptors: make(map[string]*Descriptor),
		records:     make(map[string]*Record),
		globals:     make(map[string]*Block),
		globalIDs:   make(map[string]uint32),
	}
}

// GetOrCreateDescriptor returns the interned descriptor for name,
// building it on first use.
func (p *Program) GetOrCreateDescriptor(name string, build func() *Descriptor) *Descriptor {
	if d, ok := p.descriptors[name]; ok {
		return d
	}
	d := build()
	p.descriptors[name] = d
	return d
}

// LookupDescriptor returns the interned descriptor for name.
func (p *Program) LookupDescriptor(name string) (*Descriptor, bool) {
	d, ok := p.descriptors[name]
	return d, ok
}

// RegisterRecord interns a record layout under its declared name.
func (p *Program) RegisterRecord(r *Record) error {
	if _, ok := p.records[r.Name()]; ok {
		return fmt.Errorf("record %q already registered", r.Name())
	}
	p.records[r.Name()] = r
	return nil
}

// LookupRecord returns the interned record layout for name.
func (p *Program) LookupRecord(name string) (*Record, bool) {
	r, ok := p.records[name]
	return r, ok
}

// AllocGlobal allocates static storage for a global declaration. The
// block outlives every scope and is never demoted to a dead block.
func (p *Program) AllocGlobal(name string, desc *Descriptor) (*Block, error) {
	if _, ok := p.globals[name]; ok {
		return nil, fmt.Errorf("global %q already allocated", name)
	}
	p.nextGlobalID++
	id := p.nextGlobalID
	b := NewBlock(desc, BlockOpts{IsStatic: true, DeclID: &id})
	p.globals[name] = b
	p.globalIDs[name] = id
	return b, nil
}

// Global returns the block backing a global declaration.
func (p *Program) Global(name string) (*Block, bool) {
	b, ok := p.globals[name]
	return b, ok
}

// NumGlobals returns the number of allocated globals.
func (p *Program) NumGlobals() int { return len(p.globals) }
