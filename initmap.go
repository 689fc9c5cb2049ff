package interp

// InitMap tracks which elements of a primitive array have been written.
// One bit per element; allocated lazily on the first initialization so
// untouched arrays cost a single nil slot. Once every bit is set the map
// answers all queries through the full fast path.
type InitMap struct {
	bits  []uint64
	elems uint32
	count uint32
	full  bool
}

func newInitMap(n uint32) *InitMap {
	return &InitMap{
		bits:  make([]uint64, (n+63)/64),
		elems: n,
	}
}

// Initialize marks element i as written.
func (m *InitMap) Initialize(i uint32) {
	if i >= m.elems {
		panic("init map index out of range")
	}
	if m.full {
		return
	}
	word, bit := i/64, uint64(1)<<(i%64)
	if m.bits[word]&bit == 0 {
		m.bits[word] |= bit
		m.count++
		if m.count == m.elems {
			m.full = true
		}
	}
}

// InitializeAll marks every element as written.
func (m *InitMap) InitializeAll() {
	m.full = true
	m.count = m.elems
}

// IsInitialized reports whether element i has been written.
func (m *InitMap) IsInitialized(i uint32) bool {
	if i >= m.elems {
		panic("init map index out of range")
	}
	if m.full {
		return true
	}
	return m.bits[i/64]&(uint64(1)<<(i%64)) != 0
}

// IsFull reports whether every element has been written.
func (m *InitMap) IsFull() bool { return m.full }

// NumElems returns the number of elements the map covers.
func (m *InitMap) NumElems() uint32 { return m.elems }
