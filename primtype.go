package interp

// PrimType classifies the primitive value types the evaluator can store
// directly in a block. Every primitive has a fixed byte size which drives
// array layout and pointer arithmetic.
type PrimType uint8

const (
	PrimBool PrimType = iota
	PrimInt8
	PrimUint8
	PrimInt16
	PrimUint16
	PrimInt32
	PrimUint32
	PrimInt64
	PrimUint64
	PrimFloat32
	PrimFloat64
)

// Size returns the storage size of the primitive in bytes.
func (t PrimType) Size() uint32 {
	switch t {
	case PrimBool, PrimInt8, PrimUint8:
		return 1
	case PrimInt16, PrimUint16:
		return 2
	case PrimInt32, PrimUint32, PrimFloat32:
		return 4
	case PrimInt64, PrimUint64, PrimFloat64:
		return 8
	default:
		panic("unknown primitive type")
	}
}

func (t PrimType) String() string {
	switch t {
	case PrimBool:
		return "bool"
	case PrimInt8:
		return "int8"
	case PrimUint8:
		return "uint8"
	case PrimInt16:
		return "int16"
	case PrimUint16:
		return "uint16"
	case PrimInt32:
		return "int32"
	case PrimUint32:
		return "uint32"
	case PrimInt64:
		return "int64"
	case PrimUint64:
		return "uint64"
	case PrimFloat32:
		return "float32"
	case PrimFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// ParsePrimType parses a primitive type name. Returns false if the name
// does not denote a primitive.
func ParsePrimType(s string) (PrimType, bool) {
	switch s {
	case "bool":
		return PrimBool, true
	case "int8":
		return PrimInt8, true
	case "uint8", "byte":
		return PrimUint8, true
	case "int16":
		return PrimInt16, true
	case "uint16":
		return PrimUint16, true
	case "int32", "int":
		return PrimInt32, true
	case "uint32", "uint":
		return PrimUint32, true
	case "int64":
		return PrimInt64, true
	case "uint64":
		return PrimUint64, true
	case "float32":
		return PrimFloat32, true
	case "float64", "float":
		return PrimFloat64, true
	default:
		return 0, false
	}
}
