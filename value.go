package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind classifies evaluated constant values.
type ValueKind uint8

const (
	ValNone ValueKind = iota
	ValBool
	ValInt
	ValUint
	ValFloat
	ValPtr
	ValStruct
	ValArray
)

func (k ValueKind) String() string {
	switch k {
	case ValNone:
		return "none"
	case ValBool:
		return "bool"
	case ValInt:
		return "int"
	case ValUint:
		return "uint"
	case ValFloat:
		return "float"
	case ValPtr:
		return "ptr"
	case ValStruct:
		return "struct"
	case ValArray:
		return "array"
	default:
		return "unknown"
	}
}

// LValue describes the address a pointer value denotes: the root
// declaration plus the navigation path taken from it. It is the exported
// form of a Pointer, detached from block storage.
type LValue struct {
	Decl       *Decl
	Path       []string
	ByteOffset uint32
	OnePastEnd bool
}

// FieldValue pairs a record field name with its loaded value.
type FieldValue struct {
	Name  string
	Value Value
}

// Value is the generic constant-value representation handed to the
// surrounding evaluator. It is a tagged union; only the member selected
// by Kind is meaningful.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	Ptr    *LValue
	Fields []FieldValue
	Elems  []Value
}

// Constructors and accessors.
func NewBoolValue(b bool) Value {
	return Value{Kind: ValBool, Bool: b}
}

func NewIntValue(i int64) Value {
	return Value{Kind: ValInt, Int: i}
}

func NewUintValue(u uint64) Value {
	return Value{Kind: ValUint, Uint: u}
}

func NewFloatValue(f float64) Value {
	return Value{Kind: ValFloat, Float: f}
}

// NewNullPtrValue returns the null pointer constant.
func NewNullPtrValue() Value {
	return Value{Kind: ValPtr}
}

func NewStructValue(fields []FieldValue) Value {
	return Value{Kind: ValStruct, Fields: fields}
}

func NewArrayValue(elems []Value) Value {
	return Value{Kind: ValArray, Elems: elems}
}

func (v Value) IsNone() bool { return v.Kind == ValNone }

func (v Value) AsBool() (bool, bool) {
	if v.Kind == ValBool {
		return v.Bool, true
	}
	return false, false
}

func (v Value) AsInt() (int64, bool) {
	if v.Kind == ValInt {
		return v.Int, true
	}
	return 0, false
}

func (v Value) AsUint() (uint64, bool) {
	if v.Kind == ValUint {
		return v.Uint, true
	}
	return 0, false
}

func (v Value) AsFloat() (float64, bool) {
	if v.Kind == ValFloat {
		return v.Float, true
	}
	return 0, false
}

func (v Value) AsLValue() (*LValue, bool) {
	if v.Kind == ValPtr {
		return v.Ptr, true
	}
	return nil, false
}

// String renders the value for diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case ValNone:
		return "<none>"
	case ValBool:
		return strconv.FormatBool(v.Bool)
	case ValInt:
		return strconv.FormatInt(v.Int, 10)
	case ValUint:
		return strconv.FormatUint(v.Uint, 10)
	case ValFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValPtr:
		if v.Ptr == nil {
			return "nullptr"
		}
		var b strings.Builder
		b.WriteByte('&')
		b.WriteString(v.Ptr.Decl.Name)
		for _, seg := range v.Ptr.Path {
			b.WriteString(seg)
		}
		if v.Ptr.OnePastEnd {
			b.WriteString(" <past-end>")
		}
		return b.String()
	case ValStruct:
		parts := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			parts = append(parts, f.Name+": "+f.Value.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case ValArray:
		parts := make([]string, 0, len(v.Elems))
		for _, e := range v.Elems {
			parts = append(parts, e.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("<kind %d>", v.Kind)
	}
}

// ComparisonResult is the outcome of a relational pointer comparison.
// Unordered marks pointers that do not share a base and therefore cannot
// be ordered; the evaluator turns it into a diagnostic.
type ComparisonResult uint8

const (
	CmpEqual ComparisonResult = iota
	CmpLess
	CmpGreater
	CmpUnordered
)

func (c ComparisonResult) String() string {
	switch c {
	case CmpEqual:
		return "equal"
	case CmpLess:
		return "less"
	case CmpGreater:
		return "greater"
	case CmpUnordered:
		return "unordered"
	default:
		return "unknown"
	}
}
