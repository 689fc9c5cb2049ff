package interp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValue_Constructors(t *testing.T) {
	if v, ok := NewIntValue(-3).AsInt(); !ok || v != -3 {
		t.Errorf("AsInt = %d, %v", v, ok)
	}
	if v, ok := NewUintValue(9).AsUint(); !ok || v != 9 {
		t.Errorf("AsUint = %d, %v", v, ok)
	}
	if v, ok := NewBoolValue(true).AsBool(); !ok || !v {
		t.Errorf("AsBool = %v, %v", v, ok)
	}
	if v, ok := NewFloatValue(2.5).AsFloat(); !ok || v != 2.5 {
		t.Errorf("AsFloat = %v, %v", v, ok)
	}

	// Kind mismatches fail, they do not convert.
	if _, ok := NewIntValue(1).AsFloat(); ok {
		t.Error("int converted to float")
	}
	if !(Value{}).IsNone() {
		t.Error("zero value is not none")
	}
}

func TestValue_String(t *testing.T) {
	for _, tc := range []struct {
		v    Value
		want string
	}{
		{NewIntValue(42), "42"},
		{NewBoolValue(false), "false"},
		{NewNullPtrValue(), "nullptr"},
		{NewArrayValue([]Value{NewIntValue(1), NewIntValue(2)}), "[1, 2]"},
		{NewStructValue([]FieldValue{{Name: "a", Value: NewIntValue(1)}}), "{a: 1}"},
		{Value{}, "<none>"},
	} {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestValue_StructEquality(t *testing.T) {
	a := NewStructValue([]FieldValue{{Name: "x", Value: NewIntValue(1)}})
	b := NewStructValue([]FieldValue{{Name: "x", Value: NewIntValue(1)}})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("equal values differ:\n%s", diff)
	}
}

func TestComparisonResult_String(t *testing.T) {
	for _, tc := range []struct {
		r    ComparisonResult
		want string
	}{
		{CmpEqual, "equal"},
		{CmpLess, "less"},
		{CmpGreater, "greater"},
		{CmpUnordered, "unordered"},
	} {
		if got := tc.r.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
