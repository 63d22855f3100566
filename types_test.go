package sqlgo

import "testing"

type fakeType struct{ name string }

func (t fakeType) Name() string { return t.name }
func (t fakeType) Compatible(other TypeInfo) bool {
	o, ok := other.(fakeType)
	return ok && o.name == t.name
}

func TestTypeInfoCompatibleIsReflexive(t *testing.T) {
	types := []TypeInfo{fakeType{"INT"}, fakeType{"VARCHAR"}, fakeType{"DATETIME"}}
	for _, ty := range types {
		if !ty.Compatible(ty) {
			t.Fatalf("%v.Compatible(itself) = false, want true", ty)
		}
	}
}

func TestNullUnderlying(t *testing.T) {
	valid := NewNull(42)
	if v, ok := valid.Underlying(); !ok || v != 42 {
		t.Fatalf("Underlying() = (%v, %v), want (42, true)", v, ok)
	}

	var empty Null[int]
	if _, ok := empty.Underlying(); ok {
		t.Fatal("zero-value Null.Underlying() ok = true, want false")
	}
}

func TestNullableUnwrapsNull(t *testing.T) {
	underlying, isNull, ok := Nullable(NewNull("hi"))
	if !ok {
		t.Fatal("Nullable(Null[string]) ok = false, want true")
	}
	if isNull {
		t.Fatal("Nullable(valid Null) isNull = true, want false")
	}
	if underlying != "hi" {
		t.Fatalf("underlying = %v, want \"hi\"", underlying)
	}

	_, isNull, ok = Nullable(Null[string]{})
	if !ok || !isNull {
		t.Fatalf("Nullable(empty Null) = (isNull=%v, ok=%v), want (true, true)", isNull, ok)
	}

	_, _, ok = Nullable(42)
	if ok {
		t.Fatal("Nullable(plain int) ok = true, want false")
	}
}
