package sqlgo

// IsNull is the result of an EncodeNullable call: true means the value was
// absent and nothing was appended to the argument buffer.
type IsNull bool

// Writer is the minimal append-only sink that a database family's Arguments
// exposes to an Encoder. Each family's Arguments implementation also
// implements Writer so that user-defined Encoder types can be bound without
// the family needing to know about them ahead of time.
type Writer interface {
	WriteBytes(b []byte)
	WriteString(s string)
}

// Encoder is implemented by user-defined types that want control over their
// own wire encoding. Built-in scalar types (ints, strings, time.Time, ...)
// are encoded directly by each family's Arguments.Add without going through
// this interface; Encoder exists as the extension point for everything else.
//
// encode(buf) must append the wire representation of a non-null value and
// write nothing for the null case, handled instead by EncodeNullable.
// size_hint() is a conservative lower bound on bytes appended, used only to
// pre-size the argument buffer, never for correctness.
type Encoder interface {
	Encode(buf Writer) error
	EncodeNullable(buf Writer) (IsNull, error)
	SizeHint() int
}

// Nullable reports whether a bound value represents an absent optional,
// unwrapping Null[T]-shaped values. Database family Arguments implementations
// call this before attempting to type-switch on the underlying value so that
// Null[T] and *T both participate in the same NULL encoding path.
func Nullable(value any) (underlying any, isNull bool, ok bool) {
	type hasUnderlying interface {
		Underlying() (any, bool)
	}
	if u, isU := value.(hasUnderlying); isU {
		v, valid := u.Underlying()
		return v, !valid, true
	}
	return value, false, false
}
