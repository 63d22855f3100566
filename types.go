package sqlgo

// TypeInfo describes the SQL type a value is advertised as carrying, for one
// database family. Implementations are small, clonable (copied by value),
// and comparable for compatibility rather than equality: two TypeInfo values
// may be Compatible without being ==, e.g. MySQL's CHAR and BINARY share a
// wire type id.
type TypeInfo interface {
	// Name returns the database-family-specific display name of the type,
	// e.g. "VARCHAR" or "BIGINT UNSIGNED".
	Name() string

	// Compatible reports whether a column declared as other may be decoded
	// into a Go value whose canonical type is self. Compatible is always
	// reflexive: t.Compatible(t) is true for any t.
	Compatible(other TypeInfo) bool
}

// Null is a generic optional value: Valid is false to represent SQL NULL.
// It is both an Encoder-side wrapper (via Underlying) and a Decode target
// (via setNull/setFrom): binding or scanning a Null[T] where a bare T would
// otherwise be required is how a caller opts in to accepting NULL.
type Null[T any] struct {
	V     T
	Valid bool
}

// Underlying exposes the wrapped value and its validity so that a driver's
// Arguments.Add can encode Null[T] without knowing T ahead of time.
func (n Null[T]) Underlying() (any, bool) {
	return n.V, n.Valid
}

// setNull makes dest's NULL case the optionalDest path in Decode: *Null[T]
// absorbs a NULL raw value as an invalid, zeroed V instead of the
// ErrUnexpectedNull a non-optional *T destination would get.
func (n *Null[T]) setNull() {
	var zero T
	n.V, n.Valid = zero, false
}

// setFrom decodes a non-NULL raw value into the wrapped V using the same
// Decoder/decodeBuiltin path a bare *T destination goes through, then marks
// the Null valid.
func (n *Null[T]) setFrom(raw RawValue, column string, decodeBuiltin func(RawValue, any) (bool, error)) error {
	if err := decodeScalar(raw, &n.V, column, decodeBuiltin); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// NewNull builds a valid Null[T] wrapping v.
func NewNull[T any](v T) Null[T] {
	return Null[T]{V: v, Valid: true}
}
