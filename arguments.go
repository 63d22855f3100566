package sqlgo

// Arguments is an ordered buffer of encoded bind parameters, built up one
// value at a time in the same order as the placeholders they fill. Each
// database family provides its own implementation, matching its wire
// encoding (binary protocol, textual literal, ...); Query and Map hold an
// Arguments value without knowing which family produced it.
type Arguments interface {
	// Len reports how many values have been added so far.
	Len() int

	// IsEmpty is a convenience for Len() == 0.
	IsEmpty() bool

	// Reserve hints that n more values are coming, totaling roughly
	// sizeHint additional bytes, so the implementation may pre-grow its
	// internal buffer. Purely an optimization; never required for
	// correctness.
	Reserve(n, sizeHint int)

	// Add encodes value and appends it as the next positional parameter.
	// Supported concrete types are family-specific; Null[T], *T, and any
	// type implementing Encoder are always accepted. Add returns an error
	// for a value of a type the family cannot encode.
	Add(value any) error
}
