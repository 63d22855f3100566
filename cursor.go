package sqlgo

import "context"

// Cursor is a lazy, forward-only, single-pass sequence of rows bound to
// exactly one connection and one pending result set. Exhaustion (or Close)
// returns the connection to its ready state. A second concurrent cursor on
// the same connection is rejected with ErrBusyCursor.
//
// Usage:
//
//	for cur.Next(ctx) {
//	    row := cur.Row()
//	    ...
//	}
//	if err := cur.Err(); err != nil {
//	    ...
//	}
type Cursor interface {
	// Next advances the cursor and reports whether a row is available.
	// It blocks on connection I/O. Once Next returns false, either the
	// result set is exhausted (Err() == nil) or a failure occurred
	// (Err() != nil).
	Next(ctx context.Context) bool

	// Row returns the row most recently produced by Next. Its result is
	// undefined before the first Next call or after Next returns false.
	Row() Row

	// Err returns the first error encountered by Next, if any.
	Err() error

	// Close releases the cursor's hold on the connection. Safe to call
	// multiple times and safe to call before exhaustion (in which case
	// the connection is marked invalid per spec: its protocol position is
	// indeterminate).
	Close() error
}
