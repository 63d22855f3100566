package sqlgo

// RawValue is the still-undecoded wire representation of one column in one
// row: either a binary slice (prepared/binary protocol) or a textual slice
// (simple/text protocol), borrowed from the connection's receive buffer, plus
// a null indicator. A RawValue does not outlive the Row it was obtained from.
type RawValue struct {
	Bytes  []byte
	Text   bool // true if Bytes holds the textual protocol representation
	IsNull bool
}

// Row is a zero-copy view over one decoded record. Rows are produced by a
// Cursor and must be consumed before the next call to Cursor.Next; two rows
// from the same cursor never coexist. Implementations return ErrRowStale
// from every accessor once the cursor has moved past them.
type Row interface {
	// Columns returns the names of the row's columns, in positional order.
	Columns() []string

	// Column returns the raw value at the given zero-based index, or a
	// *ColumnIndexOutOfBoundsError if index is out of range.
	Column(index int) (RawValue, error)

	// ColumnByName looks a column up by name, or returns a
	// *ColumnNotFoundError.
	ColumnByName(name string) (RawValue, error)

	// ColumnType returns the server-declared type of the column at index.
	ColumnType(index int) (TypeInfo, error)
}
