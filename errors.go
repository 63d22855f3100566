package sqlgo

import (
	"errors"
	"fmt"
)

// ErrRowNotFound is returned by Map.FetchOne when the result set was empty.
var ErrRowNotFound = errors.New("sqlgo: no rows in result set")

// ErrPoolClosed is returned by Pool.Acquire once the pool has been closed.
var ErrPoolClosed = errors.New("sqlgo: pool is closed")

// ErrRowStale is returned by a Row accessor once the cursor that produced it
// has moved on to the next row or been closed. Rows borrow the connection's
// receive buffer and are only valid until the next Cursor.Next call.
var ErrRowStale = errors.New("sqlgo: row is no longer valid")

// ErrBusyCursor is returned when a second cursor is opened against a
// connection that already has one in flight. Exactly one pending result set
// may be outstanding per connection at a time.
var ErrBusyCursor = errors.New("sqlgo: connection already has an open cursor")

// ColumnNotFoundError is returned when a row is queried for a column name it
// does not have.
type ColumnNotFoundError struct {
	Name string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("sqlgo: no column found with name %q", e.Name)
}

// ColumnIndexOutOfBoundsError is returned when a row is queried for a column
// index beyond the number of columns it carries.
type ColumnIndexOutOfBoundsError struct {
	Index, Len int
}

func (e *ColumnIndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("sqlgo: column index out of bounds: there are %d columns but index is %d", e.Len, e.Index)
}

// PoolTimeoutError is returned by Pool.Acquire when no connection became
// available before connect_timeout elapsed, or when the pool's error budget
// for consecutive dial failures has been exhausted. Cause is nil in the pure
// timeout case.
type PoolTimeoutError struct {
	Cause error
}

func (e *PoolTimeoutError) Error() string {
	if e.Cause == nil {
		return "sqlgo: timed out waiting for an available connection"
	}
	return fmt.Sprintf("sqlgo: timed out waiting for an available connection: %s", e.Cause)
}

func (e *PoolTimeoutError) Unwrap() error { return e.Cause }

// ProtocolError signals that a wire protocol invariant was violated. The
// connection that produced it must be considered dead.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string { return "sqlgo: protocol error: " + e.Detail }

// DecodeError wraps a failure to decode a column value into a requested Go
// type. ErrUnexpectedNull is the sentinel cause when a NULL raw value was
// decoded into a non-optional target.
type DecodeError struct {
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("sqlgo: decode column %q: %s", e.Column, e.Err)
	}
	return fmt.Sprintf("sqlgo: decode: %s", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrUnexpectedNull is the Err of a DecodeError produced when a column's
// value is NULL but the target is not an optional type.
var ErrUnexpectedNull = errors.New("unexpected null; try decoding into an optional type")

// DatabaseError is implemented by driver-supplied errors returned from the
// server itself (as opposed to transport or protocol failures).
type DatabaseError interface {
	error
	Message() string
	SQLState() string
	Details() (detail, hint, table, column, constraint string)
}

// TLSError wraps a failure during a TLS upgrade.
type TLSError struct {
	Err error
}

func (e *TLSError) Error() string { return "sqlgo: tls: " + e.Err.Error() }
func (e *TLSError) Unwrap() error { return e.Err }

// UrlParseError wraps a failure to parse a connection URL.
type UrlParseError struct {
	Err error
}

func (e *UrlParseError) Error() string { return "sqlgo: parsing connection url: " + e.Err.Error() }
func (e *UrlParseError) Unwrap() error { return e.Err }
