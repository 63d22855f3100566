package mysql

import (
	"fmt"
	"time"

	"github.com/sqlgo/sqlgo"
)

// arguments is the MySQL family's sqlgo.Arguments: an ordered list of
// already-type-checked Go values, encoded into the COM_STMT_EXECUTE binary
// parameter format lazily, when the statement actually runs. Keeping values
// unencoded until then lets NewArguments stay allocation-light for queries
// that bind few parameters.
type arguments struct {
	vals []any // nil entries encode as SQL NULL
}

func (a *arguments) Len() int     { return len(a.vals) }
func (a *arguments) IsEmpty() bool { return len(a.vals) == 0 }

func (a *arguments) Reserve(n, sizeHint int) {
	if cap(a.vals)-len(a.vals) < n {
		grown := make([]any, len(a.vals), len(a.vals)+n)
		copy(grown, a.vals)
		a.vals = grown
	}
}

// Add accepts the scalar types MySQL's binary protocol understands
// directly, sqlgo.Encoder implementations (resolved to their pre-encoded
// wire bytes eagerly, since the binary protocol has no per-type Encoder
// hook of its own), and Null[T]/*T wrappers, which unwrap to either the
// underlying value or nil.
func (a *arguments) Add(value any) error {
	if underlying, isNull, wasWrapped := sqlgo.Nullable(value); wasWrapped {
		if isNull {
			a.vals = append(a.vals, nil)
			return nil
		}
		value = underlying
	}

	switch value.(type) {
	case nil,
		bool,
		int8, int16, int32, int64, int,
		uint8, uint16, uint32, uint64, uint,
		float32, float64,
		string, []byte,
		time.Time:
		a.vals = append(a.vals, value)
		return nil
	}

	if enc, ok := value.(sqlgo.Encoder); ok {
		buf := &byteWriter{}
		isNull, err := enc.EncodeNullable(buf)
		if err != nil {
			return err
		}
		if isNull {
			a.vals = append(a.vals, nil)
			return nil
		}
		a.vals = append(a.vals, encodedBytes(buf.b))
		return nil
	}

	return fmt.Errorf("sqlgo/mysql: cannot bind value of type %T", value)
}

// encodedBytes marks a []byte that is already in final wire form (produced
// by a user Encoder) so writeExecutePacket sends it as-is with fieldTypeBLOB
// instead of re-length-prefixing it as a plain string value.
type encodedBytes []byte

// byteWriter adapts a growable []byte to sqlgo.Writer.
type byteWriter struct{ b []byte }

func (w *byteWriter) WriteBytes(b []byte)  { w.b = append(w.b, b...) }
func (w *byteWriter) WriteString(s string) { w.b = append(w.b, s...) }
