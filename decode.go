package sqlgo

// Decoder is implemented by user-defined types that want control over how
// they are populated from a RawValue. Built-in scalar destinations (*int64,
// *string, *time.Time, Null[T], ...) are decoded directly by each family's
// Row/value machinery without going through this interface.
type Decoder interface {
	DecodeSQL(raw RawValue) error
}

// optionalDest is implemented by *Null[T] so Decode can special-case the
// NULL/non-NULL split once, in one place, instead of every database
// family's decodeBuiltin needing a case per Null[T] instantiation.
type optionalDest interface {
	setNull()
	setFrom(raw RawValue, column string, decodeBuiltin func(RawValue, any) (bool, error)) error
}

// Decode populates dest from raw, preferring a Decoder implementation on
// dest and otherwise delegating to decodeBuiltin, which every database
// family supplies for the scalar types it supports. A NULL raw value
// decoded into a non-optional dest is an error (ErrUnexpectedNull); dest
// must be a *Null[T] to accept NULL. column is used only to annotate
// errors.
func Decode(raw RawValue, dest any, column string, decodeBuiltin func(RawValue, any) (bool, error)) error {
	if opt, ok := dest.(optionalDest); ok {
		if raw.IsNull {
			opt.setNull()
			return nil
		}
		return opt.setFrom(raw, column, decodeBuiltin)
	}
	if raw.IsNull {
		return &DecodeError{Column: column, Err: ErrUnexpectedNull}
	}
	return decodeScalar(raw, dest, column, decodeBuiltin)
}

// decodeScalar is the non-NULL decode path shared by Decode and Null[T]'s
// setFrom: prefer a Decoder implementation on dest, else the family's
// decodeBuiltin.
func decodeScalar(raw RawValue, dest any, column string, decodeBuiltin func(RawValue, any) (bool, error)) error {
	if d, ok := dest.(Decoder); ok {
		if err := d.DecodeSQL(raw); err != nil {
			return &DecodeError{Column: column, Err: err}
		}
		return nil
	}
	handled, err := decodeBuiltin(raw, dest)
	if err != nil {
		return &DecodeError{Column: column, Err: err}
	}
	if !handled {
		return &DecodeError{Column: column, Err: ErrUnsupportedScanType}
	}
	return nil
}

// ErrUnsupportedScanType is the DecodeError cause when dest's concrete type
// is not one any recognized path (Decoder, builtin) can populate.
var ErrUnsupportedScanType = unsupportedScanTypeError{}

type unsupportedScanTypeError struct{}

func (unsupportedScanTypeError) Error() string { return "unsupported scan destination type" }
