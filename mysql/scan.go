package mysql

import "github.com/sqlgo/sqlgo"

// Scan decodes row's columns positionally into dest, in column order. It is
// the usual building block for a FromRow.ScanRow implementation:
//
//	func (u *User) ScanRow(r sqlgo.Row) error {
//	    return mysql.Scan(r, &u.ID, &u.Name, &u.Email)
//	}
func Scan(r sqlgo.Row, dest ...any) error {
	cols := r.Columns()
	if len(dest) != len(cols) {
		return &sqlgo.ColumnIndexOutOfBoundsError{Index: len(dest) - 1, Len: len(cols)}
	}
	for i, d := range dest {
		raw, err := r.Column(i)
		if err != nil {
			return err
		}
		if err := sqlgo.Decode(raw, d, cols[i], decodeBuiltin); err != nil {
			return err
		}
	}
	return nil
}
