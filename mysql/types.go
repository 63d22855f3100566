package mysql

import "github.com/sqlgo/sqlgo"

// mysqlType implements sqlgo.TypeInfo for one column's advertised wire type.
type mysqlType struct {
	ft       fieldType
	unsigned bool
}

func (t mysqlType) Name() string {
	if t.unsigned && t.ft.integerFamily() {
		return t.ft.String() + " UNSIGNED"
	}
	return t.ft.String()
}

// Compatible mirrors the server's own notion of interchangeable types: any
// two integer-family types are compatible with each other (a BIGINT column
// decodes fine as an INT-typed destination, signedness aside), any two
// character/blob-family types are compatible, and any two date/time-family
// types are compatible. Everything else requires an exact fieldType match.
func (t mysqlType) Compatible(other sqlgo.TypeInfo) bool {
	o, ok := other.(mysqlType)
	if !ok {
		return false
	}
	if t.ft == o.ft {
		return true
	}
	if t.ft.integerFamily() && o.ft.integerFamily() {
		return true
	}
	if t.ft.textFamily() && o.ft.textFamily() {
		return true
	}
	if t.ft.temporalFamily() && o.ft.temporalFamily() {
		return true
	}
	return false
}

func typeInfoFor(col column) sqlgo.TypeInfo {
	return mysqlType{ft: col.fieldType, unsigned: col.unsigned()}
}
