package sqlgo

// Describe reports the parameter and result-column shape of a query without
// running it. Not every family can answer every field; MySQL's prepared
// statement metadata leaves Nullable and column names on result columns but
// gives no names for parameters.
type Describe struct {
	// ParameterTypes is the advertised type of each positional placeholder,
	// in order. A family that cannot introspect parameter types returns nil.
	ParameterTypes []TypeInfo

	// Columns describes the result set's columns in positional order. Nil
	// for statements that produce no result set.
	Columns []ColumnDescription
}

// ColumnDescription is one entry of Describe.Columns.
type ColumnDescription struct {
	Name     string
	Type     TypeInfo
	Nullable bool
}
