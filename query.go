package sqlgo

import "context"

// Query is a SQL string together with an accumulating positional argument
// buffer. It is built with an Executor's NewArguments so the argument
// encoding matches the family the query will run against, then bound one or
// more times with Bind/BindAll before being run.
//
// A Query is reusable: Fetch/Execute/FetchOne and friends may be called
// repeatedly, each re-running the same SQL text against whatever arguments
// are currently bound. Reassigning arguments with Bind after a partial bind
// sequence is the caller's responsibility to get right; Query does not
// track which placeholders have been filled.
type Query struct {
	sql  string
	args Arguments
	err  error
}

// NewQuery builds a Query against sql, using exec to produce an empty
// Arguments buffer of the right concrete type.
func NewQuery(exec Executor, sql string) *Query {
	return &Query{sql: sql, args: exec.NewArguments()}
}

// SQL returns the query's SQL text.
func (q *Query) SQL() string { return q.sql }

// Bind appends a single positional argument and returns the Query for
// chaining.
func (q *Query) Bind(value any) *Query {
	if err := q.args.Add(value); err != nil {
		q.err = err
	}
	return q
}

// BindAll appends each of values as a positional argument, in order.
func (q *Query) BindAll(values ...any) *Query {
	for _, v := range values {
		q.Bind(v)
	}
	return q
}

// Execute runs the query against exec, ignoring any result set.
func (q *Query) Execute(ctx context.Context, exec Executor) (rowsAffected int64, lastInsertID int64, err error) {
	if q.err != nil {
		return 0, 0, q.err
	}
	return exec.Execute(ctx, q.sql, q.args)
}

// Fetch runs the query against exec and returns a Cursor over its rows.
func (q *Query) Fetch(ctx context.Context, exec Executor) (Cursor, error) {
	if q.err != nil {
		return nil, q.err
	}
	return exec.Fetch(ctx, q.sql, q.args)
}

// Map pairs this Query with a row-mapping function, producing values of
// type T instead of bare Rows. It is the idiomatic entry point for
// FetchOne/FetchOptional/FetchAll.
func Map[T any](q *Query, mapRow func(Row) (T, error)) *MappedQuery[T] {
	return &MappedQuery[T]{query: q, mapRow: mapRow}
}

// MappedQuery is a Query plus a function turning each Row into a T.
type MappedQuery[T any] struct {
	query  *Query
	mapRow func(Row) (T, error)
}

// FetchAll runs the query and maps every row, returning them in result-set
// order.
func (m *MappedQuery[T]) FetchAll(ctx context.Context, exec Executor) ([]T, error) {
	cur, err := m.query.Fetch(ctx, exec)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	var out []T
	for cur.Next(ctx) {
		v, err := m.mapRow(cur.Row())
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchOptional runs the query and maps at most one row. ok is false when
// the result set was empty; it is an error for the result set to contain
// more than one row.
func (m *MappedQuery[T]) FetchOptional(ctx context.Context, exec Executor) (value T, ok bool, err error) {
	cur, err := m.query.Fetch(ctx, exec)
	if err != nil {
		return value, false, err
	}
	defer cur.Close()

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return value, false, err
		}
		return value, false, nil
	}
	value, err = m.mapRow(cur.Row())
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

// FetchOne runs the query and maps exactly one row, returning
// ErrRowNotFound if the result set was empty. It does not check for a
// second row; callers that must enforce uniqueness should query
// accordingly (e.g. with LIMIT 1 or a UNIQUE constraint).
func (m *MappedQuery[T]) FetchOne(ctx context.Context, exec Executor) (T, error) {
	value, ok, err := m.FetchOptional(ctx, exec)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		var zero T
		return zero, ErrRowNotFound
	}
	return value, nil
}

// QueryAs builds a Query and a MappedQuery in one step for a type that knows
// how to build itself from a Row via FromRow.
func QueryAs[T FromRow](exec Executor, sql string, args ...any) *MappedQuery[T] {
	q := NewQuery(exec, sql).BindAll(args...)
	return Map(q, func(r Row) (T, error) {
		var v T
		err := v.ScanRow(r)
		return v, err
	})
}

// FromRow is implemented by types that can populate themselves from a Row,
// for use with QueryAs.
type FromRow interface {
	ScanRow(Row) error
}
