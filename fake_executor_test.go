package sqlgo

import (
	"context"
	"fmt"
)

// fakeArguments is a minimal Arguments implementation used only to exercise
// Query/MappedQuery without a real database family.
type fakeArguments struct {
	vals []any
}

func (a *fakeArguments) Len() int      { return len(a.vals) }
func (a *fakeArguments) IsEmpty() bool { return len(a.vals) == 0 }
func (a *fakeArguments) Reserve(n, sizeHint int) {
	if cap(a.vals)-len(a.vals) < n {
		grown := make([]any, len(a.vals), len(a.vals)+n)
		copy(grown, a.vals)
		a.vals = grown
	}
}
func (a *fakeArguments) Add(value any) error {
	a.vals = append(a.vals, value)
	return nil
}

// fakeRow is a fixed, in-memory Row used by fakeCursor.
type fakeRow struct {
	cols   []string
	values []RawValue
	stale  bool
}

func (r *fakeRow) Columns() []string { return r.cols }

func (r *fakeRow) Column(index int) (RawValue, error) {
	if r.stale {
		return RawValue{}, ErrRowStale
	}
	if index < 0 || index >= len(r.values) {
		return RawValue{}, &ColumnIndexOutOfBoundsError{Index: index, Len: len(r.values)}
	}
	return r.values[index], nil
}

func (r *fakeRow) ColumnByName(name string) (RawValue, error) {
	if r.stale {
		return RawValue{}, ErrRowStale
	}
	for i, c := range r.cols {
		if c == name {
			return r.values[i], nil
		}
	}
	return RawValue{}, &ColumnNotFoundError{Name: name}
}

func (r *fakeRow) ColumnType(index int) (TypeInfo, error) {
	return nil, fmt.Errorf("fakeRow: ColumnType not implemented")
}

// fakeCursor walks a canned slice of rows, marking the previous row stale
// exactly like a real streaming cursor would.
type fakeCursor struct {
	cols    []string
	rows    [][]RawValue
	pos     int
	cur     *fakeRow
	closed  bool
}

func (c *fakeCursor) Next(ctx context.Context) bool {
	if c.cur != nil {
		c.cur.stale = true
	}
	if c.pos >= len(c.rows) {
		return false
	}
	c.cur = &fakeRow{cols: c.cols, values: c.rows[c.pos]}
	c.pos++
	return true
}

func (c *fakeCursor) Row() Row   { return c.cur }
func (c *fakeCursor) Err() error { return nil }
func (c *fakeCursor) Close() error {
	c.closed = true
	return nil
}

// fakeExecutor answers every Fetch with a canned set of rows and every
// Execute with canned affected/last-insert counters, recording what it was
// asked to run so tests can assert on call shape.
type fakeExecutor struct {
	cols     []string
	rows     [][]RawValue
	affected int64
	lastID   int64
	execErr  error
	fetchErr error

	lastSQL  string
	lastArgs []any
}

func (e *fakeExecutor) NewArguments() Arguments { return &fakeArguments{} }

func (e *fakeExecutor) Execute(ctx context.Context, query string, args Arguments) (int64, int64, error) {
	e.lastSQL = query
	if a, ok := args.(*fakeArguments); ok {
		e.lastArgs = a.vals
	}
	if e.execErr != nil {
		return 0, 0, e.execErr
	}
	return e.affected, e.lastID, nil
}

func (e *fakeExecutor) Fetch(ctx context.Context, query string, args Arguments) (Cursor, error) {
	e.lastSQL = query
	if a, ok := args.(*fakeArguments); ok {
		e.lastArgs = a.vals
	}
	if e.fetchErr != nil {
		return nil, e.fetchErr
	}
	return &fakeCursor{cols: e.cols, rows: e.rows}, nil
}

func (e *fakeExecutor) Describe(ctx context.Context, query string) (Describe, error) {
	return Describe{}, nil
}
