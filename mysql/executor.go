package mysql

import (
	"context"

	"github.com/sqlgo/sqlgo"
)

func argSlice(args sqlgo.Arguments) []any {
	a, ok := args.(*arguments)
	if !ok || a == nil {
		return nil
	}
	return a.vals
}

// Execute runs query (a prepared statement, cached per-connection) and
// returns the rows-affected / last-insert-id pair reported by the server.
// It consumes and discards any result set the statement might produce.
func (c *conn) Execute(ctx context.Context, query string, args sqlgo.Arguments) (int64, int64, error) {
	if c.activeCursor {
		return 0, 0, sqlgo.ErrBusyCursor
	}

	done, err := c.watchCancel(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer close(done)

	stmt, owned, err := c.getOrPrepare(query)
	if err != nil {
		return 0, 0, err
	}
	if owned {
		defer c.closeStatement(stmt)
	}

	if err := c.writeExecutePacket(stmt, argSlice(args)); err != nil {
		return 0, 0, err
	}

	columnCount, ok, err := c.readResultSetHeaderPacket()
	if err != nil {
		return 0, 0, err
	}
	if ok != nil {
		return ok.affectedRows, ok.lastInsertID, nil
	}

	// A result set was returned from what the caller treated as an Execute;
	// consume and discard it rather than leaving the connection mid-result.
	if _, err := c.readColumns(columnCount); err != nil {
		return 0, 0, err
	}
	if err := c.readUntilEOF(); err != nil {
		return 0, 0, err
	}
	return 0, 0, nil
}

// Fetch runs query and returns a Cursor over its result set.
func (c *conn) Fetch(ctx context.Context, query string, args sqlgo.Arguments) (sqlgo.Cursor, error) {
	if c.activeCursor {
		return nil, sqlgo.ErrBusyCursor
	}

	done, err := c.watchCancel(ctx)
	if err != nil {
		return nil, err
	}

	stmt, owned, err := c.getOrPrepare(query)
	if err != nil {
		close(done)
		return nil, err
	}

	if err := c.writeExecutePacket(stmt, argSlice(args)); err != nil {
		close(done)
		if owned {
			c.closeStatement(stmt)
		}
		return nil, err
	}

	columnCount, ok, err := c.readResultSetHeaderPacket()
	close(done)
	if err != nil {
		if owned {
			c.closeStatement(stmt)
		}
		return nil, err
	}
	if ok != nil {
		if owned {
			c.closeStatement(stmt)
		}
		return &emptyCursor{}, nil
	}

	cols, err := c.readColumns(columnCount)
	if err != nil {
		if owned {
			c.closeStatement(stmt)
		}
		return nil, err
	}
	stmt.columns = cols

	cur, err := c.openCursor(stmt)
	if err != nil {
		return nil, err
	}
	if owned {
		cur.onClose = func() { c.closeStatement(stmt) }
	}
	return cur, nil
}

// Describe resolves query's parameter and result-column metadata by
// preparing it (without executing) and reading back what the server
// reports.
func (c *conn) Describe(ctx context.Context, query string) (sqlgo.Describe, error) {
	done, err := c.watchCancel(ctx)
	if err != nil {
		return sqlgo.Describe{}, err
	}
	defer close(done)

	stmt, owned, err := c.getOrPrepare(query)
	if err != nil {
		return sqlgo.Describe{}, err
	}
	if owned {
		defer c.closeStatement(stmt)
	}

	d := sqlgo.Describe{}
	for _, p := range stmt.paramColumns {
		d.ParameterTypes = append(d.ParameterTypes, typeInfoFor(p))
	}
	for _, col := range stmt.columns {
		d.Columns = append(d.Columns, sqlgo.ColumnDescription{
			Name:     col.name,
			Type:     typeInfoFor(col),
			Nullable: col.nullable(),
		})
	}
	return d, nil
}

// emptyCursor is returned by Fetch when the executed statement turned out
// to produce no result set (e.g. an UPDATE run through Fetch by mistake).
type emptyCursor struct{}

func (emptyCursor) Next(context.Context) bool { return false }
func (emptyCursor) Row() sqlgo.Row             { return nil }
func (emptyCursor) Err() error                  { return nil }
func (emptyCursor) Close() error                { return nil }
