package sqlgo

import "context"

// Connection is a single, non-pooled link to a database server. It is not
// safe for concurrent use: at most one Cursor may be open on a Connection at
// a time, and at most one goroutine may call its methods at a time. Pool
// wraps Connection to provide concurrency-safe sharing.
type Connection interface {
	Executor

	// Ping verifies the connection is still alive, round-tripping to the
	// server if the transport gives no cheaper signal.
	Ping(ctx context.Context) error

	// Close releases the connection's transport. Any cursor still open on
	// it is invalidated. Close is idempotent.
	Close() error
}

// Executor is the query-running surface shared by a bare Connection and by
// a Pool (which executes against whichever connection it acquires
// internally). It is the minimal contract Query and Map are built on.
type Executor interface {
	// Execute runs query with args bound positionally and returns the
	// number of rows affected and, if the family reports one, the last
	// inserted id. It does not return a result set; used for INSERT,
	// UPDATE, DELETE, DDL.
	Execute(ctx context.Context, query string, args Arguments) (RowsAffected int64, LastInsertID int64, err error)

	// Fetch runs query with args bound positionally and returns a Cursor
	// over its result set. The cursor must be exhausted or Closed before
	// the Executor is used for anything else.
	Fetch(ctx context.Context, query string, args Arguments) (Cursor, error)

	// Describe resolves the parameter and result-column types of query
	// without executing it, where the family supports doing so.
	Describe(ctx context.Context, query string) (Describe, error)

	// NewArguments returns an empty Arguments buffer of the concrete type
	// this Executor's family expects for bound parameters.
	NewArguments() Arguments
}

// Connect dials a new, ready-to-use Connection. Each database family
// exposes a Connect function with this shape, typically configured through
// family-specific functional options rather than through this signature
// directly (e.g. mysql.Connect(ctx, dsn, mysql.WithStatementCacheSize(64))).
type Connect func(ctx context.Context) (Connection, error)
