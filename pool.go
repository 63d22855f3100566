package sqlgo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PoolOptions configures a Pool. Zero values are replaced with defaults in
// NewPool.
type PoolOptions struct {
	// MinIdle is the number of connections the pool tries to keep warm.
	MinIdle int
	// MaxOpen bounds the total number of connections (idle + active) the
	// pool will ever hold at once.
	MaxOpen int
	// IdleTimeout closes an idle connection that has sat unused longer than
	// this. Zero disables idle reaping.
	IdleTimeout time.Duration
	// MaxLifetime closes any connection, idle or not, once it has existed
	// longer than this. Zero disables lifetime reaping.
	MaxLifetime time.Duration
	// AcquireTimeout bounds how long Acquire will wait for a connection
	// when the pool is at MaxOpen and none are idle. Zero means wait
	// indefinitely (subject to the context passed to Acquire).
	AcquireTimeout time.Duration
	// OnExhausted, if set, is called (without holding the pool's lock)
	// every time Acquire must wait because the pool is at MaxOpen with no
	// idle connections.
	OnExhausted func()
	// Logger receives warnings about dial failures and reaping. Defaults
	// to slog.Default().
	Logger *slog.Logger
}

// Stats is a point-in-time snapshot of a Pool's connection accounting,
// suitable for exposing over an HTTP endpoint or forwarding into a metrics
// collector.
type Stats struct {
	Active          int
	Idle            int
	Total           int
	Waiting         int
	MaxOpen         int
	MinIdle         int
	ExhaustedTotal  int64
	DialFailures    int64
}

type pooledConn struct {
	conn      Connection
	createdAt time.Time
	idleSince time.Time
}

func (pc *pooledConn) expired(maxLifetime time.Duration) bool {
	return maxLifetime > 0 && time.Since(pc.createdAt) > maxLifetime
}

func (pc *pooledConn) idleExpired(idleTimeout time.Duration) bool {
	return idleTimeout > 0 && time.Since(pc.idleSince) > idleTimeout
}

// Pool manages a bounded set of Connections to one database, handing them
// out to callers one at a time and reclaiming them on Release. A Pool is
// itself an Executor: Execute/Fetch/Describe acquire a connection, run the
// operation, and release it, so simple one-shot callers never need to touch
// Acquire directly.
type Pool struct {
	connect Connect
	opts    PoolOptions
	logger  *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	idle    []*pooledConn
	active  map[*pooledConn]struct{}
	total   int
	waiting int

	exhaustedTotal int64
	dialFailures   int64
	consecutiveFailures int

	closed bool
	stopCh chan struct{}
}

// NewPool builds a Pool that dials new connections with connect. A
// background goroutine reaps idle and expired connections every
// IdleTimeout/2 (or every 30s if IdleTimeout is zero but MaxLifetime is
// set).
func NewPool(connect Connect, opts PoolOptions) *Pool {
	if opts.MaxOpen <= 0 {
		opts.MaxOpen = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	p := &Pool{
		connect: connect,
		opts:    opts,
		logger:  opts.Logger,
		active:  make(map[*pooledConn]struct{}),
		stopCh:  make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	if opts.IdleTimeout > 0 || opts.MaxLifetime > 0 {
		go p.reapLoop()
	}
	if opts.MinIdle > 0 {
		go p.warmUp()
	}
	return p
}

// errorBudget is the number of consecutive dial failures the pool tolerates
// before it starts failing Acquire immediately with a PoolTimeoutError
// instead of letting every caller queue up behind a database that is down.
func (p *Pool) errorBudget() int {
	if p.opts.MaxOpen > 3 {
		return p.opts.MaxOpen
	}
	return 3
}

func (p *Pool) warmUp() {
	for i := 0; i < p.opts.MinIdle; i++ {
		p.mu.Lock()
		if p.closed || p.total >= p.opts.MinIdle {
			p.mu.Unlock()
			return
		}
		p.total++
		p.mu.Unlock()

		conn, err := p.connect(context.Background())
		if err != nil {
			p.mu.Lock()
			p.total--
			p.mu.Unlock()
			p.logger.Warn("pool warm-up connection failed", "index", i+1, "target", p.opts.MinIdle, "err", err)
			return
		}

		pc := &pooledConn{conn: conn, createdAt: time.Now(), idleSince: time.Now()}
		p.mu.Lock()
		p.idle = append(p.idle, pc)
		p.cond.Signal()
		p.mu.Unlock()
	}
}

// Acquire checks out a ready Connection, dialing a new one if the pool has
// headroom or blocking until one is returned otherwise. The returned
// Connection must be passed to Release exactly once.
func (p *Pool) Acquire(ctx context.Context) (Connection, error) {
	var deadlineAt time.Time
	if p.opts.AcquireTimeout > 0 {
		deadlineAt = time.Now().Add(p.opts.AcquireTimeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadlineAt.IsZero() || ctxDeadline.Before(deadlineAt)) {
		deadlineAt = ctxDeadline
	}

	p.mu.Lock()
	for {
		select {
		case <-ctx.Done():
			p.mu.Unlock()
			return nil, ctx.Err()
		default:
		}

		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}

		for len(p.idle) > 0 {
			pc := p.idle[len(p.idle)-1]
			p.idle = p.idle[:len(p.idle)-1]

			if pc.expired(p.opts.MaxLifetime) {
				p.total--
				p.mu.Unlock()
				pc.conn.Close()
				p.mu.Lock()
				continue
			}
			p.active[pc] = struct{}{}
			p.mu.Unlock()
			return &pooledConnection{pool: p, pc: pc}, nil
		}

		if p.total < p.opts.MaxOpen {
			if p.consecutiveFailures >= p.errorBudget() {
				p.mu.Unlock()
				return nil, &PoolTimeoutError{Cause: fmt.Errorf("sqlgo: %d consecutive dial failures", p.consecutiveFailures)}
			}
			p.total++
			p.mu.Unlock()

			conn, err := p.connect(ctx)
			if err != nil {
				p.mu.Lock()
				p.total--
				p.consecutiveFailures++
				p.dialFailures++
				p.mu.Unlock()
				return nil, err
			}

			p.mu.Lock()
			p.consecutiveFailures = 0
			pc := &pooledConn{conn: conn, createdAt: time.Now()}
			p.active[pc] = struct{}{}
			p.mu.Unlock()
			return &pooledConnection{pool: p, pc: pc}, nil
		}

		p.waiting++
		p.exhaustedTotal++
		cb := p.opts.OnExhausted
		p.mu.Unlock()

		if cb != nil {
			cb()
		}

		p.mu.Lock()
		if !deadlineAt.IsZero() {
			remaining := time.Until(deadlineAt)
			if remaining <= 0 {
				p.waiting--
				p.mu.Unlock()
				return nil, &PoolTimeoutError{}
			}
			timer := time.AfterFunc(remaining, func() { p.cond.Broadcast() })
			p.cond.Wait()
			timer.Stop()
		} else {
			p.cond.Wait()
		}
		p.waiting--

		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		if !deadlineAt.IsZero() && time.Now().After(deadlineAt) {
			p.mu.Unlock()
			return nil, &PoolTimeoutError{}
		}
		// retry from the top, mu held
	}
}

// release returns pc to the pool's idle set, or closes it outright if the
// pool is closed or pc has outlived MaxLifetime.
func (p *Pool) release(pc *pooledConn) {
	p.mu.Lock()
	delete(p.active, pc)

	if p.closed || pc.expired(p.opts.MaxLifetime) {
		p.total--
		p.mu.Unlock()
		pc.conn.Close()
		p.mu.Lock()
		p.cond.Signal()
		p.mu.Unlock()
		return
	}

	pc.idleSince = time.Now()
	p.idle = append(p.idle, pc)
	p.mu.Unlock()

	// Signal, not Broadcast: exactly one waiter should wake per release to
	// avoid a thundering herd over a single freed slot.
	p.cond.Signal()
}

// Reconfigure replaces the pool's limits in place. MaxOpen/IdleTimeout/
// MaxLifetime/AcquireTimeout changes apply to future Acquire/release/reap
// decisions immediately; a MaxOpen increase may let waiters proceed, so
// Reconfigure broadcasts the condition variable. OnExhausted and Logger are
// left untouched if the new value is nil, so a config reload that only
// touches numeric limits doesn't need to replay hook wiring.
func (p *Pool) Reconfigure(opts PoolOptions) {
	if opts.MaxOpen <= 0 {
		opts.MaxOpen = 10
	}
	p.mu.Lock()
	keepOnExhausted, keepLogger := p.opts.OnExhausted, p.opts.Logger
	p.opts = opts
	if opts.OnExhausted == nil {
		p.opts.OnExhausted = keepOnExhausted
	}
	if opts.Logger == nil {
		p.opts.Logger = keepLogger
		p.logger = keepLogger
	} else {
		p.logger = opts.Logger
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	if opts.MinIdle > 0 {
		go p.warmUp()
	}
}

// Stats returns a snapshot of the pool's current accounting.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Active:         len(p.active),
		Idle:           len(p.idle),
		Total:          p.total,
		Waiting:        p.waiting,
		MaxOpen:        p.opts.MaxOpen,
		MinIdle:        p.opts.MinIdle,
		ExhaustedTotal: p.exhaustedTotal,
		DialFailures:   p.dialFailures,
	}
}

// Close closes every idle and active connection and fails any Acquire call
// waiting or made thereafter with ErrPoolClosed. Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.stopCh)
	idle := p.idle
	p.idle = nil
	active := make([]*pooledConn, 0, len(p.active))
	for pc := range p.active {
		active = append(active, pc)
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, pc := range idle {
		pc.conn.Close()
	}
	for _, pc := range active {
		pc.conn.Close()
	}
	return nil
}

func (p *Pool) reapLoop() {
	interval := p.opts.IdleTimeout / 2
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reapIdle()
		}
	}
}

func (p *Pool) reapIdle() {
	p.mu.Lock()
	kept := p.idle[:0]
	var dead []*pooledConn
	for _, pc := range p.idle {
		if pc.idleExpired(p.opts.IdleTimeout) || pc.expired(p.opts.MaxLifetime) {
			dead = append(dead, pc)
			p.total--
			continue
		}
		kept = append(kept, pc)
	}
	p.idle = kept
	p.mu.Unlock()

	for _, pc := range dead {
		pc.conn.Close()
	}
	if len(dead) > 0 {
		p.logger.Debug("pool reaped idle connections", "count", len(dead))
	}
}

// pooledConnection wraps a Connection checked out of a Pool so that Close
// returns it to the pool instead of tearing down the transport.
type pooledConnection struct {
	pool *Pool
	pc   *pooledConn
}

func (c *pooledConnection) Ping(ctx context.Context) error { return c.pc.conn.Ping(ctx) }

func (c *pooledConnection) Close() error {
	c.pool.release(c.pc)
	return nil
}

func (c *pooledConnection) Execute(ctx context.Context, query string, args Arguments) (int64, int64, error) {
	return c.pc.conn.Execute(ctx, query, args)
}

func (c *pooledConnection) Fetch(ctx context.Context, query string, args Arguments) (Cursor, error) {
	return c.pc.conn.Fetch(ctx, query, args)
}

func (c *pooledConnection) Describe(ctx context.Context, query string) (Describe, error) {
	return c.pc.conn.Describe(ctx, query)
}

func (c *pooledConnection) NewArguments() Arguments { return c.pc.conn.NewArguments() }

// Execute acquires a connection, runs query on it, and releases it. It
// implements Executor so a *Pool can be passed anywhere a Connection is
// expected for a single-shot call.
func (p *Pool) Execute(ctx context.Context, query string, args Arguments) (int64, int64, error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer conn.Close()
	return conn.Execute(ctx, query, args)
}

// Fetch acquires a connection and runs query on it, returning a Cursor that
// releases the connection back to the pool when Closed or exhausted.
func (p *Pool) Fetch(ctx context.Context, query string, args Arguments) (Cursor, error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := conn.Fetch(ctx, query, args)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &releasingCursor{Cursor: cur, conn: conn}, nil
}

// Describe acquires a connection, describes query on it, and releases it.
func (p *Pool) Describe(ctx context.Context, query string) (Describe, error) {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return Describe{}, err
	}
	defer conn.Close()
	return conn.Describe(ctx, query)
}

// NewArguments dials a throwaway argument buffer matching the pool's
// family by asking a temporary probe of whichever connection shape connect
// produces; pools always wrap a single, homogeneous family, so this is
// computed once lazily rather than per call in the common path.
func (p *Pool) NewArguments() Arguments {
	p.mu.Lock()
	if len(p.idle) > 0 {
		args := p.idle[0].conn.NewArguments()
		p.mu.Unlock()
		return args
	}
	p.mu.Unlock()

	conn, err := p.Acquire(context.Background())
	if err != nil {
		return nil
	}
	defer conn.Close()
	return conn.NewArguments()
}

// releasingCursor wraps a Cursor obtained from a pooled connection so that
// Close (whether called explicitly or implicitly via exhaustion) returns
// the underlying connection to the pool.
type releasingCursor struct {
	Cursor
	conn Connection
	done bool
}

func (c *releasingCursor) Next(ctx context.Context) bool {
	if more := c.Cursor.Next(ctx); more {
		return true
	}
	c.release()
	return false
}

func (c *releasingCursor) Close() error {
	err := c.Cursor.Close()
	c.release()
	return err
}

func (c *releasingCursor) release() {
	if c.done {
		return
	}
	c.done = true
	c.conn.Close()
}
