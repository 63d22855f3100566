package sqlgo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeConnection is a no-op Connection used to drive Pool without a real
// database. Execute/Fetch/Describe are unused by the pool tests below; only
// Ping and Close matter to Acquire/Release bookkeeping.
type fakeConnection struct {
	closed atomic.Bool
}

func (c *fakeConnection) Ping(ctx context.Context) error { return nil }
func (c *fakeConnection) Close() error {
	c.closed.Store(true)
	return nil
}
func (c *fakeConnection) Execute(ctx context.Context, query string, args Arguments) (int64, int64, error) {
	return 0, 0, nil
}
func (c *fakeConnection) Fetch(ctx context.Context, query string, args Arguments) (Cursor, error) {
	return &fakeCursor{}, nil
}
func (c *fakeConnection) Describe(ctx context.Context, query string) (Describe, error) {
	return Describe{}, nil
}
func (c *fakeConnection) NewArguments() Arguments { return &fakeArguments{} }

func countingConnect(n *int64) Connect {
	return func(ctx context.Context) (Connection, error) {
		atomic.AddInt64(n, 1)
		return &fakeConnection{}, nil
	}
}

func TestPoolAcquireReleaseRoundTrip(t *testing.T) {
	var dials int64
	p := NewPool(countingConnect(&dials), PoolOptions{MaxOpen: 2})
	defer p.Close()

	conn, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got := p.Stats().Active; got != 1 {
		t.Fatalf("Active = %d, want 1", got)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := p.Stats().Idle; got != 1 {
		t.Fatalf("Idle = %d, want 1", got)
	}

	if _, err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if dials != 1 {
		t.Fatalf("dials = %d, want 1 (second Acquire should reuse the released connection)", dials)
	}
}

func TestPoolAcquireAfterCloseFails(t *testing.T) {
	var dials int64
	p := NewPool(countingConnect(&dials), PoolOptions{MaxOpen: 2})
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := p.Acquire(context.Background()); err != ErrPoolClosed {
		t.Fatalf("Acquire after Close = %v, want ErrPoolClosed", err)
	}
}

func TestPoolAcquireBlocksAtMaxOpenThenUnblocksOnRelease(t *testing.T) {
	var dials int64
	p := NewPool(countingConnect(&dials), PoolOptions{MaxOpen: 1})
	defer p.Close()

	conn, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	var exhausted atomic.Bool
	p.opts.OnExhausted = func() { exhausted.Store(true) }

	done := make(chan struct{})
	go func() {
		second, err := p.Acquire(context.Background())
		if err != nil {
			t.Errorf("second Acquire: %v", err)
		} else {
			second.Close()
		}
		close(done)
	}()

	// Give the goroutine a chance to block before releasing.
	deadline := time.Now().Add(time.Second)
	for !exhausted.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("release: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never unblocked after release")
	}
	if dials != 1 {
		t.Fatalf("dials = %d, want 1", dials)
	}
}

func TestPoolErrorBudgetFailsFastAfterConsecutiveDialFailures(t *testing.T) {
	dialErr := errors.New("dial refused")
	var attempts int64
	connect := func(ctx context.Context) (Connection, error) {
		atomic.AddInt64(&attempts, 1)
		return nil, dialErr
	}
	p := NewPool(connect, PoolOptions{MaxOpen: 2})
	defer p.Close()

	budget := p.errorBudget()
	var lastErr error
	for i := 0; i < budget+2; i++ {
		_, lastErr = p.Acquire(context.Background())
	}

	var timeoutErr *PoolTimeoutError
	if !errors.As(lastErr, &timeoutErr) {
		t.Fatalf("error after exhausting budget = %v, want *PoolTimeoutError", lastErr)
	}
	if attempts != int64(budget) {
		t.Fatalf("dial attempts = %d, want exactly the error budget (%d)", attempts, budget)
	}
}

func TestPoolReconfigureUnblocksWaiterOnMaxOpenIncrease(t *testing.T) {
	var dials int64
	p := NewPool(countingConnect(&dials), PoolOptions{MaxOpen: 1})
	defer p.Close()

	conn, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, err := p.Acquire(context.Background())
		if err != nil {
			t.Errorf("second Acquire: %v", err)
			return
		}
		second.Close()
	}()

	time.Sleep(20 * time.Millisecond)
	p.Reconfigure(PoolOptions{MaxOpen: 2})

	waitCh := make(chan struct{})
	go func() { wg.Wait(); close(waitCh) }()
	select {
	case <-waitCh:
	case <-time.After(time.Second):
		t.Fatal("Reconfigure did not wake the blocked waiter")
	}
	conn.Close()
}
