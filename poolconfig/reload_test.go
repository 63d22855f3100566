package poolconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sqlgo/sqlgo"
)

type nopConnection struct{}

func (nopConnection) Ping(context.Context) error { return nil }
func (nopConnection) Close() error                { return nil }
func (nopConnection) Execute(context.Context, string, sqlgo.Arguments) (int64, int64, error) {
	return 0, 0, nil
}
func (nopConnection) Fetch(context.Context, string, sqlgo.Arguments) (sqlgo.Cursor, error) {
	return nil, nil
}
func (nopConnection) Describe(context.Context, string) (sqlgo.Describe, error) {
	return sqlgo.Describe{}, nil
}
func (nopConnection) NewArguments() sqlgo.Arguments { return nil }

func TestWatchPoolsReconfiguresOnReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pools.yaml")
	if err := os.WriteFile(path, []byte("defaults:\n  max_open: 2\npools:\n  orders: {}\n"), 0o600); err != nil {
		t.Fatalf("writing initial config: %v", err)
	}

	p := sqlgo.NewPool(func(context.Context) (sqlgo.Connection, error) {
		return nopConnection{}, nil
	}, sqlgo.PoolOptions{MaxOpen: 2})
	defer p.Close()

	w, err := WatchPools(path, map[string]*sqlgo.Pool{"orders": p}, nil)
	if err != nil {
		t.Fatalf("WatchPools: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("defaults:\n  max_open: 8\npools:\n  orders: {}\n"), 0o600); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Stats().MaxOpen == 8 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("pool MaxOpen = %d, want 8 after reload", p.Stats().MaxOpen)
}
