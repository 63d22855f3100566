package poolconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pools.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadAppliesBaseToUnspecifiedPool(t *testing.T) {
	path := writeTemp(t, `
defaults:
  min_idle: 2
  max_open: 20
  idle_timeout: 5m
pools:
  orders: {}
`)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := d.Options("orders")
	if opts.MinIdle != 2 || opts.MaxOpen != 20 {
		t.Fatalf("opts = %+v, want MinIdle=2 MaxOpen=20", opts)
	}
	if opts.IdleTimeout != 5*time.Minute {
		t.Fatalf("IdleTimeout = %v, want 5m", opts.IdleTimeout)
	}
}

func TestLoadPoolOverridesBase(t *testing.T) {
	path := writeTemp(t, `
defaults:
  max_open: 20
pools:
  reporting:
    max_open: 4
`)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := d.Options("reporting").MaxOpen; got != 4 {
		t.Fatalf("MaxOpen = %d, want 4 (pool override)", got)
	}
}

func TestOptionsUnknownPoolFallsBackToBase(t *testing.T) {
	path := writeTemp(t, `
defaults:
  max_open: 7
`)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := d.Options("nonexistent").MaxOpen; got != 7 {
		t.Fatalf("MaxOpen = %d, want 7 (base)", got)
	}
}

func TestLoadSubstitutesEnvVars(t *testing.T) {
	t.Setenv("SQLGO_TEST_MAX_OPEN", "9")
	path := writeTemp(t, `
defaults:
  max_open: ${SQLGO_TEST_MAX_OPEN}
`)
	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := d.Options("anything").MaxOpen; got != 9 {
		t.Fatalf("MaxOpen = %d, want 9 (substituted from env)", got)
	}
}

func TestLoadRejectsMinIdleExceedingMaxOpen(t *testing.T) {
	path := writeTemp(t, `
defaults:
  max_open: 5
pools:
  orders:
    min_idle: 10
    max_open: 5
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted min_idle greater than max_open")
	}
}
