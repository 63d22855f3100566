package poolconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pools.yaml")
	if err := os.WriteFile(path, []byte("defaults:\n  max_open: 3\n"), 0o600); err != nil {
		t.Fatalf("writing initial config: %v", err)
	}

	reloaded := make(chan *Defaults, 1)
	w, err := Watch(path, func(d *Defaults) { reloaded <- d }, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("defaults:\n  max_open: 9\n"), 0o600); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	select {
	case d := <-reloaded:
		if got := d.Options("anything").MaxOpen; got != 9 {
			t.Fatalf("reloaded MaxOpen = %d, want 9", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not reload after the config file changed")
	}
}
