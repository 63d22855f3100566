package poolconfig

import (
	"log/slog"

	"github.com/sqlgo/sqlgo"
)

// WatchPools ties a Defaults file to a set of live pools keyed by the same
// names used under the file's "pools" section: on every debounced reload,
// each pool is handed its freshly resolved sqlgo.PoolOptions via
// sqlgo.Pool.Reconfigure. Pools absent from the file keep whatever options
// they were constructed with.
func WatchPools(path string, pools map[string]*sqlgo.Pool, logger *slog.Logger) (*Watcher, error) {
	return Watch(path, func(d *Defaults) {
		for name, p := range pools {
			p.Reconfigure(d.Options(name))
		}
	}, logger)
}
