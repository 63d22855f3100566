// Package poolconfig loads sqlgo.PoolOptions from YAML, with environment
// variable substitution and optional hot-reload, mirroring the layered
// defaults/overrides shape of a multi-tenant connection pool config.
package poolconfig

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sqlgo/sqlgo"
)

// Defaults is the top-level pool configuration document. Pools is keyed by
// an arbitrary pool name (e.g. a logical database or tenant) so one file
// can describe several sqlgo.Pool instances sharing a Base.
type Defaults struct {
	Base  PoolSettings            `yaml:"defaults"`
	Pools map[string]PoolSettings `yaml:"pools"`
}

// PoolSettings is the YAML-facing mirror of sqlgo.PoolOptions. Every field
// is a pointer so a pool-specific entry can leave a field unset and inherit
// Defaults.Base's value via Effective*.
type PoolSettings struct {
	MinIdle        *int           `yaml:"min_idle,omitempty"`
	MaxOpen        *int           `yaml:"max_open,omitempty"`
	IdleTimeout    *time.Duration `yaml:"idle_timeout,omitempty"`
	MaxLifetime    *time.Duration `yaml:"max_lifetime,omitempty"`
	AcquireTimeout *time.Duration `yaml:"acquire_timeout,omitempty"`
}

func (s PoolSettings) effectiveMinIdle(base PoolSettings) int {
	if s.MinIdle != nil {
		return *s.MinIdle
	}
	if base.MinIdle != nil {
		return *base.MinIdle
	}
	return 0
}

func (s PoolSettings) effectiveMaxOpen(base PoolSettings) int {
	if s.MaxOpen != nil {
		return *s.MaxOpen
	}
	if base.MaxOpen != nil {
		return *base.MaxOpen
	}
	return 10
}

func (s PoolSettings) effectiveIdleTimeout(base PoolSettings) time.Duration {
	if s.IdleTimeout != nil {
		return *s.IdleTimeout
	}
	if base.IdleTimeout != nil {
		return *base.IdleTimeout
	}
	return 5 * time.Minute
}

func (s PoolSettings) effectiveMaxLifetime(base PoolSettings) time.Duration {
	if s.MaxLifetime != nil {
		return *s.MaxLifetime
	}
	if base.MaxLifetime != nil {
		return *base.MaxLifetime
	}
	return 30 * time.Minute
}

func (s PoolSettings) effectiveAcquireTimeout(base PoolSettings) time.Duration {
	if s.AcquireTimeout != nil {
		return *s.AcquireTimeout
	}
	if base.AcquireTimeout != nil {
		return *base.AcquireTimeout
	}
	return 10 * time.Second
}

// Options resolves the named pool's settings against Base, producing a
// ready-to-use sqlgo.PoolOptions. Unknown names resolve to Base alone.
func (d *Defaults) Options(name string) sqlgo.PoolOptions {
	s := d.Pools[name]
	return sqlgo.PoolOptions{
		MinIdle:        s.effectiveMinIdle(d.Base),
		MaxOpen:        s.effectiveMaxOpen(d.Base),
		IdleTimeout:    s.effectiveIdleTimeout(d.Base),
		MaxLifetime:    s.effectiveMaxLifetime(d.Base),
		AcquireTimeout: s.effectiveAcquireTimeout(d.Base),
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		if v, ok := os.LookupEnv(string(name)); ok {
			return []byte(v)
		}
		return match
	})
}

// Load reads and parses a YAML pool-defaults file, substituting ${VAR}
// references against the process environment before unmarshalling.
func Load(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("poolconfig: reading %s: %w", path, err)
	}
	data = substituteEnvVars(data)

	d := &Defaults{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("poolconfig: parsing %s: %w", path, err)
	}
	if err := validate(d); err != nil {
		return nil, fmt.Errorf("poolconfig: validating %s: %w", path, err)
	}
	return d, nil
}

func validate(d *Defaults) error {
	for name, s := range d.Pools {
		if s.MaxOpen != nil && *s.MaxOpen <= 0 {
			return fmt.Errorf("pool %q: max_open must be positive", name)
		}
		if s.MinIdle != nil && s.MaxOpen != nil && *s.MinIdle > *s.MaxOpen {
			return fmt.Errorf("pool %q: min_idle (%d) exceeds max_open (%d)", name, *s.MinIdle, *s.MaxOpen)
		}
	}
	return nil
}
