/*
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
"License"); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

// Package config holds the settings of the softswitch daemon. Values come
// from an optional YAML file, SOFTSWITCH_ environment variables and flags,
// in increasing order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/k-vswitch/softswitch/bufferpool"
	"github.com/k-vswitch/softswitch/translation"
)

const (
	EnvPrefix = "SOFTSWITCH"

	DefaultCapacity       = 4096
	DefaultVersion        = "1.3"
	DefaultTables         = 4
	DefaultTableSize      = 65536
	DefaultMetricsAddress = ":9464"
	DefaultStatsInterval  = 30 * time.Second

	// minSlotSize fits a minimum ethernet frame with a VLAN tag.
	minSlotSize = 68
)

type Config struct {
	Pool     PoolConfig     `mapstructure:"pool"`
	OpenFlow OpenFlowConfig `mapstructure:"openflow"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Ports    []Port         `mapstructure:"ports"`
}

type PoolConfig struct {
	Capacity int    `mapstructure:"capacity"`
	SlotSize int    `mapstructure:"slot-size"`
	Policy   string `mapstructure:"policy"`
	// Mmap backs the slots with anonymous mappings instead of the Go heap.
	Mmap       bool `mapstructure:"mmap"`
	LockMemory bool `mapstructure:"lock-memory"`
}

type OpenFlowConfig struct {
	Version   string `mapstructure:"version"`
	Tables    int    `mapstructure:"tables"`
	TableSize uint32 `mapstructure:"table-size"`
}

type MetricsConfig struct {
	// Address is where /metrics is served. Empty disables the endpoint.
	Address string `mapstructure:"address"`
}

type StatsConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// Port is a kernel link attached to the switch. Features lists OFPPF names
// such as 10GB_FD or COPPER.
type Port struct {
	Name     string   `mapstructure:"name"`
	Features []string `mapstructure:"features"`
}

var flagKeys = map[string]string{
	"pool-capacity":    "pool.capacity",
	"pool-slot-size":   "pool.slot-size",
	"pool-policy":      "pool.policy",
	"pool-mmap":        "pool.mmap",
	"pool-lock-memory": "pool.lock-memory",
	"openflow-version": "openflow.version",
	"openflow-tables":  "openflow.tables",
	"metrics-address":  "metrics.address",
	"stats-interval":   "stats.interval",
}

// SetDefaults registers every key with its default so that environment
// variables can override keys missing from the config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pool.capacity", DefaultCapacity)
	v.SetDefault("pool.slot-size", bufferpool.DefaultSlotSize)
	v.SetDefault("pool.policy", bufferpool.PolicyBlocking.String())
	v.SetDefault("pool.mmap", false)
	v.SetDefault("pool.lock-memory", false)
	v.SetDefault("openflow.version", DefaultVersion)
	v.SetDefault("openflow.tables", DefaultTables)
	v.SetDefault("openflow.table-size", DefaultTableSize)
	v.SetDefault("metrics.address", DefaultMetricsAddress)
	v.SetDefault("stats.interval", DefaultStatsInterval)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// AddFlags defines the daemon flags on fs and binds them to their keys in v.
func AddFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.Int("pool-capacity", DefaultCapacity, "number of packet buffers, reserved slots are added on top")
	fs.Int("pool-slot-size", bufferpool.DefaultSlotSize, "size in bytes of every packet buffer")
	fs.String("pool-policy", bufferpool.PolicyBlocking.String(), "behavior on pool exhaustion: blocking or non-blocking")
	fs.Bool("pool-mmap", false, "back packet buffers with anonymous memory mappings")
	fs.Bool("pool-lock-memory", false, "lock mapped packet buffers in memory")
	fs.String("openflow-version", DefaultVersion, "OpenFlow version spoken with the controller: 1.2 or 1.3")
	fs.Int("openflow-tables", DefaultTables, "number of flow tables")
	fs.String("metrics-address", DefaultMetricsAddress, "address of the metrics endpoint, empty to disable")
	fs.Duration("stats-interval", DefaultStatsInterval, "interval between pool statistics log lines")

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return errors.Wrapf(err, "error binding flag %q", name)
		}
	}
	return nil
}

// Load reads file, when set, and returns the validated configuration.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "error reading config file %q", file)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "error decoding config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Pool.Capacity <= 0 {
		return errors.Errorf("pool.capacity must be positive, got %d", c.Pool.Capacity)
	}
	if c.Pool.SlotSize < minSlotSize {
		return errors.Errorf("pool.slot-size must be at least %d, got %d", minSlotSize, c.Pool.SlotSize)
	}
	if _, err := bufferpool.ParsePolicy(c.Pool.Policy); err != nil {
		return errors.Wrap(err, "invalid pool.policy")
	}
	if c.Pool.LockMemory && !c.Pool.Mmap {
		return errors.New("pool.lock-memory requires pool.mmap")
	}

	if _, err := translation.ParseVersion(c.OpenFlow.Version); err != nil {
		return errors.Wrap(err, "invalid openflow.version")
	}
	if c.OpenFlow.Tables < 1 || c.OpenFlow.Tables > 254 {
		return errors.Errorf("openflow.tables must be between 1 and 254, got %d", c.OpenFlow.Tables)
	}

	if c.Stats.Interval < 0 {
		return errors.Errorf("stats.interval must not be negative, got %s", c.Stats.Interval)
	}

	names := make(map[string]bool, len(c.Ports))
	for i, p := range c.Ports {
		if p.Name == "" {
			return errors.Errorf("ports[%d] has no name", i)
		}
		if names[p.Name] {
			return errors.Errorf("port %q is listed twice", p.Name)
		}
		names[p.Name] = true
	}

	return nil
}

// PoolConfig returns the buffer pool settings. The configuration must have
// been validated.
func (c *Config) PoolConfig() bufferpool.Config {
	policy, _ := bufferpool.ParsePolicy(c.Pool.Policy)

	return bufferpool.Config{
		Capacity: c.Pool.Capacity,
		SlotSize: c.Pool.SlotSize,
		Policy:   policy,
	}
}

// PoolMemory returns the packet memory matching the pool settings.
func (c *Config) PoolMemory() bufferpool.Memory {
	if c.Pool.Mmap {
		return bufferpool.NewMmapMemory(c.Pool.LockMemory)
	}
	return bufferpool.NewHeapMemory()
}

// Version returns the negotiated OpenFlow version. The configuration must
// have been validated.
func (c *Config) Version() uint8 {
	v, _ := translation.ParseVersion(c.OpenFlow.Version)
	return v
}
