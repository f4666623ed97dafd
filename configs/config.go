// Package configs loads the YAML configuration that wires cmd/lbpsyncd's
// live runner together: RPC endpoint, the deployed pool contract, the
// owner/operator key material, the schedules to host, and the MySQL
// recorder DSN.
package configs

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/lbpsync/lbpengine"
	"github.com/lbpsync/lbpengine/pkg/hostamm"
)

// Config is the entire configuration structure loaded from config.yml.
type Config struct {
	RPC             string          `yaml:"rpc"`
	Pool            PoolYAMLData    `yaml:"pool"`
	Owner           OwnerYAMLData   `yaml:"owner"`
	Pools           []PoolSchedule  `yaml:"pools"`
	Storage         StorageYAMLData `yaml:"storage"`
	PollIntervalSec int             `yaml:"poll_interval_sec"`
}

// PoolYAMLData identifies the deployed concentrated-liquidity AMM contract
// this runner talks to and the ABI file describing its interface.
type PoolYAMLData struct {
	Address string `yaml:"address"`
	ABI     string `yaml:"abi"`
}

// OwnerYAMLData is the operating account's key material as written in
// config.yml. The fields are loaded as plain strings and not interpreted
// here; cmd/lbpsyncd reads its operator key from the ENC_PK/KEY
// environment variables instead.
type OwnerYAMLData struct {
	Address     string `yaml:"address"`
	Key         string `yaml:"key"`
	KeyPassword string `yaml:"key_password"`
}

// PoolSchedule is one hosted pool's liquidity-bootstrapping schedule, the
// YAML-serialisable counterpart of lbpengine.Schedule (big.Int and
// common.Address fields are carried as their human-readable string forms
// and converted in ToSchedule).
type PoolSchedule struct {
	PoolID      string `yaml:"pool_id"`
	TotalAmount string `yaml:"total_amount"`
	StartTime   uint32 `yaml:"start_time"`
	EndTime     uint32 `yaml:"end_time"`
	MinTick     int32  `yaml:"min_tick"`
	MaxTick     int32  `yaml:"max_tick"`
	IsToken0    bool   `yaml:"is_token0"`
	EpochSize   uint64 `yaml:"epoch_size_sec"`
	TickSpacing int32  `yaml:"tick_spacing"`
	Owner       string `yaml:"owner"`
}

// ToSchedule converts the YAML-friendly form into the lbpengine.Schedule
// the Manager requires, and returns the pool ID it's keyed under.
func (p PoolSchedule) ToSchedule() (hostamm.PoolID, lbpengine.Schedule, error) {
	total, ok := new(big.Int).SetString(p.TotalAmount, 10)
	if !ok {
		return hostamm.PoolID{}, lbpengine.Schedule{}, fmt.Errorf("configs: invalid total_amount %q for pool %q", p.TotalAmount, p.PoolID)
	}

	sched := lbpengine.Schedule{
		TotalAmount: total,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		MinTick:     p.MinTick,
		MaxTick:     p.MaxTick,
		IsToken0:    p.IsToken0,
		EpochSize:   p.EpochSize,
		TickSpacing: p.TickSpacing,
		Owner:       common.HexToAddress(p.Owner),
	}
	return common.HexToHash(p.PoolID), sched, nil
}

// StorageYAMLData configures the optional MySQL event recorder. A blank
// DSN disables recording rather than erroring, so the runner works without
// a database during development.
type StorageYAMLData struct {
	DSN string `yaml:"dsn"`
}

// LoadConfig reads and parses config.yml into a Config struct.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &config, nil
}

// PollInterval returns the configured polling period, defaulting to 30s
// when unset so cmd/lbpsyncd never busy-loops on a zero-value config.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.PollIntervalSec) * time.Second
}
