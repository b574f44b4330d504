// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes how a reward pool is set up: its epoch, share
// precision, phase schedule and the initial external balances.
package genesis

import (
	"bytes"
	"os"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/schedule"
	"github.com/vechain/rewardpool/thor"
)

// Config is the immutable setup of a pool.
type Config struct {
	Name            string           `yaml:"name"`
	EpochStartBlock uint64           `yaml:"epochStartBlock"`
	PrecisionScale  *HexOrDecimal256 `yaml:"precisionScale,omitempty"`
	Phases          []Phase          `yaml:"phases"`
	Allocations     []Allocation     `yaml:"allocations,omitempty"`
}

// Phase pays Rate per block up to Limit blocks after the epoch start.
type Phase struct {
	Rate  HexOrDecimal256 `yaml:"rate"`
	Limit uint64          `yaml:"limit"`
}

// Allocation credits an external balance when the pool data dir is initialized.
type Allocation struct {
	Address thor.Address    `yaml:"address"`
	Amount  HexOrDecimal256 `yaml:"amount"`
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse decodes and validates a YAML config. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the schedule and the precision scale.
func (c *Config) Validate() error {
	if _, err := c.Schedule(); err != nil {
		return err
	}
	if scale := c.Scale(); scale.IsZero() {
		return errors.New("precision scale must be positive")
	}
	for _, a := range c.Allocations {
		if a.Address.IsZero() {
			return errors.New("allocation to the zero address")
		}
	}
	return nil
}

// Scale returns the share precision multiplier.
func (c *Config) Scale() *uint256.Int {
	if c.PrecisionScale == nil {
		return new(uint256.Int).Set(thor.DefaultPrecisionScale)
	}
	return c.PrecisionScale.Int()
}

// Schedule builds the phase schedule.
func (c *Config) Schedule() (*schedule.Schedule, error) {
	phases := make([]schedule.Phase, 0, len(c.Phases))
	for _, p := range c.Phases {
		phases = append(phases, schedule.Phase{Rate: uint256.Int(p.Rate), Limit: p.Limit})
	}
	s, err := schedule.New(phases)
	if err != nil {
		return nil, errors.Wrap(err, "invalid phases")
	}
	return s, nil
}

// LedgerConfig returns the ledger setup described by the config.
func (c *Config) LedgerConfig() (ledger.Config, error) {
	s, err := c.Schedule()
	if err != nil {
		return ledger.Config{}, err
	}
	return ledger.Config{
		EpochStartBlock: c.EpochStartBlock,
		Schedule:        s,
		Scale:           c.Scale(),
	}, nil
}
