// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the settings of a vault host from yaml, .env files and
// NFTVAULT_ prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"

	"github.com/ctznlabs/nftvault/log"
	"github.com/ctznlabs/nftvault/program"
	"github.com/ctznlabs/nftvault/program/reward"
	"github.com/ctznlabs/nftvault/program/user"
)

// EnvPrefix marks the environment variables read into the config.
// A double underscore separates levels, e.g. NFTVAULT_LEDGER__CACHE_SIZE.
const EnvPrefix = "NFTVAULT_"

var logger = log.WithContext("pkg", "config")

// Config is the top-level configuration.
type Config struct {
	Program *ProgramConfig `koanf:"program" yaml:"program"`
	Ledger  *LedgerConfig  `koanf:"ledger" yaml:"ledger"`
	Log     *LogConfig     `koanf:"log" yaml:"log"`
	Metrics *MetricsConfig `koanf:"metrics" yaml:"metrics"`
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if cfg.Program == nil {
		return errors.New("program config is required")
	}
	if err := cfg.Program.Validate(); err != nil {
		return errors.Wrap(err, "program")
	}
	if cfg.Ledger == nil {
		return errors.New("ledger config is required")
	}
	if err := cfg.Ledger.Validate(); err != nil {
		return errors.Wrap(err, "ledger")
	}
	if cfg.Log != nil {
		if err := cfg.Log.Validate(); err != nil {
			return errors.Wrap(err, "log")
		}
	}
	return nil
}

// ProgramConfig holds the deployment parameters of the vault program.
type ProgramConfig struct {
	// ProgramID is the base58 id owning vault and user records.
	ProgramID string `koanf:"program_id" yaml:"program_id"`

	// RatePerSecond is paid per staked item per second.
	RatePerSecond uint64 `koanf:"rate_per_second" yaml:"rate_per_second"`

	// Rates overrides RatePerSecond per item type name, e.g. special-b.
	Rates map[string]uint64 `koanf:"rates" yaml:"rates,omitempty"`

	// ClassBLockup is the minimum staked time of ClassB items, in seconds.
	ClassBLockup uint64 `koanf:"class_b_lockup" yaml:"class_b_lockup"`

	// Operators may unstake on behalf of stakers.
	Operators []string `koanf:"operators" yaml:"operators,omitempty"`
}

// Validate validates the program configuration.
func (cfg *ProgramConfig) Validate() error {
	_, err := cfg.Params()
	return err
}

// Params converts the configuration into program parameters.
func (cfg *ProgramConfig) Params() (program.Params, error) {
	id, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return program.Params{}, errors.Wrapf(err, "invalid program_id %q", cfg.ProgramID)
	}
	if cfg.RatePerSecond == 0 {
		return program.Params{}, errors.New("rate_per_second must be positive")
	}
	params := program.DefaultParams(id)
	params.ClassBLockup = cfg.ClassBLockup
	params.Schedule = reward.Schedule{Default: cfg.RatePerSecond}
	if len(cfg.Rates) > 0 {
		params.Schedule.ByType = make(map[user.ItemType]uint64, len(cfg.Rates))
		for name, rate := range cfg.Rates {
			itemType, err := user.ParseItemType(name)
			if err != nil {
				return program.Params{}, err
			}
			params.Schedule.ByType[itemType] = rate
		}
	}
	for _, op := range cfg.Operators {
		key, err := solana.PublicKeyFromBase58(op)
		if err != nil {
			return program.Params{}, errors.Wrapf(err, "invalid operator %q", op)
		}
		params.Operators = append(params.Operators, key)
	}
	return params, nil
}

// LedgerConfig locates the committed ledger state.
type LedgerConfig struct {
	// Path of the leveldb directory. Empty keeps the ledger in memory.
	Path string `koanf:"path" yaml:"path,omitempty"`

	// CacheSize is the number of decoded accounts kept in memory.
	CacheSize int `koanf:"cache_size" yaml:"cache_size"`

	// TransferDB is the sqlite file of the transfer history. Empty keeps it in memory.
	TransferDB string `koanf:"transfer_db" yaml:"transfer_db,omitempty"`

	LevelCacheMB int `koanf:"level_cache_mb" yaml:"level_cache_mb"`
	OpenFiles    int `koanf:"open_files" yaml:"open_files"`
}

// InMemory reports whether nothing is persisted.
func (cfg *LedgerConfig) InMemory() bool {
	return cfg.Path == ""
}

// Validate validates the ledger configuration.
func (cfg *LedgerConfig) Validate() error {
	if cfg.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", cfg.CacheSize)
	}
	if cfg.LevelCacheMB < 0 || cfg.OpenFiles < 0 {
		return errors.New("level_cache_mb and open_files must not be negative")
	}
	return nil
}

// LogConfig contains the logging configuration.
type LogConfig struct {
	Format string `koanf:"format" yaml:"format"`
	Level  string `koanf:"level" yaml:"level"`
}

// Validate validates the logging configuration.
func (cfg *LogConfig) Validate() error {
	if _, err := log.ParseLevel(cfg.Level); err != nil {
		return err
	}
	switch cfg.Format {
	case "", log.FormatTerminal, log.FormatLogfmt, log.FormatJSON:
		return nil
	}
	return fmt.Errorf("unknown log format %q", cfg.Format)
}

// MetricsConfig contains the metrics configuration.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`
}

// Default returns the configuration used when nothing overrides it.
// The program id is left empty and must be provided.
func Default() *Config {
	return &Config{
		Program: &ProgramConfig{
			RatePerSecond: reward.DefaultRatePerSecond,
			ClassBLockup:  program.DefaultClassBLockup,
		},
		Ledger: &LedgerConfig{
			CacheSize:    1024,
			LevelCacheMB: 16,
			OpenFiles:    64,
		},
		Log: &LogConfig{
			Format: log.FormatTerminal,
			Level:  "info",
		},
		Metrics: &MetricsConfig{},
	}
}

func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"program.rate_per_second": d.Program.RatePerSecond,
		"program.class_b_lockup":  d.Program.ClassBLockup,
		"ledger.cache_size":       d.Ledger.CacheSize,
		"ledger.level_cache_mb":   d.Ledger.LevelCacheMB,
		"ledger.open_files":       d.Ledger.OpenFiles,
		"log.format":              d.Log.Format,
		"log.level":               d.Log.Level,
		"metrics.enabled":         d.Metrics.Enabled,
	}
}

// envKey maps NFTVAULT_LEDGER__CACHE_SIZE to ledger.cache_size.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Load reads the yaml file at path over the defaults, then a .env file from
// the working directory when present, then the environment.
// An empty path skips the yaml file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "load .env")
		}
		logger.Debug("no .env file found")
	}
	return initConfig(path)
}

func initConfig(path string) (*Config, error) {
	var config Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, err
	}

	// Load configuration from the yaml config.
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}

	// Load environment variables and merge into the loaded config.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	// Unmarshal into config.
	if err := k.Unmarshal("", &config); err != nil {
		return nil, err
	}

	// Validate config.
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
