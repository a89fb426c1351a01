// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctznlabs/nftvault/program"
	"github.com/ctznlabs/nftvault/program/reward"
	"github.com/ctznlabs/nftvault/program/user"
	"github.com/ctznlabs/nftvault/test/datagen"
)

func writeYAML(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	programID := datagen.RandPublicKey()
	operator := datagen.RandPublicKey()

	path := writeYAML(t, `
program:
  program_id: `+programID.String()+`
  rates:
    special-b: 72
  operators:
    - `+operator.String()+`
ledger:
  path: /var/lib/nftvault
  transfer_db: /var/lib/nftvault/transfers.db
log:
  format: json
  level: debug
metrics:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/nftvault", cfg.Ledger.Path)
	assert.False(t, cfg.Ledger.InMemory())
	assert.Equal(t, 1024, cfg.Ledger.CacheSize, "default kept")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)

	params, err := cfg.Program.Params()
	require.NoError(t, err)
	assert.Equal(t, programID, params.ProgramID)
	assert.Equal(t, program.DefaultClassBLockup, params.ClassBLockup)
	assert.Equal(t, reward.DefaultRatePerSecond, params.Schedule.Rate(user.NormalClassA))
	assert.Equal(t, uint64(72), params.Schedule.Rate(user.SpecialB))
	require.Len(t, params.Operators, 1)
	assert.Equal(t, operator, params.Operators[0])
}

func TestLoadEnv(t *testing.T) {
	programID := datagen.RandPublicKey()
	ops := datagen.RandPublicKeys(2)

	t.Setenv("NFTVAULT_PROGRAM__PROGRAM_ID", programID.String())
	t.Setenv("NFTVAULT_PROGRAM__CLASS_B_LOCKUP", "60")
	t.Setenv("NFTVAULT_PROGRAM__OPERATORS", ops[0].String()+","+ops[1].String())
	t.Setenv("NFTVAULT_LEDGER__CACHE_SIZE", "32")
	t.Setenv("NFTVAULT_LOG__LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Ledger.InMemory())
	assert.Equal(t, 32, cfg.Ledger.CacheSize)
	assert.Equal(t, "warn", cfg.Log.Level)

	params, err := cfg.Program.Params()
	require.NoError(t, err)
	assert.Equal(t, programID, params.ProgramID)
	assert.Equal(t, uint64(60), params.ClassBLockup)
	assert.Equal(t, ops, params.Operators)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, `
program:
  program_id: `+datagen.RandPublicKey().String()+`
  rate_per_second: 10
`)
	t.Setenv("NFTVAULT_PROGRAM__RATE_PER_SECOND", "20")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), cfg.Program.RatePerSecond)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Program.ProgramID = datagen.RandPublicKey().String()
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing program id", func(c *Config) { c.Program.ProgramID = "" }},
		{"bad program id", func(c *Config) { c.Program.ProgramID = "not-base58-0OIl" }},
		{"zero rate", func(c *Config) { c.Program.RatePerSecond = 0 }},
		{"unknown item type", func(c *Config) { c.Program.Rates = map[string]uint64{"alien": 1} }},
		{"bad operator", func(c *Config) { c.Program.Operators = []string{"0"} }},
		{"no ledger", func(c *Config) { c.Ledger = nil }},
		{"zero cache", func(c *Config) { c.Ledger.CacheSize = 0 }},
		{"negative open files", func(c *Config) { c.Ledger.OpenFiles = -1 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDumpRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Program.ProgramID = datagen.RandPublicKey().String()
	cfg.Program.Rates = map[string]uint64{"normal-class-b": 40}
	cfg.Program.Operators = []string{datagen.RandPublicKey().String()}
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "ledger")
	cfg.Metrics.Enabled = true

	path := filepath.Join(t.TempDir(), "dump.yaml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Dump(f))
	require.NoError(t, f.Close())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
