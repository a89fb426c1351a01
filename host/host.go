// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package host runs program calls against a persisted ledger, one
// all-or-nothing transaction at a time.
package host

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/ctznlabs/nftvault/cache"
	"github.com/ctznlabs/nftvault/config"
	"github.com/ctznlabs/nftvault/ledger"
	"github.com/ctznlabs/nftvault/log"
	"github.com/ctznlabs/nftvault/lvldb"
	"github.com/ctznlabs/nftvault/metrics"
	"github.com/ctznlabs/nftvault/program"
	"github.com/ctznlabs/nftvault/transferdb"
)

var logger = log.WithContext("pkg", "host")

// Tx is the view of one transaction: the program, the raw ledger state for
// token setup, and the signers of the call.
type Tx struct {
	*program.Program
	State *ledger.State
	Auth  ledger.Authorizer
}

// Host owns the committed ledger and serializes transactions over it.
type Host struct {
	db       *lvldb.LevelDB
	accounts *ledger.AccountCache
	history  *transferdb.TransferDB
	clock    ledger.Clock
	params   program.Params

	mu sync.Mutex
}

// Option customizes a Host.
type Option func(*Host)

// WithClock replaces the system clock, e.g. with a ledger.ManualClock.
func WithClock(clock ledger.Clock) Option {
	return func(h *Host) { h.clock = clock }
}

// Open opens the stores named by cfg and applies its log and metrics settings.
func Open(cfg *config.Config, opts ...Option) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if cfg.Log != nil {
		if err := log.Setup(os.Stderr, cfg.Log.Format, cfg.Log.Level); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metrics.InitializePrometheusMetrics()
	}

	params, err := cfg.Program.Params()
	if err != nil {
		return nil, err
	}
	var effective strings.Builder
	if err := cfg.Dump(&effective); err == nil {
		logger.Debug("effective configuration", "yaml", effective.String())
	}

	h := &Host{
		clock:  ledger.SystemClock{},
		params: params,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.db, err = openLedgerDB(cfg.Ledger); err != nil {
		return nil, err
	}
	if h.accounts, err = cache.NewLRU[solana.PublicKey, *ledger.Account](cfg.Ledger.CacheSize); err != nil {
		h.db.Close()
		return nil, err
	}
	if cfg.Ledger.TransferDB != "" {
		h.history, err = transferdb.New(cfg.Ledger.TransferDB)
	} else {
		h.history, err = transferdb.NewMem()
	}
	if err != nil {
		h.db.Close()
		return nil, errors.Wrap(err, "open transfer history")
	}

	logger.Info("host opened", "program", params.ProgramID, "ledger", cfg.Ledger.Path, "operators", len(params.Operators))
	return h, nil
}

func openLedgerDB(cfg *config.LedgerConfig) (*lvldb.LevelDB, error) {
	if cfg.InMemory() {
		return lvldb.NewMem()
	}
	cacheMB := normalizeCacheSize(cfg.LevelCacheMB)
	fdCache := suggestFDCache(cfg.OpenFiles)
	logger.Debug("ledger db", "path", cfg.Path, "cacheMB", cacheMB, "fdCache", fdCache)

	db, err := lvldb.New(cfg.Path, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger database [%v]", cfg.Path)
	}
	return db, nil
}

// normalizeCacheSize limits the level cache to half of the physical memory.
func normalizeCacheSize(sizeMB int) int {
	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem", "err", err)
		return sizeMB
	}
	if limitMB := int(mem.Total / 1024 / 1024 / 2); sizeMB > limitMB {
		logger.Warn("cache size(MB) limited", "limit", limitMB)
		return limitMB
	}
	return sizeMB
}

// suggestFDCache keeps the open files cache within half of the process fd limit.
func suggestFDCache(want int) int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return want
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	if n := limit / 2; want > n {
		return n
	}
	return want
}

// Params returns the parameters of the hosted program.
func (h *Host) Params() program.Params {
	return h.params
}

// Execute runs fn as one transaction signed by auth. Every change fn makes is
// committed when it returns nil and discarded otherwise.
func (h *Host) Execute(auth ledger.Authorizer, fn func(tx *Tx) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	state := ledger.New(h.db, h.accounts, h.history, h.clock)
	tx := &Tx{
		Program: program.New(state, h.params),
		State:   state,
		Auth:    auth,
	}
	if err := fn(tx); err != nil {
		return err
	}
	return state.Commit()
}

// View runs fn against the committed state. Changes are never committed.
func (h *Host) View(fn func(p *program.Program) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	state := ledger.New(h.db, h.accounts, nil, h.clock)
	return fn(program.New(state, h.params))
}

// History returns up to limit committed movements touching addr, oldest first.
// A zero limit returns them all.
func (h *Host) History(addr solana.PublicKey, limit uint64) ([]*transferdb.Transfer, error) {
	return h.history.ByAccount(addr, limit)
}

// WriteMetrics writes the collected metrics in the prometheus text format.
// Nothing is written unless metrics are enabled.
func (h *Host) WriteMetrics(w io.Writer) error {
	return metrics.Dump(w)
}

// Close closes the stores.
func (h *Host) Close() error {
	var errs []error
	if err := h.history.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := h.db.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Errorf("close host: %v", errs)
	}
	return nil
}
