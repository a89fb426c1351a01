// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the host ledger a program runs against: raw accounts,
// token accounts and mints, ledger time, and all-or-nothing execution through
// checkpoints.
package ledger

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/ctznlabs/nftvault/cache"
	"github.com/ctznlabs/nftvault/kv"
	"github.com/ctznlabs/nftvault/log"
	"github.com/ctznlabs/nftvault/metrics"
	"github.com/ctznlabs/nftvault/stackedmap"
	"github.com/ctznlabs/nftvault/transferdb"
)

var (
	logger = log.WithContext("pkg", "ledger")

	metricCommittedAccounts = metrics.LazyLoadGauge("ledger_committed_accounts")
	metricAccountCache      = metrics.LazyLoadGaugeVec("ledger_account_cache", []string{"event"})
)

// Errors returned by account and token operations.
var (
	ErrAccountExists     = errors.New("account already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrWrongOwner        = errors.New("account owned by another program")
	ErrNotTokenAccount   = errors.New("not a token account")
	ErrNotMint           = errors.New("not a mint")
	ErrMintMismatch      = errors.New("mint mismatch")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOverflow          = errors.New("amount overflow")
)

// AccountBucket holds committed accounts keyed by address.
const AccountBucket kv.Bucket = "acc/"

// AccountCache caches committed accounts by address.
type AccountCache = cache.LRU[solana.PublicKey, *Account]

// State is the mutable view of the ledger within a transaction.
// Changes are journaled until Commit and can be reverted to any checkpoint.
type State struct {
	store   kv.Store
	cache   *AccountCache
	history *transferdb.TransferDB
	clock   Clock

	sm       *stackedmap.StackedMap[solana.PublicKey, *Account]
	events   []*transferdb.Transfer
	onCommit []func()
	marks    []mark
}

// mark records the lengths of events and onCommit at a checkpoint.
type mark struct {
	events, onCommit int
}

// New creates a state over the committed store, whose accounts live in AccountBucket.
// cache and history are optional.
func New(store kv.Store, accountCache *AccountCache, history *transferdb.TransferDB, clock Clock) *State {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &State{
		store:   AccountBucket.NewStore(store),
		cache:   accountCache,
		history: history,
		clock:   clock,
	}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.load)
	s.events = nil
	s.onCommit = nil
	s.marks = nil
}

func (s *State) load(addr solana.PublicKey) (*Account, bool, error) {
	loader := func(addr solana.PublicKey) (*Account, error) {
		data, err := kv.GetOrNil(s.store, addr.Bytes())
		if err != nil {
			return nil, errors.Wrap(err, "load account")
		}
		if data == nil {
			return nil, nil
		}
		return decodeAccount(data)
	}

	var (
		acc *Account
		err error
	)
	if s.cache != nil {
		acc, err = s.cache.GetOrLoad(addr, loader)
	} else {
		acc, err = loader(addr)
	}
	if err != nil {
		return nil, false, err
	}
	return acc, acc != nil, nil
}

// Now returns the current ledger time.
func (s *State) Now() uint64 {
	return s.clock.Now()
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	rev := s.sm.Push()
	s.marks = append(s.marks[:rev-1], mark{len(s.events), len(s.onCommit)})
	return rev
}

// RevertTo reverts to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 || revision > len(s.marks) {
		panic("invalid checkpoint revision")
	}
	s.sm.PopTo(revision)
	m := s.marks[revision-1]
	s.events = s.events[:m.events]
	s.onCommit = s.onCommit[:m.onCommit]
	s.marks = s.marks[:revision-1]
}

// Exists reports whether addr holds an account.
func (s *State) Exists(addr solana.PublicKey) (bool, error) {
	_, ok, err := s.sm.Get(addr)
	return ok, err
}

// GetAccount returns a copy of the account at addr, nil when absent.
func (s *State) GetAccount(addr solana.PublicKey) (*Account, error) {
	acc, ok, err := s.sm.Get(addr)
	if err != nil || !ok {
		return nil, err
	}
	return acc.copy(), nil
}

// CreateAccount allocates addr for owner with the initial data.
func (s *State) CreateAccount(addr, owner solana.PublicKey, data []byte) error {
	ok, err := s.Exists(addr)
	if err != nil {
		return err
	}
	if ok {
		return errors.Wrap(ErrAccountExists, addr.String())
	}
	s.sm.Put(addr, &Account{Owner: owner, Data: append([]byte(nil), data...)})
	return nil
}

// SetData replaces the data of an existing account owned by owner.
func (s *State) SetData(addr, owner solana.PublicKey, data []byte) error {
	acc, ok, err := s.sm.Get(addr)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(ErrAccountNotFound, addr.String())
	}
	if !acc.Owner.Equals(owner) {
		return errors.Wrap(ErrWrongOwner, addr.String())
	}
	s.sm.Put(addr, &Account{Owner: owner, Data: append([]byte(nil), data...)})
	return nil
}

func (s *State) emit(t *transferdb.Transfer) {
	t.Time = s.clock.Now()
	s.events = append(s.events, t)
}

// OnCommit registers fn to run once the changes made so far are committed.
// Reverting past the current checkpoint drops it.
func (s *State) OnCommit(fn func()) {
	s.onCommit = append(s.onCommit, fn)
}

// Events returns the uncommitted transfers and custody changes.
func (s *State) Events() []*transferdb.Transfer {
	return append([]*transferdb.Transfer(nil), s.events...)
}

// Commit writes all journaled changes to the store atomically together with
// their history, then refreshes the cache, runs the OnCommit hooks and starts a
// fresh journal. Nothing is persisted when it fails before the account write.
func (s *State) Commit() error {
	changes := make(map[solana.PublicKey]*Account)
	s.sm.Journal(func(addr solana.PublicKey, acc *Account) bool {
		changes[addr] = acc
		return true
	})

	bulk := s.store.Bulk()
	for addr, acc := range changes {
		data, err := encodeAccount(acc)
		if err != nil {
			return err
		}
		if err := bulk.Put(addr.Bytes(), data); err != nil {
			return errors.Wrap(err, "put account")
		}
	}

	var batch *transferdb.Batch
	if s.history != nil && len(s.events) > 0 {
		b, err := s.history.Stage(s.events)
		if err != nil {
			return errors.Wrap(err, "record history")
		}
		batch = b
	}
	if err := bulk.Write(); err != nil {
		if batch != nil {
			batch.Rollback()
		}
		return errors.Wrap(err, "commit accounts")
	}
	if batch != nil {
		// accounts are durable at this point, history only indexes them
		if err := batch.Commit(); err != nil {
			logger.Error("failed to record history", "events", len(s.events), "err", err)
		}
	}

	if s.cache != nil {
		for addr, acc := range changes {
			s.cache.Add(addr, acc)
		}
		hit, miss := s.cache.Stats()
		metricAccountCache().SetWithLabel(hit, map[string]string{"event": "hit"})
		metricAccountCache().SetWithLabel(miss, map[string]string{"event": "miss"})
	}

	logger.Debug("committed", "accounts", len(changes), "events", len(s.events))
	metricCommittedAccounts().Add(int64(len(changes)))
	for _, fn := range s.onCommit {
		fn()
	}

	s.reset()
	return nil
}
