// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/ctznlabs/nftvault/address"
	"github.com/ctznlabs/nftvault/cache"
	"github.com/ctznlabs/nftvault/ledger"
	"github.com/ctznlabs/nftvault/lvldb"
	"github.com/ctznlabs/nftvault/program/user"
	"github.com/ctznlabs/nftvault/test/datagen"
	"github.com/ctznlabs/nftvault/transferdb"
)

const genesisTime = 1_700_000_000

type fixture struct {
	clock   *ledger.ManualClock
	state   *ledger.State
	program *Program

	mintAuthority solana.PublicKey
	rewardMint    solana.PublicKey
	authority     solana.PublicKey
	vaultID       solana.PublicKey
	operator      solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	history, err := transferdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	accounts, err := cache.NewLRU[solana.PublicKey, *ledger.Account](128)
	require.NoError(t, err)

	clock := ledger.NewManualClock(genesisTime)
	state := ledger.New(db, accounts, history, clock)

	params := DefaultParams(datagen.RandPublicKey())
	operator := datagen.RandPublicKey()
	params.Operators = []solana.PublicKey{operator}

	f := &fixture{
		clock:         clock,
		state:         state,
		program:       New(state, params),
		mintAuthority: datagen.RandPublicKey(),
		rewardMint:    datagen.RandPublicKey(),
		authority:     datagen.RandWallet().PublicKey(),
		vaultID:       datagen.RandWallet().PublicKey(),
		operator:      operator,
	}
	require.NoError(t, state.CreateMint(f.rewardMint, f.mintAuthority, 6))
	return f
}

// rewardAccount creates a reward token account of owner holding amount.
func (f *fixture) rewardAccount(t *testing.T, owner solana.PublicKey, amount uint64) solana.PublicKey {
	addr := datagen.RandPublicKey()
	require.NoError(t, f.state.CreateTokenAccount(addr, f.rewardMint, owner))
	require.NoError(t, f.state.MintTo(f.rewardMint, addr, amount))
	return addr
}

// itemAccount mints a fresh single unit item into a token account of owner.
func (f *fixture) itemAccount(t *testing.T, owner solana.PublicKey) solana.PublicKey {
	mint := datagen.RandPublicKey()
	require.NoError(t, f.state.CreateMint(mint, f.mintAuthority, 0))
	addr := datagen.RandPublicKey()
	require.NoError(t, f.state.CreateTokenAccount(addr, mint, owner))
	require.NoError(t, f.state.MintTo(mint, addr, 1))
	return addr
}

func (f *fixture) balance(t *testing.T, addr solana.PublicKey) uint64 {
	b, err := f.state.Balance(addr)
	require.NoError(t, err)
	return b
}

func (f *fixture) rewardBalance(t *testing.T, owner solana.PublicKey) uint64 {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, f.rewardMint)
	require.NoError(t, err)
	ta, err := f.state.GetTokenAccount(addr)
	require.NoError(t, err)
	if ta == nil {
		return 0
	}
	return ta.Amount
}

func (f *fixture) owner(t *testing.T, tokenAccount solana.PublicKey) solana.PublicKey {
	ta, err := f.state.GetTokenAccount(tokenAccount)
	require.NoError(t, err)
	require.NotNil(t, ta)
	return ta.Owner
}

func (f *fixture) userAddress(t *testing.T, authority solana.PublicKey, userType user.UserType) solana.PublicKey {
	addr, err := f.program.UserAddress(f.vaultID, authority, userType)
	require.NoError(t, err)
	return addr
}

func (f *fixture) user(t *testing.T, addr solana.PublicKey) *user.User {
	u, err := f.program.FetchUser(addr)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	f *fixture

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(f *fixture) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), f: f}
}

func (st *TestSequence) AddFunc(fn TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, fn)
	return st
}

func (st *TestSequence) CreateVault() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		_, err := st.f.program.CreateVault(ledger.NewSigners(st.f.vaultID, st.f.authority), st.f.vaultID, st.f.authority, st.f.rewardMint)
		if err != nil {
			t.Fatalf("failed to create vault %s: %v", st.f.vaultID, err)
		}
		t.Logf("created vault %s", st.f.vaultID)
	})
}

func (st *TestSequence) FundPool(class address.PoolClass, amount uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		funder := datagen.RandPublicKey()
		source := st.f.rewardAccount(t, funder, amount)
		if err := st.f.program.FundPool(ledger.NewSigners(funder), st.f.vaultID, class, funder, source, amount); err != nil {
			t.Fatalf("failed to fund pool %s: %v", class, err)
		}
		t.Logf("funded pool %s with %d", class, amount)
	})
}

func (st *TestSequence) CreateUser(authority solana.PublicKey, userType user.UserType) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if _, err := st.f.program.CreateUser(ledger.NewSigners(authority), st.f.vaultID, authority, userType); err != nil {
			t.Fatalf("failed to create %s user %s: %v", userType, authority, err)
		}
		t.Logf("created %s user %s", userType, authority)
	})
}

func (st *TestSequence) Stake(staker, tokenAccount solana.PublicKey, userType user.UserType, itemType user.ItemType) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		userAddr := st.f.userAddress(t, staker, userType)
		if _, err := st.f.program.Stake(ledger.NewSigners(staker), staker, st.f.vaultID, userAddr, tokenAccount, itemType); err != nil {
			t.Fatalf("failed to stake %s: %v", tokenAccount, err)
		}
		t.Logf("staked %s as %s", tokenAccount, itemType)
	})
}

func (st *TestSequence) Unstake(staker, tokenAccount solana.PublicKey, userType user.UserType) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		userAddr := st.f.userAddress(t, staker, userType)
		if _, err := st.f.program.Unstake(ledger.NewSigners(staker), staker, st.f.vaultID, userAddr, tokenAccount, solana.PublicKey{}); err != nil {
			t.Fatalf("failed to unstake %s: %v", tokenAccount, err)
		}
		t.Logf("unstaked %s", tokenAccount)
	})
}

func (st *TestSequence) Claim(claimer solana.PublicKey, userType user.UserType, expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		userAddr := st.f.userAddress(t, claimer, userType)
		paid, err := st.f.program.Claim(ledger.NewSigners(claimer), st.f.vaultID, userAddr, claimer, userType)
		if err != nil {
			t.Fatalf("failed to claim for %s: %v", claimer, err)
		}
		if paid != expected {
			t.Fatalf("claim for %s paid %d, expected %d", claimer, paid, expected)
		}
		t.Logf("claimed %d for %s", paid, claimer)
	})
}

func (st *TestSequence) Advance(seconds uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		now := st.f.clock.Advance(seconds)
		t.Logf("clock advanced to %d", now)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, fn := range st.funcs {
		fn(t)
	}

	t.Logf("All test functions executed successfully")
}
