// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/ctznlabs/nftvault/address"
	"github.com/ctznlabs/nftvault/ledger"
	"github.com/ctznlabs/nftvault/program/codec"
	"github.com/ctznlabs/nftvault/program/reverts"
)

// Service stores vault records and moves funds in and out of their pools.
type Service struct {
	state     *ledger.State
	programID solana.PublicKey
}

func New(state *ledger.State, programID solana.PublicKey) *Service {
	return &Service{state: state, programID: programID}
}

// Get returns the vault at addr, nil when there is no account.
func (s *Service) Get(addr solana.PublicKey) (*Vault, error) {
	acc, err := s.state.GetAccount(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vault")
	}
	if acc == nil {
		return nil, nil
	}
	if !acc.Owner.Equals(s.programID) {
		return nil, reverts.Newf(reverts.InvalidAccount, "%s is not a vault", addr)
	}
	var v Vault
	if err := codec.Decode(acc.Data, &v); err != nil {
		return nil, reverts.Newf(reverts.InvalidAccount, "%s is not a vault: %v", addr, err)
	}
	return &v, nil
}

// GetInitialized returns the vault at addr or fails with NotInitialized.
func (s *Service) GetInitialized(addr solana.PublicKey) (*Vault, error) {
	v, err := s.Get(addr)
	if err != nil {
		return nil, err
	}
	if v == nil || v.Status != StatusInitialized {
		return nil, reverts.Newf(reverts.NotInitialized, "vault %s is not initialized", addr)
	}
	return v, nil
}

// Create derives the three pools of addr, opens their reward custody accounts
// and stores an initialized vault with zeroed amounts and counters.
func (s *Service) Create(addr, authority, rewardMint solana.PublicKey) (*Vault, error) {
	exists, err := s.state.Exists(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check vault")
	}
	if exists {
		return nil, reverts.Newf(reverts.AlreadyInitialized, "vault %s already created", addr)
	}

	mint, err := s.state.GetMint(rewardMint)
	if err != nil || mint == nil {
		return nil, reverts.Newf(reverts.AssetMismatch, "reward mint %s does not exist", rewardMint)
	}

	v := &Vault{
		Authority:  authority,
		Status:     StatusInitialized,
		RewardMint: rewardMint,
	}
	for i := range v.Pools {
		pool, bump, err := address.RewardPool(s.programID, address.PoolClass(i), addr)
		if err != nil {
			return nil, reverts.New(reverts.DerivationFailed, err.Error())
		}
		custody, err := s.state.CreateAssociatedTokenAccount(pool, rewardMint)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create pool custody")
		}
		v.Pools[i] = Pool{Bump: bump, Custody: custody}
	}

	data, err := codec.Encode(v)
	if err != nil {
		return nil, err
	}
	if err := s.state.CreateAccount(addr, s.programID, data); err != nil {
		return nil, errors.Wrap(err, "failed to create vault")
	}
	return v, nil
}

// Update stores v at addr.
func (s *Service) Update(addr solana.PublicKey, v *Vault) error {
	data, err := codec.Encode(v)
	if err != nil {
		return err
	}
	if err := s.state.SetData(addr, s.programID, data); err != nil {
		return errors.Wrap(err, "failed to update vault")
	}
	return nil
}

// Deposit moves amount from source into the pool of class and tracks it.
func (s *Service) Deposit(v *Vault, class address.PoolClass, source solana.PublicKey, amount uint64) error {
	pool, err := v.Pool(class)
	if err != nil {
		return err
	}
	if pool.Amount > math.MaxUint64-amount {
		return reverts.Newf(reverts.Overflow, "pool %s amount overflow", class)
	}
	if err := s.state.Transfer(source, pool.Custody, amount); err != nil {
		return Translate(err)
	}
	pool.Amount += amount
	return nil
}

// Pay moves amount out of the pool of class into destination.
// Nothing moves when the tracked balance is short.
func (s *Service) Pay(v *Vault, class address.PoolClass, destination solana.PublicKey, amount uint64) error {
	pool, err := v.Pool(class)
	if err != nil {
		return err
	}
	if amount > pool.Amount {
		return reverts.Newf(reverts.InsufficientPoolBalance,
			"pool %s holds %d, requested %d", class, pool.Amount, amount)
	}
	if err := s.state.Transfer(pool.Custody, destination, amount); err != nil {
		return Translate(err)
	}
	pool.Amount -= amount
	return nil
}

// Translate turns ledger token failures into program rejections.
func Translate(err error) error {
	switch {
	case errors.Is(err, ledger.ErrMintMismatch):
		return reverts.New(reverts.AssetMismatch, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return reverts.New(reverts.InsufficientFunds, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound), errors.Is(err, ledger.ErrNotTokenAccount),
		errors.Is(err, ledger.ErrWrongOwner):
		return reverts.New(reverts.InvalidAccount, err.Error())
	case errors.Is(err, ledger.ErrOverflow):
		return reverts.New(reverts.Overflow, err.Error())
	}
	return err
}
