// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/ctznlabs/nftvault/transferdb"
)

// TokenProgramID owns every mint and token account.
var TokenProgramID = solana.TokenProgramID

// CreateMint creates a mint at addr.
func (s *State) CreateMint(addr, authority solana.PublicKey, decimals uint8) error {
	data, err := borshBytes(&Mint{Authority: authority, Decimals: decimals})
	if err != nil {
		return err
	}
	return s.CreateAccount(addr, TokenProgramID, data)
}

// GetMint returns the mint at addr, nil when absent.
func (s *State) GetMint(addr solana.PublicKey) (*Mint, error) {
	acc, err := s.GetAccount(addr)
	if err != nil || acc == nil {
		return nil, err
	}
	if !acc.Owner.Equals(TokenProgramID) || len(acc.Data) != MintSize {
		return nil, errors.Wrap(ErrNotMint, addr.String())
	}
	var m Mint
	if err := m.UnmarshalWithDecoder(bin.NewBorshDecoder(acc.Data)); err != nil {
		return nil, errors.Wrap(ErrNotMint, addr.String())
	}
	return &m, nil
}

// CreateTokenAccount creates an empty token account of mint for owner at addr.
func (s *State) CreateTokenAccount(addr, mint, owner solana.PublicKey) error {
	m, err := s.GetMint(mint)
	if err != nil {
		return err
	}
	if m == nil {
		return errors.Wrap(ErrAccountNotFound, "mint "+mint.String())
	}
	data, err := borshBytes(&TokenAccount{Mint: mint, Owner: owner})
	if err != nil {
		return err
	}
	return s.CreateAccount(addr, TokenProgramID, data)
}

// CreateAssociatedTokenAccount returns the associated token account of wallet for mint,
// creating it when missing.
func (s *State) CreateAssociatedTokenAccount(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, errors.Wrap(err, "associated token address")
	}
	ta, err := s.GetTokenAccount(addr)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if ta != nil {
		if !ta.Mint.Equals(mint) {
			return solana.PublicKey{}, errors.Wrap(ErrMintMismatch, addr.String())
		}
		if !ta.Owner.Equals(wallet) {
			return solana.PublicKey{}, errors.Wrap(ErrWrongOwner, addr.String())
		}
		return addr, nil
	}
	if err := s.CreateTokenAccount(addr, mint, wallet); err != nil {
		return solana.PublicKey{}, err
	}
	return addr, nil
}

// GetTokenAccount returns the token account at addr, nil when absent.
func (s *State) GetTokenAccount(addr solana.PublicKey) (*TokenAccount, error) {
	acc, err := s.GetAccount(addr)
	if err != nil || acc == nil {
		return nil, err
	}
	if !acc.Owner.Equals(TokenProgramID) || len(acc.Data) != TokenAccountSize {
		return nil, errors.Wrap(ErrNotTokenAccount, addr.String())
	}
	var ta TokenAccount
	if err := ta.UnmarshalWithDecoder(bin.NewBorshDecoder(acc.Data)); err != nil {
		return nil, errors.Wrap(ErrNotTokenAccount, addr.String())
	}
	return &ta, nil
}

func (s *State) mustTokenAccount(addr solana.PublicKey) (*TokenAccount, error) {
	ta, err := s.GetTokenAccount(addr)
	if err != nil {
		return nil, err
	}
	if ta == nil {
		return nil, errors.Wrap(ErrAccountNotFound, addr.String())
	}
	return ta, nil
}

func (s *State) putTokenAccount(addr solana.PublicKey, ta *TokenAccount) error {
	data, err := borshBytes(ta)
	if err != nil {
		return err
	}
	return s.SetData(addr, TokenProgramID, data)
}

// Balance returns the amount held by the token account at addr.
func (s *State) Balance(addr solana.PublicKey) (uint64, error) {
	ta, err := s.mustTokenAccount(addr)
	if err != nil {
		return 0, err
	}
	return ta.Amount, nil
}

// MintTo issues amount new units of mint into dest.
func (s *State) MintTo(mint, dest solana.PublicKey, amount uint64) error {
	m, err := s.GetMint(mint)
	if err != nil {
		return err
	}
	if m == nil {
		return errors.Wrap(ErrAccountNotFound, "mint "+mint.String())
	}
	ta, err := s.mustTokenAccount(dest)
	if err != nil {
		return err
	}
	if !ta.Mint.Equals(mint) {
		return ErrMintMismatch
	}
	if m.Supply > math.MaxUint64-amount || ta.Amount > math.MaxUint64-amount {
		return ErrOverflow
	}
	m.Supply += amount
	ta.Amount += amount

	data, err := borshBytes(m)
	if err != nil {
		return err
	}
	if err := s.SetData(mint, TokenProgramID, data); err != nil {
		return err
	}
	return s.putTokenAccount(dest, ta)
}

// Transfer moves amount between two token accounts of the same mint.
func (s *State) Transfer(from, to solana.PublicKey, amount uint64) error {
	src, err := s.mustTokenAccount(from)
	if err != nil {
		return err
	}
	dst, err := s.mustTokenAccount(to)
	if err != nil {
		return err
	}
	if !src.Mint.Equals(dst.Mint) {
		return ErrMintMismatch
	}
	if src.Amount < amount {
		return errors.Wrapf(ErrInsufficientFunds, "balance %d, need %d", src.Amount, amount)
	}
	if amount == 0 || from.Equals(to) {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return ErrOverflow
	}
	src.Amount -= amount
	dst.Amount += amount

	if err := s.putTokenAccount(from, src); err != nil {
		return err
	}
	if err := s.putTokenAccount(to, dst); err != nil {
		return err
	}
	s.emit(&transferdb.Transfer{
		Kind:   transferdb.KindTransfer,
		Mint:   src.Mint,
		From:   from,
		To:     to,
		Amount: amount,
	})
	return nil
}

// SetOwner hands the token account at addr over to newOwner.
func (s *State) SetOwner(addr, newOwner solana.PublicKey) error {
	ta, err := s.mustTokenAccount(addr)
	if err != nil {
		return err
	}
	prev := ta.Owner
	if prev.Equals(newOwner) {
		return nil
	}
	ta.Owner = newOwner
	if err := s.putTokenAccount(addr, ta); err != nil {
		return err
	}
	s.emit(&transferdb.Transfer{
		Kind:    transferdb.KindOwnerChange,
		Mint:    ta.Mint,
		Account: addr,
		From:    prev,
		To:      newOwner,
		Amount:  ta.Amount,
	})
	return nil
}
