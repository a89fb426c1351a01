// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ctznlabs/nftvault/address"
	"github.com/ctznlabs/nftvault/ledger"
	"github.com/ctznlabs/nftvault/program/reverts"
	"github.com/ctznlabs/nftvault/program/user"
	"github.com/ctznlabs/nftvault/program/vault"
)

//
// Setters - state change
//

// CreateVault initializes the vault at vaultID with its three reward pools.
// Both the vault account and its authority must sign.
func (p *Program) CreateVault(auth ledger.Authorizer, vaultID, authority, rewardMint solana.PublicKey) (*vault.Vault, error) {
	logger.Debug("creating vault", "vault", vaultID, "authority", authority, "rewardMint", rewardMint)

	var v *vault.Vault
	err := p.exec("create_vault", func() (err error) {
		if err = requireSigner(auth, vaultID, "vault"); err != nil {
			return err
		}
		if err = requireSigner(auth, authority, "authority"); err != nil {
			return err
		}
		v, err = p.vaultService.Create(vaultID, authority, rewardMint)
		return err
	})
	if err != nil {
		logger.Info("create vault failed", "vault", vaultID, "error", err)
		return nil, err
	}

	logger.Info("created vault", "vault", vaultID)
	return v, nil
}

// Fund tops up the ClassA pool. Any funder may fund.
func (p *Program) Fund(auth ledger.Authorizer, vaultID, funder, source solana.PublicKey, amount uint64) error {
	return p.FundPool(auth, vaultID, address.PoolClassA, funder, source, amount)
}

// FundPool moves amount of the reward asset from source, owned by funder, into the pool of class.
func (p *Program) FundPool(auth ledger.Authorizer, vaultID solana.PublicKey, class address.PoolClass, funder, source solana.PublicKey, amount uint64) error {
	logger.Debug("funding pool", "vault", vaultID, "pool", class, "funder", funder, "amount", amount)

	err := p.exec("fund", func() error {
		if err := requireSigner(auth, funder, "funder"); err != nil {
			return err
		}
		v, err := p.vaultService.GetInitialized(vaultID)
		if err != nil {
			return err
		}
		ta, err := p.state.GetTokenAccount(source)
		if err != nil || ta == nil {
			return reverts.Newf(reverts.InvalidAccount, "source %s is not a token account", source)
		}
		if !ta.Owner.Equals(funder) {
			return reverts.Newf(reverts.NotAuthorized, "source %s is not owned by %s", source, funder)
		}
		if !ta.Mint.Equals(v.RewardMint) {
			return reverts.Newf(reverts.AssetMismatch, "source holds %s, vault rewards %s", ta.Mint, v.RewardMint)
		}
		if err := p.vaultService.Deposit(v, class, source, amount); err != nil {
			return err
		}
		return p.vaultService.Update(vaultID, v)
	})
	if err != nil {
		logger.Info("fund pool failed", "vault", vaultID, "pool", class, "error", err)
		return err
	}

	logger.Info("funded pool", "vault", vaultID, "pool", class, "amount", amount)
	return nil
}

// Withdraw moves amount out of the ClassA pool to the claimer.
func (p *Program) Withdraw(auth ledger.Authorizer, vaultID, claimer solana.PublicKey, amount uint64) error {
	return p.WithdrawPool(auth, vaultID, address.PoolClassA, claimer, amount)
}

// WithdrawPool moves amount out of the pool of class into the reward account
// of claimer, which must be the vault authority.
func (p *Program) WithdrawPool(auth ledger.Authorizer, vaultID solana.PublicKey, class address.PoolClass, claimer solana.PublicKey, amount uint64) error {
	logger.Debug("withdrawing pool", "vault", vaultID, "pool", class, "claimer", claimer, "amount", amount)

	err := p.exec("withdraw", func() error {
		if err := requireSigner(auth, claimer, "claimer"); err != nil {
			return err
		}
		v, err := p.vaultService.GetInitialized(vaultID)
		if err != nil {
			return err
		}
		if !v.Authority.Equals(claimer) {
			return reverts.Newf(reverts.NotAuthorized, "%s is not the vault authority", claimer)
		}
		if err := p.pay(v, class, claimer, amount); err != nil {
			return err
		}
		return p.vaultService.Update(vaultID, v)
	})
	if err != nil {
		logger.Info("withdraw pool failed", "vault", vaultID, "pool", class, "error", err)
		return err
	}

	logger.Info("withdrew pool", "vault", vaultID, "pool", class, "amount", amount)
	return nil
}

// CreateUser creates the record of authority in vaultID for userType.
func (p *Program) CreateUser(auth ledger.Authorizer, vaultID, authority solana.PublicKey, userType user.UserType) (*user.User, error) {
	logger.Debug("creating user", "vault", vaultID, "authority", authority, "userType", userType)

	var (
		addr solana.PublicKey
		u    *user.User
	)
	err := p.exec("create_user", func() (err error) {
		if err = requireSigner(auth, authority, "authority"); err != nil {
			return err
		}
		if _, err = p.vaultService.GetInitialized(vaultID); err != nil {
			return err
		}
		addr, u, err = p.userService.Create(vaultID, authority, userType)
		return err
	})
	if err != nil {
		logger.Info("create user failed", "vault", vaultID, "authority", authority, "error", err)
		return nil, err
	}

	logger.Info("created user", "user", addr, "userType", userType)
	return u, nil
}

// pay sends amount from the pool of class to the reward account of recipient,
// creating that account when missing. The pool balance is checked first so a
// short pool leaves no trace.
func (p *Program) pay(v *vault.Vault, class address.PoolClass, recipient solana.PublicKey, amount uint64) error {
	pool, err := v.Pool(class)
	if err != nil {
		return err
	}
	if amount > pool.Amount {
		return reverts.Newf(reverts.InsufficientPoolBalance,
			"pool %s holds %d, requested %d", class, pool.Amount, amount)
	}
	if amount == 0 {
		return nil
	}
	dest, err := p.state.CreateAssociatedTokenAccount(recipient, v.RewardMint)
	if err != nil {
		return vault.Translate(err)
	}
	return p.vaultService.Pay(v, class, dest, amount)
}
