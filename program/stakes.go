// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ctznlabs/nftvault/address"
	"github.com/ctznlabs/nftvault/ledger"
	"github.com/ctznlabs/nftvault/program/reverts"
	"github.com/ctznlabs/nftvault/program/reward"
	"github.com/ctznlabs/nftvault/program/user"
	"github.com/ctznlabs/nftvault/program/vault"
)

func (p *Program) custody(vaultID, staker, tokenAccount solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := address.StakeCustody(p.params.ProgramID, vaultID, staker, tokenAccount)
	if err != nil {
		return solana.PublicKey{}, reverts.New(reverts.DerivationFailed, err.Error())
	}
	return addr, nil
}

// loadUser returns the user at userAddress, checking it belongs to vaultID.
func (p *Program) loadUser(vaultID, userAddress solana.PublicKey) (*user.User, error) {
	u, err := p.userService.GetExisting(userAddress)
	if err != nil {
		return nil, err
	}
	if !u.Vault.Equals(vaultID) {
		return nil, reverts.Newf(reverts.InvalidAccount, "user %s belongs to vault %s", userAddress, u.Vault)
	}
	return u, nil
}

// counterDeltas returns the alpha and normal counter changes of staking one item.
func counterDeltas(itemType user.ItemType) (alpha, normal int) {
	switch itemType {
	case user.PrivilegedB:
		return 1, 0
	case user.NormalClassB:
		return 0, 1
	}
	return 0, 0
}

// Stake moves tokenAccount into vault custody and records it in the user at userAddress.
// The token account must hold exactly one unit and be owned by staker, who owns the user record.
func (p *Program) Stake(
	auth ledger.Authorizer,
	staker solana.PublicKey,
	vaultID solana.PublicKey,
	userAddress solana.PublicKey,
	tokenAccount solana.PublicKey,
	itemType user.ItemType,
) (*user.StakeItem, error) {
	logger.Debug("staking item", "staker", staker,
		"vault", vaultID,
		"user", userAddress,
		"tokenAccount", tokenAccount,
		"itemType", itemType,
	)

	var item *user.StakeItem
	err := p.exec("stake", func() error {
		if err := requireSigner(auth, staker, "staker"); err != nil {
			return err
		}
		v, err := p.vaultService.GetInitialized(vaultID)
		if err != nil {
			return err
		}
		u, err := p.loadUser(vaultID, userAddress)
		if err != nil {
			return err
		}
		if !u.Key.Equals(staker) {
			return reverts.Newf(reverts.NotAuthorized, "user %s belongs to %s", userAddress, u.Key)
		}
		if !itemType.Valid() || itemType.Class() != u.UserType {
			return reverts.Newf(reverts.WrongUserType, "%s cannot be staked by a %s user", itemType, u.UserType)
		}

		if u.Find(tokenAccount) >= 0 {
			return reverts.Newf(reverts.AlreadyStaked, "%s is already staked", tokenAccount)
		}

		ta, err := p.state.GetTokenAccount(tokenAccount)
		if err != nil || ta == nil {
			return reverts.Newf(reverts.InvalidAccount, "%s is not a token account", tokenAccount)
		}
		if !ta.Owner.Equals(staker) {
			return reverts.Newf(reverts.NotAuthorized, "%s is not owned by %s", tokenAccount, staker)
		}
		if ta.Amount != 1 {
			return reverts.Newf(reverts.AssetMismatch, "%s holds %d units, want 1", tokenAccount, ta.Amount)
		}

		custody, err := p.custody(vaultID, staker, tokenAccount)
		if err != nil {
			return err
		}
		if err := p.state.SetOwner(tokenAccount, custody); err != nil {
			return vault.Translate(err)
		}

		now := p.state.Now()
		item = &user.StakeItem{
			Mint:            ta.Mint,
			MintAccount:     tokenAccount,
			ItemType:        itemType,
			FirstStakedTime: now,
			LastClaimedTime: now,
		}
		if err := u.Append(item); err != nil {
			return err
		}
		if err := v.AdjustCounts(counterDeltas(itemType)); err != nil {
			return err
		}
		if err := p.userService.Update(userAddress, u); err != nil {
			return err
		}
		return p.vaultService.Update(vaultID, v)
	})
	if err != nil {
		logger.Info("stake failed", "tokenAccount", tokenAccount, "error", err)
		return nil, err
	}

	p.state.OnCommit(func() {
		metricStakedItems().AddWithLabel(1, map[string]string{"item_type": itemType.String()})
	})
	logger.Info("staked item", "tokenAccount", tokenAccount, "user", userAddress)
	return item, nil
}

// Unstake returns tokenAccount from custody to destination, or to the staker
// when destination is zero. Accrued rewards of the item are not paid.
func (p *Program) Unstake(
	auth ledger.Authorizer,
	staker solana.PublicKey,
	vaultID solana.PublicKey,
	userAddress solana.PublicKey,
	tokenAccount solana.PublicKey,
	destination solana.PublicKey,
) (*user.StakeItem, error) {
	logger.Debug("unstaking item", "staker", staker, "user", userAddress, "tokenAccount", tokenAccount)

	var item *user.StakeItem
	err := p.exec("unstake", func() (err error) {
		if err = requireSigner(auth, staker, "staker"); err != nil {
			return err
		}
		item, err = p.unstake(vaultID, userAddress, tokenAccount, destination, func(u *user.User) error {
			if !u.Key.Equals(staker) {
				return reverts.Newf(reverts.NotAuthorized, "user %s belongs to %s", userAddress, u.Key)
			}
			return nil
		})
		return err
	})
	if err != nil {
		logger.Info("unstake failed", "tokenAccount", tokenAccount, "error", err)
		return nil, err
	}

	logger.Info("unstaked item", "tokenAccount", tokenAccount, "user", userAddress)
	return item, nil
}

// UnstakeAsOperator is Unstake on behalf of the recorded staker, signed by a
// configured operator instead. The lockup still applies.
func (p *Program) UnstakeAsOperator(
	auth ledger.Authorizer,
	operator solana.PublicKey,
	vaultID solana.PublicKey,
	userAddress solana.PublicKey,
	tokenAccount solana.PublicKey,
	destination solana.PublicKey,
) (*user.StakeItem, error) {
	logger.Debug("operator unstaking item", "operator", operator, "user", userAddress, "tokenAccount", tokenAccount)

	var item *user.StakeItem
	err := p.exec("operator_unstake", func() (err error) {
		if err = requireSigner(auth, operator, "operator"); err != nil {
			return err
		}
		if !p.operators.IsAuthorizedBy(operator) {
			return reverts.Newf(reverts.NotAuthorized, "%s is not an operator", operator)
		}
		item, err = p.unstake(vaultID, userAddress, tokenAccount, destination, nil)
		return err
	})
	if err != nil {
		logger.Info("operator unstake failed", "tokenAccount", tokenAccount, "error", err)
		return nil, err
	}

	logger.Info("operator unstaked item", "operator", operator, "tokenAccount", tokenAccount)
	return item, nil
}

func (p *Program) unstake(
	vaultID, userAddress, tokenAccount, destination solana.PublicKey,
	authorize func(*user.User) error,
) (*user.StakeItem, error) {
	v, err := p.vaultService.GetInitialized(vaultID)
	if err != nil {
		return nil, err
	}
	u, err := p.loadUser(vaultID, userAddress)
	if err != nil {
		return nil, err
	}
	if authorize != nil {
		if err := authorize(u); err != nil {
			return nil, err
		}
	}
	i := u.Find(tokenAccount)
	if i < 0 {
		return nil, reverts.Newf(reverts.RecordNotFound, "%s is not staked by %s", tokenAccount, userAddress)
	}
	item := u.Items[i]

	if u.UserType == user.ClassB {
		var staked uint64
		if now := p.state.Now(); now > item.FirstStakedTime {
			staked = now - item.FirstStakedTime
		}
		if staked < p.params.ClassBLockup {
			return nil, reverts.Newf(reverts.LockupNotElapsed,
				"%s is locked for another %d seconds", tokenAccount, p.params.ClassBLockup-staked)
		}
	}

	// custody is re-derived from the recorded staker, never from the caller
	custody, err := p.custody(vaultID, u.Key, tokenAccount)
	if err != nil {
		return nil, err
	}
	ta, err := p.state.GetTokenAccount(tokenAccount)
	if err != nil || ta == nil || !ta.Owner.Equals(custody) {
		return nil, reverts.Newf(reverts.InvalidAccount, "%s is not held in custody %s", tokenAccount, custody)
	}
	if destination.IsZero() {
		destination = u.Key
	}
	if err := p.state.SetOwner(tokenAccount, destination); err != nil {
		return nil, vault.Translate(err)
	}

	u.Remove(i)
	alpha, normal := counterDeltas(item.ItemType)
	if err := v.AdjustCounts(-alpha, -normal); err != nil {
		return nil, err
	}
	if err := p.userService.Update(userAddress, u); err != nil {
		return nil, err
	}
	if err := p.vaultService.Update(vaultID, v); err != nil {
		return nil, err
	}
	p.state.OnCommit(func() {
		metricStakedItems().AddWithLabel(-1, map[string]string{"item_type": item.ItemType.String()})
	})
	return item, nil
}

// Claim pays every pending reward of the user at userAddress out of the pool of
// userType into the reward account of claimer, then settles the items.
// Nothing is paid when the pool is short.
func (p *Program) Claim(
	auth ledger.Authorizer,
	vaultID solana.PublicKey,
	userAddress solana.PublicKey,
	claimer solana.PublicKey,
	userType user.UserType,
) (uint64, error) {
	logger.Debug("claiming rewards", "vault", vaultID, "user", userAddress, "claimer", claimer, "userType", userType)

	var paid uint64
	err := p.exec("claim", func() error {
		if err := requireSigner(auth, claimer, "claimer"); err != nil {
			return err
		}
		v, err := p.vaultService.GetInitialized(vaultID)
		if err != nil {
			return err
		}
		u, err := p.loadUser(vaultID, userAddress)
		if err != nil {
			return err
		}
		if !u.Key.Equals(claimer) {
			return reverts.Newf(reverts.NotAuthorized, "user %s belongs to %s", userAddress, u.Key)
		}
		if u.UserType != userType {
			return reverts.Newf(reverts.WrongUserType, "user %s is %s, not %s", userAddress, u.UserType, userType)
		}

		now := p.state.Now()
		amount, err := p.params.Schedule.Sum(u.Items, now)
		if err != nil {
			return err
		}
		if err := p.pay(v, userType.Pool(), claimer, amount); err != nil {
			return err
		}
		reward.Settle(u.Items, now)
		if err := p.userService.Update(userAddress, u); err != nil {
			return err
		}
		if err := p.vaultService.Update(vaultID, v); err != nil {
			return err
		}
		paid = amount
		return nil
	})
	if err != nil {
		logger.Info("claim failed", "user", userAddress, "error", err)
		return 0, err
	}

	p.state.OnCommit(func() {
		metricRewardsPaid().ObserveWithLabels(int64(paid), map[string]string{"user_type": userType.String()})
	})
	logger.Info("claimed rewards", "user", userAddress, "amount", paid)
	return paid, nil
}
