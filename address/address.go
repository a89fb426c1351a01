// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package address derives the program owned addresses of vaults, users and custody accounts.
package address

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// Seeds, one namespace per purpose.
var (
	SeedClassAReward     = []byte("vault_ctzn_reward")
	SeedClassBReward     = []byte("vault_alien_reward")
	SeedPrivilegedReward = []byte("vault_god_reward")

	SeedClassAUser = []byte("vault_ctzn_user")
	SeedClassBUser = []byte("vault_alien_user")

	SeedStake = []byte("vault_stake")
)

// ErrDerivation is returned when no valid bump exists for a seed set.
var ErrDerivation = errors.New("address derivation failed")

// PoolClass selects one of the three reward pools of a vault.
type PoolClass uint8

const (
	PoolClassA PoolClass = iota
	PoolClassB
	PoolPrivileged

	NumPools = 3
)

func (c PoolClass) String() string {
	switch c {
	case PoolClassA:
		return "class-a"
	case PoolClassB:
		return "class-b"
	case PoolPrivileged:
		return "privileged"
	default:
		return fmt.Sprintf("pool(%d)", uint8(c))
	}
}

// Seed returns the reward seed of the pool class.
func (c PoolClass) Seed() ([]byte, error) {
	switch c {
	case PoolClassA:
		return SeedClassAReward, nil
	case PoolClassB:
		return SeedClassBReward, nil
	case PoolPrivileged:
		return SeedPrivilegedReward, nil
	}
	return nil, errors.Wrapf(ErrDerivation, "unknown pool class %d", uint8(c))
}

// UserClass is the beneficiary class of a user record.
type UserClass uint8

const (
	UserClassA UserClass = iota
	UserClassB
)

// Seed returns the user record seed of the class.
func (c UserClass) Seed() ([]byte, error) {
	switch c {
	case UserClassA:
		return SeedClassAUser, nil
	case UserClassB:
		return SeedClassBUser, nil
	}
	return nil, errors.Wrapf(ErrDerivation, "unknown user class %d", uint8(c))
}

// Derive finds the program address and bump for the ordered seeds.
func Derive(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Wrapf(ErrDerivation, "%v", err)
	}
	return addr, bump, nil
}

// Verify reports whether addr is the program address of seeds with the recorded bump.
func Verify(addr solana.PublicKey, seeds [][]byte, bump uint8, programID solana.PublicKey) bool {
	withBump := append(append([][]byte{}, seeds...), []byte{bump})
	got, err := solana.CreateProgramAddress(withBump, programID)
	return err == nil && got.Equals(addr)
}

// RewardPool returns the pool authority address of class for vault.
func RewardPool(programID solana.PublicKey, class PoolClass, vault solana.PublicKey) (solana.PublicKey, uint8, error) {
	seed, err := class.Seed()
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	return Derive([][]byte{seed, vault.Bytes()}, programID)
}

// User returns the user record address of authority in vault for the class.
func User(programID solana.PublicKey, class UserClass, vault, authority solana.PublicKey) (solana.PublicKey, uint8, error) {
	seed, err := class.Seed()
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	return Derive([][]byte{seed, vault.Bytes(), authority.Bytes()}, programID)
}

// StakeCustody returns the custody address holding stakedAccount while staked by staker.
func StakeCustody(programID, vault, staker, stakedAccount solana.PublicKey) (solana.PublicKey, uint8, error) {
	return Derive([][]byte{SeedStake, vault.Bytes(), staker.Bytes(), stakedAccount.Bytes()}, programID)
}

// PoolCustody returns the token account of pool for the reward mint.
func PoolCustody(pool, rewardMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindAssociatedTokenAddress(pool, rewardMint)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Wrapf(ErrDerivation, "%v", err)
	}
	return addr, bump, nil
}
