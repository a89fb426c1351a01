// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward computes reward accrual of staked items.
package reward

import (
	"github.com/holiman/uint256"

	"github.com/ctznlabs/nftvault/program/reverts"
	"github.com/ctznlabs/nftvault/program/user"
)

// DefaultRatePerSecond is paid per staked item per second, in reward base units.
const DefaultRatePerSecond uint64 = 36

// Schedule maps item types to their per second rate.
type Schedule struct {
	Default uint64
	ByType  map[user.ItemType]uint64
}

// DefaultSchedule pays the flat default rate for every item type.
var DefaultSchedule = Schedule{Default: DefaultRatePerSecond}

// Rate returns the per second rate of itemType.
func (s Schedule) Rate(itemType user.ItemType) uint64 {
	if r, ok := s.ByType[itemType]; ok {
		return r
	}
	return s.Default
}

// Pending returns the settled reward of item plus what accrued since its last claim.
// Elapsed time is counted in whole seconds.
func (s Schedule) Pending(item *user.StakeItem, now uint64) (uint64, error) {
	total, err := s.pending(item, now)
	if err != nil {
		return 0, err
	}
	return total.Uint64(), nil
}

func (s Schedule) pending(item *user.StakeItem, now uint64) (*uint256.Int, error) {
	var elapsed uint64
	if now > item.LastClaimedTime {
		elapsed = now - item.LastClaimedTime
	}
	accrued, overflow := new(uint256.Int).MulOverflow(
		uint256.NewInt(elapsed),
		uint256.NewInt(s.Rate(item.ItemType)),
	)
	if overflow {
		return nil, reverts.New(reverts.Overflow, "reward accrual overflow")
	}
	total := new(uint256.Int).Add(accrued, uint256.NewInt(item.EarnedReward))
	if !total.IsUint64() {
		return nil, reverts.Newf(reverts.Overflow, "reward %s exceeds 64 bits", total.Dec())
	}
	return total, nil
}

// Sum returns the total pending reward of items.
func (s Schedule) Sum(items []*user.StakeItem, now uint64) (uint64, error) {
	sum := new(uint256.Int)
	for _, it := range items {
		p, err := s.pending(it, now)
		if err != nil {
			return 0, err
		}
		sum.Add(sum, p)
	}
	if !sum.IsUint64() {
		return 0, reverts.Newf(reverts.Overflow, "total reward %s exceeds 64 bits", sum.Dec())
	}
	return sum.Uint64(), nil
}

// Settle marks every item as claimed at now. A clock behind the last claim
// never moves LastClaimedTime backwards.
func Settle(items []*user.StakeItem, now uint64) {
	for _, it := range items {
		it.EarnedReward = 0
		it.LastClaimedTime = max(now, it.LastClaimedTime)
	}
}

// Rate returns the default schedule's rate of itemType.
func Rate(itemType user.ItemType) uint64 {
	return DefaultSchedule.Rate(itemType)
}

// Pending returns the default schedule's pending reward of item.
func Pending(item *user.StakeItem, now uint64) (uint64, error) {
	return DefaultSchedule.Pending(item, now)
}

// Sum returns the default schedule's total pending reward of items.
func Sum(items []*user.StakeItem, now uint64) (uint64, error) {
	return DefaultSchedule.Sum(items, now)
}
