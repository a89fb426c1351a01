// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package program implements the staking vault: vault pools, user records,
// item custody and reward settlement over a ledger state.
package program

import (
	"github.com/gagliardetto/solana-go"

	"github.com/ctznlabs/nftvault/ledger"
	"github.com/ctznlabs/nftvault/log"
	"github.com/ctznlabs/nftvault/metrics"
	"github.com/ctznlabs/nftvault/program/reverts"
	"github.com/ctznlabs/nftvault/program/reward"
	"github.com/ctznlabs/nftvault/program/user"
	"github.com/ctznlabs/nftvault/program/vault"
)

// DefaultClassBLockup is the minimum time in seconds a ClassB item stays staked.
const DefaultClassBLockup uint64 = 2 * 24 * 60 * 60

var (
	logger = log.WithContext("pkg", "program")

	metricOperations  = metrics.LazyLoadCounterVec("vault_operations_count", []string{"op", "result"})
	metricStakedItems = metrics.LazyLoadGaugeVec("vault_staked_items", []string{"item_type"})
	metricRewardsPaid = metrics.LazyLoadHistogramVec("vault_rewards_paid", []string{"user_type"}, metrics.BucketRewards)
)

func SetLogger(l log.Logger) {
	logger = l
}

// Params are the deployment parameters of a program instance.
type Params struct {
	ProgramID    solana.PublicKey
	Schedule     reward.Schedule
	ClassBLockup uint64
	Operators    []solana.PublicKey
}

// DefaultParams returns the flat reward schedule and the two day lockup.
func DefaultParams(programID solana.PublicKey) Params {
	return Params{
		ProgramID:    programID,
		Schedule:     reward.DefaultSchedule,
		ClassBLockup: DefaultClassBLockup,
	}
}

// Program executes vault instructions against a ledger state.
type Program struct {
	state     *ledger.State
	params    Params
	operators ledger.Signers

	vaultService *vault.Service
	userService  *user.Service
}

// New create a new instance.
func New(state *ledger.State, params Params) *Program {
	return &Program{
		state:        state,
		params:       params,
		operators:    ledger.NewSigners(params.Operators...),
		vaultService: vault.New(state, params.ProgramID),
		userService:  user.New(state, params.ProgramID),
	}
}

// ID returns the program id owning vault and user records.
func (p *Program) ID() solana.PublicKey {
	return p.params.ProgramID
}

// exec runs fn in a checkpoint, reverting every change when it fails.
// The outcome is counted once the state is committed.
func (p *Program) exec(op string, fn func() error) error {
	rev := p.state.NewCheckpoint()
	err := fn()
	result := "success"
	if err != nil {
		p.state.RevertTo(rev)
		result = "failure"
		if kind, ok := reverts.KindOf(err); ok {
			result = kind.String()
		}
	}
	p.state.OnCommit(func() {
		metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result})
	})
	return err
}

func requireSigner(auth ledger.Authorizer, key solana.PublicKey, role string) error {
	if auth == nil || !auth.IsAuthorizedBy(key) {
		return reverts.Newf(reverts.NotAuthorized, "%s %s did not sign", role, key)
	}
	return nil
}

//
// Getters - no state change
//

// FetchVault returns the vault at vaultID, nil when absent.
func (p *Program) FetchVault(vaultID solana.PublicKey) (*vault.Vault, error) {
	return p.vaultService.Get(vaultID)
}

// UserAddress derives the user record address of authority in vaultID.
func (p *Program) UserAddress(vaultID, authority solana.PublicKey, userType user.UserType) (solana.PublicKey, error) {
	return p.userService.Address(vaultID, authority, userType)
}

// FetchUser returns the user at userAddress, nil when the record is not created yet.
func (p *Program) FetchUser(userAddress solana.PublicKey) (*user.User, error) {
	return p.userService.Get(userAddress)
}

// CustodyAddress derives where tokenAccount is held while staked by staker in vaultID.
func (p *Program) CustodyAddress(vaultID, staker, tokenAccount solana.PublicKey) (solana.PublicKey, error) {
	return p.custody(vaultID, staker, tokenAccount)
}

// PendingReward returns the reward the item held in tokenAccount would pay if claimed now.
func (p *Program) PendingReward(userAddress, tokenAccount solana.PublicKey) (uint64, error) {
	u, err := p.userService.GetExisting(userAddress)
	if err != nil {
		return 0, err
	}
	i := u.Find(tokenAccount)
	if i < 0 {
		return 0, reverts.Newf(reverts.RecordNotFound, "%s is not staked by %s", tokenAccount, userAddress)
	}
	return p.params.Schedule.Pending(u.Items[i], p.state.Now())
}
