// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package user

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/ctznlabs/nftvault/address"
	"github.com/ctznlabs/nftvault/ledger"
	"github.com/ctznlabs/nftvault/program/codec"
	"github.com/ctznlabs/nftvault/program/reverts"
)

// Service stores user records.
type Service struct {
	state     *ledger.State
	programID solana.PublicKey
}

func New(state *ledger.State, programID solana.PublicKey) *Service {
	return &Service{state: state, programID: programID}
}

// Address derives the record address of authority in vault for userType.
func (s *Service) Address(vault, authority solana.PublicKey, userType UserType) (solana.PublicKey, error) {
	addr, _, err := address.User(s.programID, userType.AddressClass(), vault, authority)
	if err != nil {
		return solana.PublicKey{}, reverts.New(reverts.DerivationFailed, err.Error())
	}
	return addr, nil
}

// Get returns the user at addr, nil when the record is not created yet.
func (s *Service) Get(addr solana.PublicKey) (*User, error) {
	acc, err := s.state.GetAccount(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	if acc == nil {
		return nil, nil
	}
	if !acc.Owner.Equals(s.programID) {
		return nil, reverts.Newf(reverts.InvalidAccount, "%s is not a user record", addr)
	}
	var u User
	if err := codec.Decode(acc.Data, &u); err != nil {
		return nil, reverts.Newf(reverts.InvalidAccount, "%s is not a user record: %v", addr, err)
	}
	return &u, nil
}

// GetExisting returns the user at addr or fails with RecordNotFound.
func (s *Service) GetExisting(addr solana.PublicKey) (*User, error) {
	u, err := s.Get(addr)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, reverts.Newf(reverts.RecordNotFound, "user %s does not exist", addr)
	}
	return u, nil
}

// Create stores an empty record for authority at its derived address.
func (s *Service) Create(vault, authority solana.PublicKey, userType UserType) (solana.PublicKey, *User, error) {
	if !userType.Valid() {
		return solana.PublicKey{}, nil, reverts.Newf(reverts.WrongUserType, "unknown user type %d", uint8(userType))
	}
	addr, err := s.Address(vault, authority, userType)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	exists, err := s.state.Exists(addr)
	if err != nil {
		return solana.PublicKey{}, nil, errors.Wrap(err, "failed to check user")
	}
	if exists {
		return solana.PublicKey{}, nil, reverts.Newf(reverts.AlreadyExists, "user %s already exists", addr)
	}

	u := &User{
		Vault:    vault,
		UserType: userType,
		Key:      authority,
	}
	data, err := codec.Encode(u)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	if err := s.state.CreateAccount(addr, s.programID, data); err != nil {
		return solana.PublicKey{}, nil, errors.Wrap(err, "failed to create user")
	}
	return addr, u, nil
}

// Update stores u at addr.
func (s *Service) Update(addr solana.PublicKey, u *User) error {
	data, err := codec.Encode(u)
	if err != nil {
		return err
	}
	if err := s.state.SetData(addr, s.programID, data); err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	return nil
}
