// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/gagliardetto/solana-go"

// Authorizer tells whether a call carries the authorization of an identity.
type Authorizer interface {
	IsAuthorizedBy(key solana.PublicKey) bool
}

// Signers is the set of identities that signed a call.
type Signers map[solana.PublicKey]struct{}

// NewSigners builds a signer set from public keys.
func NewSigners(keys ...solana.PublicKey) Signers {
	s := make(Signers, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// NewWalletSigners builds a signer set from key pairs.
func NewWalletSigners(wallets ...*solana.Wallet) Signers {
	s := make(Signers, len(wallets))
	for _, w := range wallets {
		s[w.PublicKey()] = struct{}{}
	}
	return s
}

func (s Signers) IsAuthorizedBy(key solana.PublicKey) bool {
	_, ok := s[key]
	return ok
}
