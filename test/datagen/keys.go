// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"github.com/gagliardetto/solana-go"
)

// RandWallet returns a fresh key pair.
func RandWallet() *solana.Wallet {
	return solana.NewWallet()
}

// RandPublicKey returns the public key of a fresh key pair.
func RandPublicKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

// RandPublicKeys returns n distinct random public keys.
func RandPublicKeys(n int) []solana.PublicKey {
	keys := make([]solana.PublicKey, n)
	for i := range keys {
		keys[i] = RandPublicKey()
	}
	return keys
}
