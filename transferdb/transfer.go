// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transferdb

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Kind distinguishes token movements from custody changes.
type Kind uint8

const (
	// KindTransfer moves Amount of Mint from token account From to token account To.
	KindTransfer Kind = iota + 1
	// KindOwnerChange moves the ownership of token account Account from From to To.
	KindOwnerChange
)

func (k Kind) String() string {
	switch k {
	case KindTransfer:
		return "transfer"
	case KindOwnerChange:
		return "owner-change"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Transfer is a committed token movement or custody change.
type Transfer struct {
	Seq     uint64 // assigned on insert
	Time    uint64
	Kind    Kind
	Mint    solana.PublicKey
	Account solana.PublicKey // the token account whose owner changed, zero for transfers
	From    solana.PublicKey
	To      solana.PublicKey
	Amount  uint64
}

func (trans *Transfer) String() string {
	return fmt.Sprintf(`
		Transfer(
			seq:     %v,
			time:    %v,
			kind:    %v,
			mint:    %v,
			account: %v,
			from:    %v,
			to:      %v,
			amount:  %v)`,
		trans.Seq,
		trans.Time,
		trans.Kind,
		trans.Mint,
		trans.Account,
		trans.From,
		trans.To,
		trans.Amount)
}
