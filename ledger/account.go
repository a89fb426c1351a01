// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// Account is the raw content of an address: the program owning it and its data.
type Account struct {
	Owner solana.PublicKey
	Data  []byte
}

func (a *Account) copy() *Account {
	if a == nil {
		return nil
	}
	return &Account{
		Owner: a.Owner,
		Data:  append([]byte(nil), a.Data...),
	}
}

func (a *Account) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(a.Owner.Bytes(), false); err != nil {
		return err
	}
	return encoder.WriteBytes(a.Data, true)
}

func (a *Account) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	owner, err := decoder.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	a.Owner = solana.PublicKeyFromBytes(owner)

	size, err := decoder.ReadUint32(binary.LittleEndian)
	if err != nil {
		return err
	}
	data, err := decoder.ReadNBytes(int(size))
	if err != nil {
		return err
	}
	a.Data = append([]byte(nil), data...)
	return nil
}

func encodeAccount(a *Account) ([]byte, error) {
	return borshBytes(a)
}

func decodeAccount(data []byte) (*Account, error) {
	var a Account
	if err := a.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		return nil, errors.Wrap(err, "decode account")
	}
	return &a, nil
}
