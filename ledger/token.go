// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// Encoded sizes tell mints and token accounts apart.
const (
	MintSize         = solana.PublicKeyLength + 8 + 1
	TokenAccountSize = 2*solana.PublicKeyLength + 8
)

// Mint describes a fungible or single unit asset type.
type Mint struct {
	Authority solana.PublicKey
	Supply    uint64
	Decimals  uint8
}

func (m *Mint) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(m.Authority.Bytes(), false); err != nil {
		return err
	}
	if err := encoder.WriteUint64(m.Supply, binary.LittleEndian); err != nil {
		return err
	}
	return encoder.WriteUint8(m.Decimals)
}

func (m *Mint) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if m.Authority, err = readPublicKey(decoder); err != nil {
		return err
	}
	if m.Supply, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	m.Decimals, err = decoder.ReadUint8()
	return err
}

// TokenAccount holds Amount units of Mint on behalf of Owner.
type TokenAccount struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

func (t *TokenAccount) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteBytes(t.Mint.Bytes(), false); err != nil {
		return err
	}
	if err := encoder.WriteBytes(t.Owner.Bytes(), false); err != nil {
		return err
	}
	return encoder.WriteUint64(t.Amount, binary.LittleEndian)
}

func (t *TokenAccount) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if t.Mint, err = readPublicKey(decoder); err != nil {
		return err
	}
	if t.Owner, err = readPublicKey(decoder); err != nil {
		return err
	}
	t.Amount, err = decoder.ReadUint64(binary.LittleEndian)
	return err
}

func readPublicKey(decoder *bin.Decoder) (solana.PublicKey, error) {
	b, err := decoder.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(b), nil
}

type marshaler interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
}

func borshBytes(v marshaler) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, errors.Wrap(err, "encode")
	}
	return buf.Bytes(), nil
}
