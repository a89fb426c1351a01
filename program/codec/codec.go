// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package codec holds the Borsh helpers shared by program records.
package codec

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// Record is a program account with a Borsh layout.
type Record interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
	UnmarshalWithDecoder(decoder *bin.Decoder) error
}

// Discriminator returns the 8 byte tag prefixing an account named name.
func Discriminator(name string) bin.TypeID {
	sum := sha256.Sum256([]byte("account:" + name))
	return bin.TypeID(sum[:8])
}

// Encode serializes r.
func Encode(r Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	return buf.Bytes(), nil
}

// Decode deserializes data into r and rejects trailing bytes.
func Decode(data []byte, r Record) error {
	decoder := bin.NewBorshDecoder(data)
	if err := r.UnmarshalWithDecoder(decoder); err != nil {
		return errors.Wrap(err, "decode record")
	}
	if decoder.Remaining() != 0 {
		return fmt.Errorf("decode record: %d trailing bytes", decoder.Remaining())
	}
	return nil
}

// ReadDiscriminator consumes the tag and checks it against want.
func ReadDiscriminator(decoder *bin.Decoder, want bin.TypeID) error {
	got, err := decoder.ReadTypeID()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("discriminator mismatch: got %x, want %x", got[:], want[:])
	}
	return nil
}

// WritePublicKey writes the 32 raw bytes of key.
func WritePublicKey(encoder *bin.Encoder, key solana.PublicKey) error {
	return encoder.WriteBytes(key.Bytes(), false)
}

// ReadPublicKey reads 32 raw bytes as a key.
func ReadPublicKey(decoder *bin.Decoder) (solana.PublicKey, error) {
	b, err := decoder.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBytes(b), nil
}
