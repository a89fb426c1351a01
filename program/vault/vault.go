// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"encoding/binary"
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ctznlabs/nftvault/address"
	"github.com/ctznlabs/nftvault/program/codec"
	"github.com/ctznlabs/nftvault/program/reverts"
)

// Discriminator prefixes every encoded Vault.
var Discriminator = codec.Discriminator("Vault")

type Status uint8

const (
	StatusUninitialized Status = iota
	StatusInitialized
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitialized:
		return "initialized"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Pool is one beneficiary class's reward custody.
type Pool struct {
	Bump    uint8            // bump of the pool authority address
	Custody solana.PublicKey // token account holding the pooled rewards
	Amount  uint64           // tracked balance, equal to the custody balance
}

// Vault owns the reward pools of a staking program instance.
type Vault struct {
	Authority   solana.PublicKey
	Status      Status
	RewardMint  solana.PublicKey
	Pools       [address.NumPools]Pool
	AlphaCount  uint8
	NormalCount uint8
}

// Pool returns the pool of class.
func (v *Vault) Pool(class address.PoolClass) (*Pool, error) {
	if int(class) >= len(v.Pools) {
		return nil, reverts.Newf(reverts.InvalidAccount, "unknown pool %d", uint8(class))
	}
	return &v.Pools[class], nil
}

// AdjustCounts applies the deltas to the privileged counters.
func (v *Vault) AdjustCounts(alpha, normal int) error {
	a, err := adjust(v.AlphaCount, alpha)
	if err != nil {
		return err
	}
	n, err := adjust(v.NormalCount, normal)
	if err != nil {
		return err
	}
	v.AlphaCount, v.NormalCount = a, n
	return nil
}

func adjust(c uint8, delta int) (uint8, error) {
	next := int(c) + delta
	if next < 0 || next > math.MaxUint8 {
		return c, reverts.Newf(reverts.Overflow, "counter %d%+d out of range", c, delta)
	}
	return uint8(next), nil
}

// The pool bumps and custody accounts come first, then the three amounts.
func (v *Vault) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(Discriminator[:], false); err != nil {
		return err
	}
	if err = codec.WritePublicKey(encoder, v.Authority); err != nil {
		return err
	}
	if err = encoder.WriteUint8(uint8(v.Status)); err != nil {
		return err
	}
	if err = codec.WritePublicKey(encoder, v.RewardMint); err != nil {
		return err
	}
	for i := range v.Pools {
		if err = encoder.WriteUint8(v.Pools[i].Bump); err != nil {
			return err
		}
		if err = codec.WritePublicKey(encoder, v.Pools[i].Custody); err != nil {
			return err
		}
	}
	for i := range v.Pools {
		if err = encoder.WriteUint64(v.Pools[i].Amount, binary.LittleEndian); err != nil {
			return err
		}
	}
	if err = encoder.WriteUint8(v.AlphaCount); err != nil {
		return err
	}
	return encoder.WriteUint8(v.NormalCount)
}

func (v *Vault) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = codec.ReadDiscriminator(decoder, Discriminator); err != nil {
		return err
	}
	if v.Authority, err = codec.ReadPublicKey(decoder); err != nil {
		return err
	}
	status, err := decoder.ReadUint8()
	if err != nil {
		return err
	}
	v.Status = Status(status)
	if v.RewardMint, err = codec.ReadPublicKey(decoder); err != nil {
		return err
	}
	for i := range v.Pools {
		if v.Pools[i].Bump, err = decoder.ReadUint8(); err != nil {
			return err
		}
		if v.Pools[i].Custody, err = codec.ReadPublicKey(decoder); err != nil {
			return err
		}
	}
	for i := range v.Pools {
		if v.Pools[i].Amount, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
			return err
		}
	}
	if v.AlphaCount, err = decoder.ReadUint8(); err != nil {
		return err
	}
	v.NormalCount, err = decoder.ReadUint8()
	return err
}
