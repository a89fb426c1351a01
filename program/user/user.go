// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package user

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

// Discriminator prefixes every encoded User.
var Discriminator = codec.Discriminator("User")

// UserType is the beneficiary class of a user record.
type UserType uint8

const (
	ClassA UserType = iota
	ClassB
)

func (t UserType) String() string {
	switch t {
	case ClassA:
		return "class-a"
	case ClassB:
		return "class-b"
	default:
		return fmt.Sprintf("user-type(%d)", uint8(t))
	}
}

func (t UserType) Valid() bool { return t <= ClassB }

// AddressClass maps the type to its address namespace.
func (t UserType) AddressClass() address.UserClass { return address.UserClass(t) }

// Pool is the reward pool paying users of this type.
func (t UserType) Pool() address.PoolClass {
	if t == ClassB {
		return address.PoolClassB
	}
	return address.PoolClassA
}

// ItemType determines eligibility and reward rules of a staked item.
type ItemType uint8

const (
	NormalClassA ItemType = iota
	NormalClassB
	PrivilegedB
	SpecialB
)

var itemTypeNames = [...]string{
	NormalClassA: "normal-class-a",
	NormalClassB: "normal-class-b",
	PrivilegedB:  "privileged-b",
	SpecialB:     "special-b",
}

func (t ItemType) String() string {
	if t.Valid() {
		return itemTypeNames[t]
	}
	return fmt.Sprintf("item-type(%d)", uint8(t))
}

func (t ItemType) Valid() bool { return t <= SpecialB }

// ParseItemType returns the item type named s.
func ParseItemType(s string) (ItemType, error) {
	for i, name := range itemTypeNames {
		if name == s {
			return ItemType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown item type %q", s)
}

// Class is the user type allowed to stake items of this type.
func (t ItemType) Class() UserType {
	if t == NormalClassA {
		return ClassA
	}
	return ClassB
}

// StakeItem records one staked token.
type StakeItem struct {
	Mint            solana.PublicKey
	MintAccount     solana.PublicKey // the token account held in custody
	ItemType        ItemType
	FirstStakedTime uint64
	LastClaimedTime uint64
	EarnedReward    uint64
}

func (it *StakeItem) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = codec.WritePublicKey(encoder, it.Mint); err != nil {
		return err
	}
	if err = codec.WritePublicKey(encoder, it.MintAccount); err != nil {
		return err
	}
	if err = encoder.WriteUint8(uint8(it.ItemType)); err != nil {
		return err
	}
	if err = encoder.WriteUint64(it.FirstStakedTime, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.WriteUint64(it.LastClaimedTime, binary.LittleEndian); err != nil {
		return err
	}
	return encoder.WriteUint64(it.EarnedReward, binary.LittleEndian)
}

func (it *StakeItem) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if it.Mint, err = codec.ReadPublicKey(decoder); err != nil {
		return err
	}
	if it.MintAccount, err = codec.ReadPublicKey(decoder); err != nil {
		return err
	}
	itemType, err := decoder.ReadUint8()
	if err != nil {
		return err
	}
	it.ItemType = ItemType(itemType)
	if it.FirstStakedTime, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if it.LastClaimedTime, err = decoder.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	it.EarnedReward, err = decoder.ReadUint64(binary.LittleEndian)
	return err
}

// User tracks the items an authority staked in a vault.
type User struct {
	Vault      solana.PublicKey
	UserType   UserType
	Key        solana.PublicKey
	ItemsCount uint32
	Items      []*StakeItem
}

// Find returns the index of the item held in mintAccount, -1 when absent.
func (u *User) Find(mintAccount solana.PublicKey) int {
	for i, it := range u.Items {
		if it.MintAccount.Equals(mintAccount) {
			return i
		}
	}
	return -1
}

// Append adds item at the end of the items.
func (u *User) Append(item *StakeItem) error {
	if u.ItemsCount == math.MaxUint32 {
		return reverts.New(reverts.Overflow, "too many items")
	}
	u.Items = append(u.Items, item)
	u.ItemsCount++
	return nil
}

// Remove deletes the item at i, keeping the order of the others.
func (u *User) Remove(i int) *StakeItem {
	item := u.Items[i]
	u.Items = append(u.Items[:i], u.Items[i+1:]...)
	u.ItemsCount--
	return item
}

func (u *User) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(Discriminator[:], false); err != nil {
		return err
	}
	if err = codec.WritePublicKey(encoder, u.Vault); err != nil {
		return err
	}
	if err = encoder.WriteUint8(uint8(u.UserType)); err != nil {
		return err
	}
	if err = codec.WritePublicKey(encoder, u.Key); err != nil {
		return err
	}
	if err = encoder.WriteUint32(u.ItemsCount, binary.LittleEndian); err != nil {
		return err
	}
	if err = encoder.WriteUint32(uint32(len(u.Items)), binary.LittleEndian); err != nil {
		return err
	}
	for _, it := range u.Items {
		if err = it.MarshalWithEncoder(encoder); err != nil {
			return err
		}
	}
	return nil
}

func (u *User) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	if err = codec.ReadDiscriminator(decoder, Discriminator); err != nil {
		return err
	}
	if u.Vault, err = codec.ReadPublicKey(decoder); err != nil {
		return err
	}
	userType, err := decoder.ReadUint8()
	if err != nil {
		return err
	}
	u.UserType = UserType(userType)
	if u.Key, err = codec.ReadPublicKey(decoder); err != nil {
		return err
	}
	if u.ItemsCount, err = decoder.ReadUint32(binary.LittleEndian); err != nil {
		return err
	}
	n, err := decoder.ReadUint32(binary.LittleEndian)
	if err != nil {
		return err
	}
	if n != u.ItemsCount {
		return fmt.Errorf("items count %d does not match %d items", u.ItemsCount, n)
	}
	u.Items = nil
	for range n {
		it := new(StakeItem)
		if err = it.UnmarshalWithDecoder(decoder); err != nil {
			return err
		}
		u.Items = append(u.Items, it)
	}
	return nil
}
