// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package user

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctznlabs/nftvault/address"
	"github.com/ctznlabs/nftvault/program/codec"
	"github.com/ctznlabs/nftvault/test/datagen"
)

func TestUserLayout(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(0, 6)
	for range 20 {
		var u User
		f.Fuzz(&u)
		u.ItemsCount = uint32(len(u.Items))
		if len(u.Items) == 0 {
			u.Items = nil
		}

		data, err := codec.Encode(&u)
		require.NoError(t, err)
		assert.Len(t, data, 8+32+1+32+4+4+len(u.Items)*(32+32+1+8+8+8))

		var got User
		require.NoError(t, codec.Decode(data, &got))
		assert.Equal(t, u, got)
	}
}

func TestUserDecodeCountMismatch(t *testing.T) {
	u := User{ItemsCount: 1}
	data, err := codec.Encode(&u)
	require.NoError(t, err)

	var got User
	assert.Error(t, codec.Decode(data, &got))
}

func TestItems(t *testing.T) {
	u := &User{}
	accounts := datagen.RandPublicKeys(3)
	for _, a := range accounts {
		require.NoError(t, u.Append(&StakeItem{MintAccount: a}))
	}
	assert.Equal(t, uint32(3), u.ItemsCount)
	assert.Equal(t, 1, u.Find(accounts[1]))
	assert.Equal(t, -1, u.Find(datagen.RandPublicKey()))

	removed := u.Remove(1)
	assert.Equal(t, accounts[1], removed.MintAccount)
	assert.Equal(t, uint32(2), u.ItemsCount)
	assert.Len(t, u.Items, 2)
	assert.Equal(t, accounts[0], u.Items[0].MintAccount)
	assert.Equal(t, accounts[2], u.Items[1].MintAccount)
}

func TestTypes(t *testing.T) {
	assert.Equal(t, ClassA, NormalClassA.Class())
	for _, it := range []ItemType{NormalClassB, PrivilegedB, SpecialB} {
		assert.Equal(t, ClassB, it.Class(), it.String())
	}
	assert.False(t, ItemType(4).Valid())
	assert.Equal(t, "item-type(4)", ItemType(4).String())
	assert.False(t, UserType(2).Valid())

	for _, it := range []ItemType{NormalClassA, NormalClassB, PrivilegedB, SpecialB} {
		parsed, err := ParseItemType(it.String())
		assert.NoError(t, err)
		assert.Equal(t, it, parsed)
	}
	_, err := ParseItemType("alien")
	assert.Error(t, err)

	assert.Equal(t, address.PoolClassA, ClassA.Pool())
	assert.Equal(t, address.PoolClassB, ClassB.Pool())
	assert.Equal(t, address.UserClassB, ClassB.AddressClass())
}
