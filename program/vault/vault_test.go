// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"crypto/sha256"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctznlabs/nftvault/address"
	"github.com/ctznlabs/nftvault/program/codec"
	"github.com/ctznlabs/nftvault/program/reverts"
)

func TestVaultLayout(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 20 {
		var v Vault
		f.Fuzz(&v)

		data, err := codec.Encode(&v)
		require.NoError(t, err)
		assert.Len(t, data, 8+32+1+32+3*(1+32)+3*8+1+1)

		var got Vault
		require.NoError(t, codec.Decode(data, &got))
		assert.Equal(t, v, got)
	}
}

func TestVaultFieldOrder(t *testing.T) {
	v := Vault{Status: StatusInitialized, AlphaCount: 7, NormalCount: 9}
	v.Authority[0] = 0xaa
	v.RewardMint[0] = 0xbb
	v.Pools[address.PoolClassB].Bump = 0xcc
	v.Pools[address.PoolPrivileged].Amount = 0x0102

	data, err := codec.Encode(&v)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("account:Vault"))
	assert.Equal(t, sum[:8], data[:8])
	assert.Equal(t, byte(0xaa), data[8])
	assert.Equal(t, byte(1), data[40])
	assert.Equal(t, byte(0xbb), data[41])
	// bumps and custody accounts first: class B bump follows the class A pair
	assert.Equal(t, byte(0xcc), data[73+33])
	// amounts follow the three pairs, little endian
	amounts := 73 + 3*33
	assert.Equal(t, []byte{0x02, 0x01}, data[amounts+16:amounts+18])
	assert.Equal(t, []byte{7, 9}, data[len(data)-2:])
}

func TestVaultDecodeRejects(t *testing.T) {
	var v Vault
	data, err := codec.Encode(&v)
	require.NoError(t, err)

	bad := append([]byte(nil), data...)
	bad[0] ^= 0xff
	assert.Error(t, codec.Decode(bad, &v))
	assert.Error(t, codec.Decode(append(data, 0), &v))
	assert.Error(t, codec.Decode(data[:len(data)-1], &v))
}

func TestAdjustCounts(t *testing.T) {
	v := &Vault{}
	require.NoError(t, v.AdjustCounts(1, 2))
	assert.Equal(t, uint8(1), v.AlphaCount)
	assert.Equal(t, uint8(2), v.NormalCount)

	err := v.AdjustCounts(-2, 0)
	assert.True(t, reverts.Is(err, reverts.Overflow))
	assert.Equal(t, uint8(1), v.AlphaCount, "unchanged on failure")

	v.NormalCount = 255
	assert.True(t, reverts.Is(v.AdjustCounts(0, 1), reverts.Overflow))

	_, err = v.Pool(address.PoolClass(5))
	assert.True(t, reverts.Is(err, reverts.InvalidAccount))
}
