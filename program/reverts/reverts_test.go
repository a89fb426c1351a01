// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(NotAuthorized, "test")
	assert.Equal(t, "test", revert.Message())
	assert.Equal(t, "NotAuthorized: test", revert.Error())
	assert.Equal(t, NotAuthorized, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func TestKindOfWrapped(t *testing.T) {
	err := errors.Wrap(Newf(LockupNotElapsed, "%d seconds remaining", 10), "unstake")

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, LockupNotElapsed, kind)
	assert.True(t, Is(err, LockupNotElapsed))
	assert.False(t, Is(err, NotAuthorized))
	assert.Contains(t, err.Error(), "10 seconds remaining")

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindCodes(t *testing.T) {
	assert.Equal(t, uint32(6000), AlreadyInitialized.Code())
	assert.Equal(t, uint32(6006), InsufficientPoolBalance.Code())
	assert.Equal(t, "DerivationFailed", DerivationFailed.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.Equal(t, "Overflow", New(Overflow, "").Error())
}
