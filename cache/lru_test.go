// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLRUInvalidSize(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.Error(t, err)
}

func TestLRUEviction(t *testing.T) {
	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	_, _ = c.Get("a") // a becomes most recent
	c.Add("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	c.Remove("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestGetOrLoad(t *testing.T) {
	c, err := NewLRU[string, int](4)
	require.NoError(t, err)

	calls := 0
	loader := func(key string) (int, error) {
		calls++
		if key == "bad" {
			return 0, errors.New("boom")
		}
		return len(key), nil
	}

	v, err := c.GetOrLoad("four", loader)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	v, err = c.GetOrLoad("four", loader)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, 1, calls)

	_, err = c.GetOrLoad("bad", loader)
	assert.Error(t, err)
	_, err = c.GetOrLoad("bad", loader)
	assert.Error(t, err)
	assert.Equal(t, 3, calls, "failed loads are not cached")

	hit, miss := c.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(3), miss)
}

func TestGetOrLoadConcurrent(t *testing.T) {
	c, err := NewLRU[int, *int](4)
	require.NoError(t, err)

	var calls atomic.Int32
	loader := func(key int) (*int, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &key, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(7, loader)
			assert.NoError(t, err)
			assert.Equal(t, 7, *v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())

	// a nil value is a valid cached result
	var nilCalls int
	absent := func(int) (*int, error) { nilCalls++; return nil, nil }
	v, err := c.GetOrLoad(9, absent)
	require.NoError(t, err)
	assert.Nil(t, v)
	_, err = c.GetOrLoad(9, absent)
	require.NoError(t, err)
	assert.Equal(t, 1, nilCalls)
}
