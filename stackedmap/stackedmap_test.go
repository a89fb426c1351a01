// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ctznlabs/nftvault/stackedmap"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := map[string]string{"foo": "bar"}

	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, r := src[key]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() {}, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", M("baz", true, nil)},
		{func() {}, 2, "foo", "baz1", "foo", M("baz1", true, nil)},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", M("qux", true, nil)},
		{func() { sm.Pop() }, 2, "", "", "foo", M("baz1", true, nil)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true, nil)},

		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(test.depth, sm.Depth())
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			assert.Equal(test.getReturn, M(sm.Get(test.getKey)))
		}
	}
}

func TestStackedMapPuts(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(key string) (string, bool, error) {
		return "", false, nil
	})

	kvs := []struct {
		k, v string
	}{
		{"a", "b"},
		{"a", "b"},
		{"a", "c"},
		{"b", "d"},
	}

	for i, kv := range kvs {
		sm.Put(kv.k, kv.v)
		if i == 1 {
			sm.Push()
		}
	}

	var journal [][2]string
	sm.Journal(func(k, v string) bool {
		journal = append(journal, [2]string{k, v})
		return true
	})
	assert.Equal([][2]string{{"a", "b"}, {"a", "b"}, {"a", "c"}, {"b", "d"}}, journal)

	sm.PopTo(1)
	journal = nil
	sm.Journal(func(k, v string) bool {
		journal = append(journal, [2]string{k, v})
		return false
	})
	assert.Equal([][2]string{{"a", "b"}}, journal)

	v, ok, err := sm.Get("b")
	assert.Nil(err)
	assert.False(ok)
	assert.Equal("", v)
}

func TestStackedMapSourceError(t *testing.T) {
	boom := errors.New("boom")
	sm := stackedmap.New(func(key int) (int, bool, error) {
		return 0, false, boom
	})

	_, _, err := sm.Get(1)
	assert.ErrorIs(t, err, boom)

	sm.Put(1, 42)
	v, ok, err := sm.Get(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}
