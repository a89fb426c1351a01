// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    any
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", LevelDebug, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"crit", LevelCrit, false},
		{"loud", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lvl, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, lvl)
		})
	}
}

func TestNewHandlerUnknownFormat(t *testing.T) {
	_, err := NewHandler(&bytes.Buffer{}, "xml", LevelInfo)
	assert.Error(t, err)
}

func TestWithContextFollowsRoot(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	logger := WithContext("pkg", "test")

	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, FormatJSON, "debug"))

	logger.Debug("hello", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["pkg"])
	assert.Equal(t, float64(1), rec["n"])
}

func TestLevelFilters(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	var buf bytes.Buffer
	require.NoError(t, Setup(&buf, FormatLogfmt, "warn"))

	WithContext().Info("dropped")
	assert.Zero(t, buf.Len())

	WithContext().Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewHandlerFormats(t *testing.T) {
	for _, format := range []string{FormatTerminal, FormatLogfmt, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			h, err := NewHandler(&buf, format, LevelWarn)
			require.NoError(t, err)

			l := New(h)
			l.Info("dropped")
			assert.Zero(t, buf.Len())

			l.Warn("kept", "n", 1)
			assert.Contains(t, buf.String(), "kept")
		})
	}
}
