// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	InitializePrometheusMetrics()
	CounterVec("dump_test", []string{"op"}).AddWithLabel(4, map[string]string{"op": "claim"})

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf))

	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(&buf)
	require.NoError(t, err)

	f, ok := families[namespace+"_dump_test"]
	require.True(t, ok)
	require.Len(t, f.GetMetric(), 1)
	assert.Equal(t, "claim", f.GetMetric()[0].GetLabel()[0].GetValue())
	assert.Equal(t, float64(4), f.GetMetric()[0].GetCounter().GetValue())
}
