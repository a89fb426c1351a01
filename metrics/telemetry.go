// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes package wide meters. It is a no-op until
// InitializePrometheusMetrics is called.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics is a singleton service that provides global access to a set of meters.
// It defaults to a no-op implementation.
var (
	metrics   = defaultNoopMetrics()
	metricsMu sync.RWMutex
)

func current() Metrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return metrics
}

// Metrics defines the interface for metrics service implementations.
type Metrics interface {
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	Gatherer() prometheus.Gatherer
}

// Gatherer returns the gatherer of collected metrics, nil when metrics are disabled.
func Gatherer() prometheus.Gatherer {
	return current().Gatherer()
}

// BucketRewards are histogram buckets for reward payouts in base units.
var BucketRewards = []int64{0, 36, 360, 3_600, 36_000, 360_000, 3_600_000, 36_000_000}

// HistogramVecMeter aggregates observations into buckets, split by labels.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return current().GetOrCreateHistogramVecMeter(name, labels, buckets)
}

// CountVecMeter is a monotonically increasing counter split by labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

func CounterVec(name string, labels []string) CountVecMeter {
	return current().GetOrCreateCountVecMeter(name, labels)
}

// GaugeMeter is a single numeric value which can arbitrarily go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

func Gauge(name string) GaugeMeter {
	return current().GetOrCreateGaugeMeter(name)
}

// GaugeVecMeter is a gauge split by labels.
type GaugeVecMeter interface {
	AddWithLabel(int64, map[string]string)
	SetWithLabel(int64, map[string]string)
}

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return current().GetOrCreateGaugeVecMeter(name, labels)
}

// LazyLoad allows to defer the instantiation of the metric while allowing its definition:
//   - metrics can be defined package wide (using var)
//   - the singleton to use (noop vs prometheus) is picked on first use
func LazyLoad[T any](f func() T) func() T {
	var result T
	var once sync.Once
	return func() T {
		once.Do(func() {
			result = f()
		})
		return result
	}
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter {
		return HistogramVec(name, labels, buckets)
	})
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter {
		return CounterVec(name, labels)
	})
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter {
		return Gauge(name)
	})
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter {
		return GaugeVec(name, labels)
	})
}
