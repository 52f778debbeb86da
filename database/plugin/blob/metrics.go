// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blob

import "github.com/prometheus/client_golang/prometheus"

const metricNamePrefix = "parlmembers_blob_"

// Metrics counts blob operations for a store
type Metrics struct {
	ops   *prometheus.CounterVec
	bytes *prometheus.CounterVec
}

// NewMetrics registers the blob metrics labelled with the store name. A nil
// registry gives metrics that are counted but never exported.
func NewMetrics(registry prometheus.Registerer, store string) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        metricNamePrefix + "ops_total",
				Help:        "Total number of blob operations",
				ConstLabels: prometheus.Labels{"store": store},
			},
			[]string{"op"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        metricNamePrefix + "bytes_total",
				Help:        "Total bytes read/written by blob operations",
				ConstLabels: prometheus.Labels{"store": store},
			},
			[]string{"op"},
		),
	}
	if registry != nil {
		registry.MustRegister(m.ops, m.bytes)
	}
	return m
}

// Observe records one operation moving n bytes
func (m *Metrics) Observe(op string, n int) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op).Inc()
	if n > 0 {
		m.bytes.WithLabelValues(op).Add(float64(n))
	}
}
