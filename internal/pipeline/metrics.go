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

package pipeline

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const metricNamePrefix = "parlmembers_"

type pipelineMetrics struct {
	recordsExtracted *prometheus.CounterVec
	partySpansSplit  prometheus.Counter
	heuristicDropped *prometheus.CounterVec
	rowsWritten      *prometheus.CounterVec
	diffRows         *prometheus.CounterVec
	runDuration      prometheus.Gauge
}

func (m *pipelineMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.recordsExtracted = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricNamePrefix + "records_extracted_total",
			Help: "records extracted from the Members API by kind",
		},
		[]string{"kind"},
	)
	m.partySpansSplit = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: metricNamePrefix + "party_spans_split_total",
		Help: "party spans split at general election boundaries",
	})
	m.heuristicDropped = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricNamePrefix + "heuristic_rows_dropped_total",
			Help: "house memberships dropped by data quality heuristics",
		},
		[]string{"rule"},
	)
	m.rowsWritten = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricNamePrefix + "rows_written_total",
			Help: "rows written to the entity tables",
		},
		[]string{"table"},
	)
	m.diffRows = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricNamePrefix + "diff_rows_total",
			Help: "logical rows compared between snapshots by entity and status",
		},
		[]string{"entity", "status"},
	)
	m.runDuration = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: metricNamePrefix + "run_duration_seconds",
		Help: "duration of the last pipeline run",
	})
}

// pushMetrics sends everything gathered so far to the configured
// Pushgateway. Nothing is pushed without a gateway URL or a gatherer.
func (p *Pipeline) pushMetrics(ctx context.Context) error {
	if p.cfg.Metrics.PushgatewayURL == "" || p.promGatherer == nil {
		return nil
	}
	err := push.New(p.cfg.Metrics.PushgatewayURL, p.cfg.Metrics.Job).
		Gatherer(p.promGatherer).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
