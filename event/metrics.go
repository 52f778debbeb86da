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

package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type eventMetrics struct {
	eventsTotal    *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
	deliveryErrors *prometheus.CounterVec
}

func newEventMetrics(reg prometheus.Registerer) *eventMetrics {
	promautoFactory := promauto.With(reg)
	return &eventMetrics{
		eventsTotal: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parlmembers_events_total",
				Help: "number of events published by type",
			},
			[]string{"type"},
		),
		subscribers: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "parlmembers_event_subscribers",
				Help: "number of active event subscribers",
			},
			[]string{"type", "kind"},
		),
		deliveryErrors: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parlmembers_event_delivery_errors_total",
				Help: "number of failed event deliveries",
			},
			[]string{"type", "kind"},
		),
	}
}
