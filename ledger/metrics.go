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

package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type executorMetrics struct {
	opsTotal   *prometheus.CounterVec
	opDuration *prometheus.HistogramVec
}

func (m *executorMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.opsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "numbat_ledger_operations_total",
			Help: "operations executed by outcome",
		},
		[]string{"operation", "outcome"},
	)
	m.opDuration = promautoFactory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "numbat_ledger_operation_duration_seconds",
			Help:    "operation latency including commit",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"operation"},
	)
}

func (m *executorMetrics) observe(operation string, start time.Time, err error) {
	if m.opsTotal == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		if kind, ok := KindOf(err); ok {
			outcome = kind.String()
		}
	}
	m.opsTotal.WithLabelValues(operation, outcome).Inc()
	m.opDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
