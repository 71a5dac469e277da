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

package chain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type chainMetrics struct {
	blockNum       prometheus.Gauge
	blockTimestamp prometheus.Gauge
	blocksTotal    prometheus.Counter
}

func (m *chainMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.blockNum = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "numbat_chain_block_number",
		Help: "number of the open block",
	})
	m.blockTimestamp = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "numbat_chain_block_timestamp_seconds",
		Help: "timestamp of the open block",
	})
	m.blocksTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "numbat_chain_blocks_opened_total",
		Help: "blocks opened since startup",
	})
}

func (m *chainMetrics) update(b Block) {
	if m.blockNum == nil {
		return
	}
	m.blockNum.Set(float64(b.Number))
	m.blockTimestamp.Set(float64(b.Timestamp))
	m.blocksTotal.Inc()
}
