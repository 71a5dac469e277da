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

package sqlite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (d *MetadataStoreSqlite) registerMetrics() {
	sqlDB, err := d.DB().DB()
	if err != nil {
		return
	}
	factory := promauto.With(d.promRegistry)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "database_metadata_open_connections",
			Help: "Number of open metadata database connections",
		},
		func() float64 {
			return float64(sqlDB.Stats().OpenConnections)
		},
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "database_metadata_wait_count",
			Help: "Total number of waits for a metadata database connection",
		},
		func() float64 {
			return float64(sqlDB.Stats().WaitCount)
		},
	)
}
