/*
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
"License"); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

package bufferpool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the counters and gauges of one pool.
type Metrics struct {
	Slots     *prometheus.GaugeVec
	Acquires  prometheus.Counter
	Releases  prometheus.Counter
	Exhausted prometheus.Counter
	Waits     prometheus.Counter
}

// NewMetrics creates the pool metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Slots: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "softswitch_bufferpool_slots",
				Help: "Number of buffer pool slots per state.",
			},
			[]string{"state"},
		),
		Acquires: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "softswitch_bufferpool_acquires_total",
				Help: "Total number of descriptors handed out.",
			},
		),
		Releases: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "softswitch_bufferpool_releases_total",
				Help: "Total number of descriptors returned to the pool.",
			},
		),
		Exhausted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "softswitch_bufferpool_exhausted_total",
				Help: "Total number of non-blocking acquires that found no free slot.",
			},
		),
		Waits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "softswitch_bufferpool_waits_total",
				Help: "Total number of blocking acquires that had to wait.",
			},
		),
	}
}

func (m *Metrics) setSlots(s Stats) {
	m.Slots.WithLabelValues(SlotFree.String()).Set(float64(s.Free))
	m.Slots.WithLabelValues(SlotInUse.String()).Set(float64(s.InUse))
	m.Slots.WithLabelValues(SlotUnavailable.String()).Set(float64(s.Unavailable))
}
