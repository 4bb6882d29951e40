/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "gtidkit"
	subsystem = "tracker"
)

// Metrics are the collectors shared by every Tracker registered with the
// same Registerer. All series are labeled by connector name.
type Metrics struct {
	publishes        *prometheus.CounterVec
	checkpoints      *prometheus.CounterVec
	checkpointErrors *prometheus.CounterVec
	sources          *prometheus.GaugeVec
	lastCheckpoint   *prometheus.GaugeVec
}

// NewMetrics creates the tracker collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	labels := []string{"connector"}
	return &Metrics{
		publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "publishes_total",
			Help:      "Number of positions published by the streaming loop.",
		}, labels),
		checkpoints: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkpoints_total",
			Help:      "Number of positions written to the offset store.",
		}, labels),
		checkpointErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkpoint_errors_total",
			Help:      "Number of failed offset store writes.",
		}, labels),
		sources: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sources",
			Help:      "Number of source ids in the current position.",
		}, labels),
		lastCheckpoint: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_checkpoint_timestamp_seconds",
			Help:      "Unix time of the last successful checkpoint.",
		}, labels),
	}
}
