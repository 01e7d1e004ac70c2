// Copyright (c) 2025, ChaosExp Authors.  All rights reserved.
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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

var (
	// Self-instrumentation for the collection path, exposed by the serve
	// command's /metrics endpoint.
	snapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaosexp_snapshots_total",
			Help: "Total number of snapshot collection attempts",
		},
		[]string{"kind", "outcome"}, // kind: service|node|vm, outcome: ok|error
	)

	comparisonsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chaosexp_comparisons_total",
			Help: "Total number of comparison analyses computed",
		},
	)
)

func snapshotCounter(kind, outcome string) {
	snapshotsTotal.WithLabelValues(kind, outcome).Inc()
}

func comparisonCounter() {
	comparisonsTotal.Inc()
}
