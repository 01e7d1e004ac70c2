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
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// Sampler drives a collector on a fixed cadence, producing the ordered
// during-series of an experiment.
type Sampler struct {
	Collector Collector

	// Sleep is the inter-sample wait. Overridable in tests; the default
	// honors context cancellation.
	Sleep func(ctx context.Context, d time.Duration)
}

// NewSampler creates a sampler over the given collector.
func NewSampler(collector Collector) *Sampler {
	return &Sampler{Collector: collector}
}

// Sample collects duration/interval snapshots (integer division: a duration
// not evenly divisible by the interval samples one fewer time than the naive
// expectation). Iteration i is labeled "{prefix}_{i}". The sampler sleeps
// between iterations but not after the last one, so total wall-clock time is
// (iterations-1)*interval. A collector failure at any iteration is recorded
// as an error snapshot and the loop continues; cancellation of ctx ends the
// series early with whatever was collected.
func (s *Sampler) Sample(ctx context.Context, kind target.Kind, id string, duration, interval time.Duration, prefix string) []Snapshot {
	if interval <= 0 || duration < interval {
		return nil
	}
	iterations := int(duration / interval)

	slog.Info("sampling started",
		"subject", id,
		"iterations", iterations,
		"interval", interval.String())

	snapshots := make([]Snapshot, 0, iterations)
	for i := 0; i < iterations; i++ {
		snap := s.Collector.Collect(ctx, kind, id, fmt.Sprintf("%s_%d", prefix, i))
		snapshots = append(snapshots, snap)

		if i == iterations-1 {
			break
		}
		s.sleep(ctx, interval)
		if ctx.Err() != nil {
			slog.Warn("sampling interrupted", "subject", id, "collected", len(snapshots))
			break
		}
	}
	return snapshots
}

func (s *Sampler) sleep(ctx context.Context, d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(ctx, d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
