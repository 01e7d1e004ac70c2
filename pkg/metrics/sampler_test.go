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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// scriptedCollector returns canned snapshots, optionally failing on
// selected iterations (1-based).
type scriptedCollector struct {
	calls   int
	failOn  map[int]bool
	subject string
}

func (c *scriptedCollector) Collect(_ context.Context, _ target.Kind, id, label string) Snapshot {
	c.calls++
	if c.failOn[c.calls] {
		return ErrorSnapshot(label, id, errors.New("backend unreachable"))
	}
	return Snapshot{
		Timestamp: time.Now().UTC(),
		Label:     label,
		SubjectID: id,
		CPU:       &CPU{Percent: float64(c.calls)},
	}
}

func TestSampleDurationLaw(t *testing.T) {
	collector := &scriptedCollector{}
	sleeps := 0
	sampler := &Sampler{
		Collector: collector,
		Sleep:     func(context.Context, time.Duration) { sleeps++ },
	}

	snapshots := sampler.Sample(context.Background(), target.KindService, "web",
		10*time.Second, 2*time.Second, "during")

	require.Len(t, snapshots, 5)
	assert.Equal(t, 4, sleeps, "no sleep after the last iteration")
	for i, snap := range snapshots {
		assert.Equal(t, fmt.Sprintf("during_%d", i), snap.Label)
	}
}

func TestSampleUnevenDurationTruncates(t *testing.T) {
	sampler := &Sampler{
		Collector: &scriptedCollector{},
		Sleep:     func(context.Context, time.Duration) {},
	}

	// 10/3 = 3 by integer division.
	snapshots := sampler.Sample(context.Background(), target.KindService, "web",
		10*time.Second, 3*time.Second, "during")
	assert.Len(t, snapshots, 3)
}

func TestSampleFaultTolerance(t *testing.T) {
	collector := &scriptedCollector{failOn: map[int]bool{3: true}}
	sampler := &Sampler{
		Collector: collector,
		Sleep:     func(context.Context, time.Duration) {},
	}

	snapshots := sampler.Sample(context.Background(), target.KindService, "web",
		10*time.Second, 2*time.Second, "during")

	require.Len(t, snapshots, 5)
	for i, snap := range snapshots {
		if i == 2 {
			assert.NotEmpty(t, snap.Error, "iteration 3 records the failure")
			continue
		}
		assert.Empty(t, snap.Error, "iteration %d unaffected", i+1)
		assert.NotNil(t, snap.CPU)
	}
}

func TestSampleDegenerateParameters(t *testing.T) {
	sampler := NewSampler(&scriptedCollector{})

	assert.Nil(t, sampler.Sample(context.Background(), target.KindService, "web",
		10*time.Second, 0, "during"))
	assert.Nil(t, sampler.Sample(context.Background(), target.KindService, "web",
		time.Second, 2*time.Second, "during"))
}

func TestSampleStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	collector := &scriptedCollector{}
	sampler := &Sampler{
		Collector: collector,
		Sleep: func(context.Context, time.Duration) {
			if collector.calls == 2 {
				cancel()
			}
		},
	}

	snapshots := sampler.Sample(ctx, target.KindService, "web",
		10*time.Second, 2*time.Second, "during")
	assert.Len(t, snapshots, 2)
}
