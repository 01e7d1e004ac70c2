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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cpuSnapshot(percent float64) Snapshot {
	return Snapshot{CPU: &CPU{Percent: percent}}
}

func memSnapshot(usage uint64) Snapshot {
	return Snapshot{Memory: &Memory{Usage: usage}}
}

func TestCompareCPURecoveryBoundary(t *testing.T) {
	tests := []struct {
		name      string
		after     float64
		recovered bool
	}{
		{name: "within band", after: 24.9, recovered: true},
		{name: "outside band", after: 25.1, recovered: false},
		{name: "exactly on band edge", after: 25.0, recovered: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Compare(cpuSnapshot(20), nil, cpuSnapshot(tt.after))
			require.NotNil(t, analysis)
			require.NotNil(t, analysis.CPU)
			assert.Equal(t, tt.recovered, analysis.CPU.Recovered)
		})
	}
}

func TestCompareCPUPeak(t *testing.T) {
	during := []Snapshot{
		cpuSnapshot(40),
		cpuSnapshot(85),
		{Error: "backend down"}, // excluded from the peak pool
		cpuSnapshot(60),
	}

	analysis := Compare(cpuSnapshot(20), during, cpuSnapshot(22))
	require.NotNil(t, analysis.CPU)
	assert.Equal(t, 85.0, analysis.CPU.PeakPercent)
	assert.Equal(t, 65.0, analysis.CPU.ChangeDuring)
	assert.True(t, analysis.CPU.Recovered)
}

func TestCompareMemoryRecoveryBoundary(t *testing.T) {
	tests := []struct {
		name      string
		before    uint64
		after     uint64
		recovered bool
	}{
		{name: "within relative band", before: 1000, after: 1099, recovered: true},
		{name: "outside relative band", before: 1000, after: 1101, recovered: false},
		{name: "zero baseline requires exact zero", before: 0, after: 0, recovered: true},
		{name: "zero baseline rejects nonzero", before: 0, after: 1, recovered: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Compare(memSnapshot(tt.before), nil, memSnapshot(tt.after))
			require.NotNil(t, analysis)
			require.NotNil(t, analysis.Memory)
			assert.Equal(t, tt.recovered, analysis.Memory.Recovered)
		})
	}
}

func TestCompareDiskPeakFallback(t *testing.T) {
	before := Snapshot{Disk: &Disk{ReadBytes: 100, WriteBytes: 50}}
	after := Snapshot{Disk: &Disk{ReadBytes: 120, WriteBytes: 70}}

	analysis := Compare(before, nil, after)
	require.NotNil(t, analysis)
	require.NotNil(t, analysis.Disk)

	assert.Equal(t, uint64(100), analysis.Disk.PeakReadBytes,
		"empty during-series falls back to the before value")
	assert.Equal(t, int64(0), analysis.Disk.ReadIncrease)
	assert.Equal(t, uint64(150), analysis.Disk.PeakTotalBytes)
	assert.Equal(t, int64(0), analysis.Disk.TotalIncrease)
}

func TestCompareDiskPeakFromSeries(t *testing.T) {
	before := Snapshot{Disk: &Disk{ReadBytes: 100}}
	during := []Snapshot{
		{Disk: &Disk{ReadBytes: 500}},
		{Disk: &Disk{ReadBytes: 900}},
	}
	after := Snapshot{Disk: &Disk{ReadBytes: 950}}

	analysis := Compare(before, during, after)
	require.NotNil(t, analysis.Disk)
	assert.Equal(t, uint64(900), analysis.Disk.PeakReadBytes)
	assert.Equal(t, int64(800), analysis.Disk.ReadIncrease)
}

func TestCompareStatus(t *testing.T) {
	before := Snapshot{ClientStatus: "running"}
	stable := Snapshot{ClientStatus: "running"}
	unstable := Snapshot{ClientStatus: "failed"}

	analysis := Compare(before, nil, stable)
	require.NotNil(t, analysis.Status)
	assert.True(t, analysis.Status.Stable)

	analysis = Compare(before, nil, unstable)
	require.NotNil(t, analysis.Status)
	assert.False(t, analysis.Status.Stable)
}

func TestCompareFamilyPresence(t *testing.T) {
	// CPU only in before, memory only in after: neither family qualifies.
	before := Snapshot{CPU: &CPU{Percent: 10}, ClientStatus: "running"}
	after := Snapshot{Memory: &Memory{Usage: 100}, ClientStatus: "running"}

	analysis := Compare(before, nil, after)
	require.NotNil(t, analysis)
	assert.Nil(t, analysis.CPU)
	assert.Nil(t, analysis.Memory)
	assert.Nil(t, analysis.Disk)
	assert.NotNil(t, analysis.Status)
}

func TestCompareFailedEndpoints(t *testing.T) {
	good := cpuSnapshot(10)
	bad := ErrorSnapshot("before", "web", errors.New("down"))

	assert.Nil(t, Compare(bad, nil, good))
	assert.Nil(t, Compare(good, nil, bad))
}

func TestCompareIdempotence(t *testing.T) {
	before := Snapshot{
		CPU:          &CPU{Percent: 20},
		Memory:       &Memory{Usage: 1000},
		Disk:         &Disk{ReadBytes: 100, WriteBytes: 200},
		ClientStatus: "running",
	}
	during := []Snapshot{
		{CPU: &CPU{Percent: 75}, Memory: &Memory{Usage: 4000}, Disk: &Disk{ReadBytes: 300}},
		{Error: "flaky"},
	}
	after := Snapshot{
		CPU:          &CPU{Percent: 21},
		Memory:       &Memory{Usage: 1050},
		Disk:         &Disk{ReadBytes: 400, WriteBytes: 250},
		ClientStatus: "running",
	}

	first := Compare(before, during, after)
	second := Compare(before, during, after)
	assert.Equal(t, first, second)
}
