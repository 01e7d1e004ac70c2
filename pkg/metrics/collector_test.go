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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/scheduler"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

type statsScheduler struct {
	allocs    map[string][]scheduler.AllocationRecord // by job id
	nodeAlloc map[string][]scheduler.AllocationRecord // by node id
	usage     map[string]*scheduler.AllocationUsage
	nodes     map[string]*scheduler.NodeRecord
}

func (s *statsScheduler) ListJobs(context.Context) ([]scheduler.JobRecord, error) { return nil, nil }
func (s *statsScheduler) ListAllocations(context.Context) ([]scheduler.AllocationRecord, error) {
	return nil, nil
}
func (s *statsScheduler) ListNodes(context.Context) ([]scheduler.NodeRecord, error) {
	return nil, nil
}

func (s *statsScheduler) NodeInfo(_ context.Context, id string) (*scheduler.NodeRecord, error) {
	if n, ok := s.nodes[id]; ok {
		return n, nil
	}
	return nil, errors.New("node not found")
}

func (s *statsScheduler) JobInfo(context.Context, string) (*scheduler.JobDetail, error) {
	return nil, errors.New("not implemented")
}

func (s *statsScheduler) JobAllocations(_ context.Context, jobID string) ([]scheduler.AllocationRecord, error) {
	return s.allocs[jobID], nil
}

func (s *statsScheduler) NodeAllocations(_ context.Context, nodeID string) ([]scheduler.AllocationRecord, error) {
	return s.nodeAlloc[nodeID], nil
}

func (s *statsScheduler) AllocationUsage(_ context.Context, id string) (*scheduler.AllocationUsage, error) {
	if u, ok := s.usage[id]; ok {
		return u, nil
	}
	return nil, errors.New("stats unavailable")
}

func (s *statsScheduler) DrainNode(context.Context, string, time.Duration) error { return nil }
func (s *statsScheduler) RecoverNode(context.Context, string) error              { return nil }
func (s *statsScheduler) SubmitJob(context.Context, []byte) (string, error)      { return "", nil }

type fakeNodeBackend struct {
	usage *NodeUsage
	err   error
}

func (f *fakeNodeBackend) NodeUsage(context.Context, string) (*NodeUsage, error) {
	return f.usage, f.err
}

func TestServiceSnapshotAggregatesRunningAllocations(t *testing.T) {
	sched := &statsScheduler{
		allocs: map[string][]scheduler.AllocationRecord{
			"web": {
				{ID: "a1", JobID: "web", ClientStatus: "running"},
				{ID: "a2", JobID: "web", ClientStatus: "running"},
				{ID: "a3", JobID: "web", ClientStatus: "complete"}, // not sampled
			},
		},
		usage: map[string]*scheduler.AllocationUsage{
			"a1": {
				CPU:    scheduler.CPUStats{Percent: 10},
				Memory: scheduler.MemoryStats{RSS: 100, Usage: 150},
				Tasks:  map[string]scheduler.TaskUsage{"t1": {}},
			},
			"a2": {
				CPU:    scheduler.CPUStats{Percent: 15},
				Memory: scheduler.MemoryStats{RSS: 200, Usage: 250},
				Tasks:  map[string]scheduler.TaskUsage{"t1": {}, "t2": {}},
			},
		},
	}

	snap := NewBackendCollector(sched, nil).Collect(context.Background(), target.KindService, "web", "before")
	require.False(t, snap.Failed(), snap.Error)
	require.NotNil(t, snap.CPU)
	require.NotNil(t, snap.Memory)
	assert.Equal(t, 25.0, snap.CPU.Percent)
	assert.Equal(t, uint64(400), snap.Memory.Usage)
	assert.Equal(t, uint64(300), snap.Memory.RSS)
	assert.Equal(t, 3, snap.Tasks)
	assert.Equal(t, "running", snap.ClientStatus)
	assert.Equal(t, "before", snap.Label)
}

func TestServiceSnapshotToleratesPartialStatsFailure(t *testing.T) {
	sched := &statsScheduler{
		allocs: map[string][]scheduler.AllocationRecord{
			"web": {
				{ID: "a1", JobID: "web", ClientStatus: "running"},
				{ID: "gone", JobID: "web", ClientStatus: "running"}, // stats lookup fails
			},
		},
		usage: map[string]*scheduler.AllocationUsage{
			"a1": {CPU: scheduler.CPUStats{Percent: 5}, Memory: scheduler.MemoryStats{Usage: 10}},
		},
	}

	snap := NewBackendCollector(sched, nil).Collect(context.Background(), target.KindService, "web", "before")
	require.False(t, snap.Failed())
	assert.Equal(t, 5.0, snap.CPU.Percent)
}

func TestServiceSnapshotErrorWhenNothingReadable(t *testing.T) {
	sched := &statsScheduler{
		allocs: map[string][]scheduler.AllocationRecord{
			"web": {{ID: "a1", JobID: "web", ClientStatus: "pending"}},
		},
	}

	snap := NewBackendCollector(sched, nil).Collect(context.Background(), target.KindService, "web", "before")
	assert.True(t, snap.Failed())
	assert.Equal(t, "web", snap.SubjectID)
	assert.Equal(t, "before", snap.Label)
}

func TestNodeSnapshotPrefersTimeSeriesBackend(t *testing.T) {
	sched := &statsScheduler{
		nodes: map[string]*scheduler.NodeRecord{
			"node-1": {ID: "node-1", Name: "client-01", Status: "ready"},
		},
	}
	backend := &fakeNodeBackend{
		usage: &NodeUsage{
			CPUPercent:      42.5,
			MemoryUsedBytes: 1 << 30,
			Disk:            Disk{ReadBytes: 100, WriteBytes: 200},
		},
	}

	snap := NewBackendCollector(sched, backend).Collect(context.Background(), target.KindNode, "node-1", "after")
	require.False(t, snap.Failed(), snap.Error)
	assert.Equal(t, 42.5, snap.CPU.Percent)
	assert.Equal(t, uint64(1<<30), snap.Memory.Usage)
	require.NotNil(t, snap.Disk)
	assert.Equal(t, uint64(300), snap.Disk.TotalBytes())
	assert.Equal(t, "client-01", snap.SubjectName)
	assert.Equal(t, "ready", snap.ClientStatus)
}

func TestNodeSnapshotFallsBackToAllocationAggregation(t *testing.T) {
	sched := &statsScheduler{
		nodes: map[string]*scheduler.NodeRecord{
			"node-1": {ID: "node-1", Name: "client-01", Status: "ready"},
		},
		nodeAlloc: map[string][]scheduler.AllocationRecord{
			"node-1": {{ID: "a1", JobID: "web", NodeID: "node-1", ClientStatus: "running"}},
		},
		usage: map[string]*scheduler.AllocationUsage{
			"a1": {CPU: scheduler.CPUStats{Percent: 12}, Memory: scheduler.MemoryStats{Usage: 512}},
		},
	}

	snap := NewBackendCollector(sched, nil).Collect(context.Background(), target.KindNode, "node-1", "before")
	require.False(t, snap.Failed(), snap.Error)
	assert.Equal(t, 12.0, snap.CPU.Percent)
	assert.Equal(t, uint64(512), snap.Memory.Usage)
	assert.Nil(t, snap.Disk, "no disk counters without a time-series backend")
}

func TestCollectUnsupportedKind(t *testing.T) {
	snap := NewBackendCollector(&statsScheduler{}, nil).Collect(context.Background(), target.KindVM, "vm-1", "before")
	assert.True(t, snap.Failed())
}
