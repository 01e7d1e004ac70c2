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

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/scheduler"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// Collector pulls one point-in-time snapshot for a target. Collect is a
// total function: a backend failure is embedded in the returned snapshot's
// Error field, never returned as a Go error, so callers cannot forget the
// degradation contract.
type Collector interface {
	Collect(ctx context.Context, kind target.Kind, id, label string) Snapshot
}

// NodeBackend reads node-level gauges from a time-series backend. Optional:
// when absent, node snapshots fall back to aggregating the node's
// allocations through the scheduler.
type NodeBackend interface {
	NodeUsage(ctx context.Context, node string) (*NodeUsage, error)
}

// NodeUsage is one node-level reading from a NodeBackend.
type NodeUsage struct {
	CPUPercent      float64
	MemoryUsedBytes uint64
	Disk            Disk
}

// BackendCollector dispatches on target kind: service targets aggregate the
// job's running allocations via the scheduler, node targets prefer the
// time-series backend and fall back to allocation aggregation.
type BackendCollector struct {
	Scheduler scheduler.Client
	Nodes     NodeBackend

	// Timeout bounds one Collect call end to end.
	Timeout time.Duration
}

// NewBackendCollector creates a collector with the default timeout. nodes
// may be nil.
func NewBackendCollector(client scheduler.Client, nodes NodeBackend) *BackendCollector {
	return &BackendCollector{
		Scheduler: client,
		Nodes:     nodes,
		Timeout:   defaults.CollectorTimeout,
	}
}

// Collect implements Collector.
func (c *BackendCollector) Collect(ctx context.Context, kind target.Kind, id, label string) Snapshot {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	var (
		snap Snapshot
		err  error
	)
	switch kind {
	case target.KindService:
		snap, err = c.serviceSnapshot(ctx, id, label)
	case target.KindNode:
		snap, err = c.nodeSnapshot(ctx, id, label)
	default:
		err = fmt.Errorf("no collector backend for %q targets", kind)
	}

	if err != nil {
		slog.Warn("snapshot collection failed",
			"kind", kind, "subject", id, "label", label, "error", err)
		snapshotCounter(string(kind), outcomeError)
		return ErrorSnapshot(label, id, err)
	}

	snapshotCounter(string(kind), outcomeOK)
	return snap
}

// serviceSnapshot aggregates resource usage across the job's running
// allocations. Individual allocation stat failures are skipped; the snapshot
// fails only when no allocation could be read.
func (c *BackendCollector) serviceSnapshot(ctx context.Context, jobID, label string) (Snapshot, error) {
	allocs, err := c.Scheduler.JobAllocations(ctx, jobID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing allocations for %s: %w", jobID, err)
	}

	snap := Snapshot{
		Timestamp:    time.Now().UTC(),
		Label:        label,
		SubjectID:    jobID,
		ClientStatus: representativeStatus(allocs),
	}

	var (
		cpu  CPU
		mem  Memory
		read int
	)
	for _, alloc := range allocs {
		if !alloc.Running() {
			continue
		}
		usage, uerr := c.Scheduler.AllocationUsage(ctx, alloc.ID)
		if uerr != nil {
			slog.Debug("allocation stats unavailable, skipping",
				"allocation", alloc.ID, "error", uerr)
			continue
		}
		cpu.Percent += usage.CPU.Percent
		cpu.SystemTicks += usage.CPU.SystemMode
		cpu.UserTicks += usage.CPU.UserMode
		cpu.ThrottledPeriods += usage.CPU.ThrottledPeriods
		mem.RSS += usage.Memory.RSS
		mem.Cache += usage.Memory.Cache
		mem.Usage += memoryUsage(usage.Memory)
		mem.MaxUsage += usage.Memory.MaxUsage
		snap.Tasks += len(usage.Tasks)
		read++
	}
	if read == 0 {
		return Snapshot{}, fmt.Errorf("no readable running allocation for %s", jobID)
	}

	snap.CPU = &cpu
	snap.Memory = &mem
	return snap, nil
}

// nodeSnapshot reads node gauges from the time-series backend when one is
// configured, otherwise aggregates the allocations placed on the node.
func (c *BackendCollector) nodeSnapshot(ctx context.Context, nodeID, label string) (Snapshot, error) {
	node, err := c.Scheduler.NodeInfo(ctx, nodeID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("node lookup for %s: %w", nodeID, err)
	}

	snap := Snapshot{
		Timestamp:    time.Now().UTC(),
		Label:        label,
		SubjectID:    nodeID,
		SubjectName:  node.Name,
		ClientStatus: node.Status,
	}

	if c.Nodes != nil {
		usage, uerr := c.Nodes.NodeUsage(ctx, node.Name)
		if uerr != nil {
			return Snapshot{}, fmt.Errorf("node usage for %s: %w", node.Name, uerr)
		}
		disk := usage.Disk
		snap.CPU = &CPU{Percent: usage.CPUPercent}
		snap.Memory = &Memory{Usage: usage.MemoryUsedBytes, RSS: usage.MemoryUsedBytes}
		snap.Disk = &disk
		return snap, nil
	}

	allocs, err := c.Scheduler.NodeAllocations(ctx, nodeID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("listing allocations on %s: %w", nodeID, err)
	}

	var (
		cpu  CPU
		mem  Memory
		read int
	)
	for _, alloc := range allocs {
		if !alloc.Running() {
			continue
		}
		usage, uerr := c.Scheduler.AllocationUsage(ctx, alloc.ID)
		if uerr != nil {
			continue
		}
		cpu.Percent += usage.CPU.Percent
		mem.RSS += usage.Memory.RSS
		mem.Usage += memoryUsage(usage.Memory)
		snap.Tasks += len(usage.Tasks)
		read++
	}
	if read == 0 {
		return Snapshot{}, fmt.Errorf("no readable allocation on node %s", nodeID)
	}

	snap.CPU = &cpu
	snap.Memory = &mem
	return snap, nil
}

func (c *BackendCollector) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaults.CollectorTimeout
}

// memoryUsage prefers the cgroup usage counter, falling back to RSS on
// drivers that do not report it.
func memoryUsage(m scheduler.MemoryStats) uint64 {
	if m.Usage > 0 {
		return m.Usage
	}
	return m.RSS
}

// representativeStatus mirrors allocation correlation: running wins, then
// the first reported status, then unknown.
func representativeStatus(allocs []scheduler.AllocationRecord) string {
	for _, alloc := range allocs {
		if alloc.Running() {
			return scheduler.ClientStatusRunning
		}
	}
	if len(allocs) > 0 && allocs[0].ClientStatus != "" {
		return allocs[0].ClientStatus
	}
	return "unknown"
}
