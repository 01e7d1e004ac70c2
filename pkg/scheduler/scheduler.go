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

// Package scheduler defines the workload-scheduler collaborator contract and
// the normalized record types the rest of the system operates on. Concrete
// adapters (see the nomad subpackage) translate their native API types into
// these records so that target resolution, metrics collection, and disruption
// actions never depend on a particular scheduler client library.
package scheduler

import (
	"context"
	"strings"
	"time"
)

// ClientStatusRunning is the allocation client status preferred during
// correlation: of all allocations for one job, only the running one is
// representative.
const ClientStatusRunning = "running"

// JobRecord is one service/job entry from the scheduler job list.
type JobRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`
}

// AllocationRecord is one allocation entry from the scheduler.
type AllocationRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	JobID        string `json:"job_id"`
	NodeID       string `json:"node_id"`
	ClientStatus string `json:"client_status"`
	CreateTime   int64  `json:"create_time,omitempty"`
}

// Running reports whether the allocation's client status is running.
func (a AllocationRecord) Running() bool {
	return strings.EqualFold(a.ClientStatus, ClientStatusRunning)
}

// NodeRecord is one client node entry from the scheduler.
type NodeRecord struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Status                string `json:"status"`
	Address               string `json:"address,omitempty"`
	Drain                 bool   `json:"drain"`
	SchedulingEligibility string `json:"scheduling_eligibility,omitempty"`
}

// PortMapping is a single exposed port from a job's network stanza.
type PortMapping struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ServiceSpec is a service registration inside a job, with any HTTP health
// check path it declares.
type ServiceSpec struct {
	Name       string `json:"name"`
	Port       int    `json:"port,omitempty"`
	HealthPath string `json:"health_path,omitempty"`
}

// JobDetail carries the network/service discovery attributes of one job,
// used for best-effort target enrichment.
type JobDetail struct {
	ID       string        `json:"id"`
	Ports    []PortMapping `json:"ports,omitempty"`
	Services []ServiceSpec `json:"services,omitempty"`
}

// CPUStats is the CPU portion of an allocation resource reading.
type CPUStats struct {
	Percent          float64 `json:"percent"`
	SystemMode       float64 `json:"system_mode"`
	UserMode         float64 `json:"user_mode"`
	TotalTicks       float64 `json:"total_ticks"`
	ThrottledPeriods uint64  `json:"throttled_periods"`
	ThrottledTime    uint64  `json:"throttled_time"`
}

// MemoryStats is the memory portion of an allocation resource reading.
type MemoryStats struct {
	RSS         uint64 `json:"rss"`
	Cache       uint64 `json:"cache"`
	Swap        uint64 `json:"swap"`
	Usage       uint64 `json:"usage"`
	MaxUsage    uint64 `json:"max_usage"`
	KernelUsage uint64 `json:"kernel_usage"`
}

// TaskUsage is the per-task breakdown inside an allocation reading.
type TaskUsage struct {
	CPUPercent  float64 `json:"cpu_percent"`
	MemoryRSS   uint64  `json:"memory_rss"`
	MemoryUsage uint64  `json:"memory_usage"`
}

// AllocationUsage is one point-in-time resource reading for an allocation.
type AllocationUsage struct {
	AllocationID  string               `json:"allocation_id"`
	Name          string               `json:"name,omitempty"`
	JobID         string               `json:"job_id,omitempty"`
	TaskGroup     string               `json:"task_group,omitempty"`
	ClientStatus  string               `json:"client_status,omitempty"`
	DesiredStatus string               `json:"desired_status,omitempty"`
	CPU           CPUStats             `json:"cpu"`
	Memory        MemoryStats          `json:"memory"`
	Tasks         map[string]TaskUsage `json:"tasks,omitempty"`
}

// Client is the scheduler collaborator consumed by the core. All methods
// take a context and return explicit errors; callers that tolerate partial
// failure (the resolver, the collector) degrade rather than abort.
type Client interface {
	// ListJobs returns the raw service/job list.
	ListJobs(ctx context.Context) ([]JobRecord, error)

	// ListAllocations returns all allocations across jobs.
	ListAllocations(ctx context.Context) ([]AllocationRecord, error)

	// ListNodes returns all client nodes.
	ListNodes(ctx context.Context) ([]NodeRecord, error)

	// NodeInfo returns detail for one node, including its address.
	NodeInfo(ctx context.Context, nodeID string) (*NodeRecord, error)

	// JobInfo returns the network/service discovery detail for one job.
	JobInfo(ctx context.Context, jobID string) (*JobDetail, error)

	// JobAllocations returns the allocations belonging to one job.
	JobAllocations(ctx context.Context, jobID string) ([]AllocationRecord, error)

	// NodeAllocations returns the allocations placed on one node.
	NodeAllocations(ctx context.Context, nodeID string) ([]AllocationRecord, error)

	// AllocationUsage returns a point-in-time resource reading for one
	// allocation.
	AllocationUsage(ctx context.Context, allocID string) (*AllocationUsage, error)

	// DrainNode marks a node ineligible and migrates its allocations,
	// bounded by the given deadline.
	DrainNode(ctx context.Context, nodeID string, deadline time.Duration) error

	// RecoverNode disables drain and restores scheduling eligibility.
	RecoverNode(ctx context.Context, nodeID string) error

	// SubmitJob registers a job spec (JSON encoded) and returns the
	// evaluation id.
	SubmitJob(ctx context.Context, spec []byte) (string, error)
}
