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

package target

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/scheduler"
)

// Resolver merges raw scheduler records into a normalized target catalog.
// Individual fetch or enrichment failures degrade the catalog instead of
// failing it; only a total inability to reach the scheduler is an error.
type Resolver struct {
	Scheduler scheduler.Client

	// HealthOverrides maps a service name (lowercased) to its health
	// check path, taking precedence over anything derived from the job
	// spec. DefaultHealthPath applies when the job spec leaves the
	// builtin path untouched.
	HealthOverrides   map[string]string
	DefaultHealthPath string

	// DefaultPort is assumed when a job exposes no network information.
	DefaultPort int
}

// NewResolver creates a resolver with the default enrichment tables.
func NewResolver(client scheduler.Client) *Resolver {
	return &Resolver{
		Scheduler:         client,
		HealthOverrides:   map[string]string{"cadvisor": "/healthz"},
		DefaultHealthPath: defaults.HealthPathDefault,
		DefaultPort:       defaults.ServicePort,
	}
}

// Resolve produces the current target catalog: service targets correlated
// with their representative allocation, followed by node targets. Ordering
// carries no meaning.
func (r *Resolver) Resolve(ctx context.Context) ([]Target, error) {
	var (
		jobs   []scheduler.JobRecord
		allocs []scheduler.AllocationRecord
		nodes  []scheduler.NodeRecord

		jobsErr, allocsErr, nodesErr error
	)

	// The three list calls are independent; each failure falls back to an
	// empty list so the remaining target kinds can still be produced.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		jobs, jobsErr = r.Scheduler.ListJobs(gctx)
		return nil
	})
	g.Go(func() error {
		allocs, allocsErr = r.Scheduler.ListAllocations(gctx)
		return nil
	})
	g.Go(func() error {
		nodes, nodesErr = r.Scheduler.ListNodes(gctx)
		return nil
	})
	_ = g.Wait()

	if jobsErr != nil {
		slog.Warn("job listing failed, continuing without service targets", "error", jobsErr)
		jobs = nil
	}
	if allocsErr != nil {
		slog.Warn("allocation listing failed, correlation degraded", "error", allocsErr)
		allocs = nil
	}
	if nodesErr != nil {
		slog.Warn("node listing failed, continuing without node targets", "error", nodesErr)
		nodes = nil
	}
	if jobsErr != nil && allocsErr != nil && nodesErr != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "scheduler unreachable", jobsErr)
	}

	index := allocationIndex(allocs)

	targets := make([]Target, 0, len(jobs)+len(nodes))
	for _, job := range jobs {
		targets = append(targets, r.serviceTarget(ctx, job, index))
	}
	for _, node := range nodes {
		targets = append(targets, NewNodeTarget(node.ID, NodeAttributes{
			Name:        node.Name,
			Status:      node.Status,
			Drain:       node.Drain,
			Eligibility: node.SchedulingEligibility,
		}))
	}

	slog.Debug("resolved target catalog",
		"services", len(jobs),
		"nodes", len(nodes),
		"allocations", len(allocs))

	return targets, nil
}

// allocationIndex keys allocations by job id. A job can have many
// allocations (restarts, rolling updates); a running allocation always wins
// over a non-running placeholder, and a non-running allocation never
// replaces an existing running entry.
func allocationIndex(allocs []scheduler.AllocationRecord) map[string]scheduler.AllocationRecord {
	index := make(map[string]scheduler.AllocationRecord, len(allocs))
	for _, alloc := range allocs {
		if alloc.JobID == "" {
			continue
		}
		current, exists := index[alloc.JobID]
		if !exists {
			index[alloc.JobID] = alloc
			continue
		}
		if !current.Running() && alloc.Running() {
			index[alloc.JobID] = alloc
		}
	}
	return index
}

// serviceTarget correlates one job with its representative allocation and
// runs the best-effort enrichment chain. Enrichment failures produce
// placeholder attributes, never an error.
func (r *Resolver) serviceTarget(ctx context.Context, job scheduler.JobRecord, index map[string]scheduler.AllocationRecord) Target {
	id := job.ID
	if id == "" {
		id = job.Name
	}

	alloc, ok := index[id]
	if !ok {
		alloc = index[job.Name]
	}

	attrs := ServiceAttributes{
		Name:           job.Name,
		Node:           alloc.NodeID,
		Status:         alloc.ClientStatus,
		Allocation:     alloc.ID,
		Port:           r.DefaultPort,
		HealthEndpoint: defaults.HealthPath,
	}
	r.enrich(ctx, job, alloc, &attrs)

	return NewServiceTarget(id, attrs, nil)
}

// enrich fills network discovery attributes from the job spec, the health
// override table, and the node address, in that order of precedence.
func (r *Resolver) enrich(ctx context.Context, job scheduler.JobRecord, alloc scheduler.AllocationRecord, attrs *ServiceAttributes) {
	jobID := job.ID
	if jobID == "" {
		jobID = job.Name
	}

	if detail, err := r.Scheduler.JobInfo(ctx, jobID); err != nil {
		slog.Debug("job detail lookup failed, using placeholder attributes",
			"job", jobID, "error", err)
	} else {
		if len(detail.Ports) > 0 {
			attrs.Port = detail.Ports[0].Value
		}
		for _, svc := range detail.Services {
			if svc.Port > 0 {
				attrs.Port = svc.Port
			}
			if svc.HealthPath != "" {
				attrs.HealthEndpoint = svc.HealthPath
			}
		}
	}

	// Override table: a service-specific entry beats everything; the
	// generic default only replaces the untouched builtin path.
	if override, ok := r.HealthOverrides[strings.ToLower(job.Name)]; ok {
		attrs.HealthEndpoint = override
	} else if attrs.HealthEndpoint == defaults.HealthPath && r.DefaultHealthPath != "" {
		attrs.HealthEndpoint = r.DefaultHealthPath
	}

	// Node address as last resort for reachability.
	if alloc.NodeID != "" {
		if node, err := r.Scheduler.NodeInfo(ctx, alloc.NodeID); err != nil {
			slog.Debug("node address lookup failed", "node", alloc.NodeID, "error", err)
		} else if node.Address != "" && node.Address != "unknown" {
			attrs.Address = node.Address
		}
	}
}
