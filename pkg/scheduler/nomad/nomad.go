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

// Package nomad adapts the HashiCorp Nomad HTTP API to the scheduler.Client
// contract. All calls pass through a shared rate limiter so that experiment
// sampling loops cannot overwhelm the cluster's API servers.
package nomad

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/nomad/api"
	"golang.org/x/time/rate"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/scheduler"
)

// Config holds the Nomad connection settings. Empty fields fall back to the
// standard NOMAD_* environment variables honored by the api client.
type Config struct {
	Address   string
	Region    string
	Token     string
	Namespace string

	// RateLimit/RateBurst bound API calls per second. Zero values take
	// the package defaults.
	RateLimit int
	RateBurst int
}

// Client implements scheduler.Client against a Nomad cluster.
type Client struct {
	api     *api.Client
	limiter *rate.Limiter
}

var _ scheduler.Client = (*Client)(nil)

// New creates a Nomad-backed scheduler client.
func New(cfg Config) (*Client, error) {
	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}
	if cfg.Region != "" {
		apiCfg.Region = cfg.Region
	}
	if cfg.Token != "" {
		apiCfg.SecretID = cfg.Token
	}
	if cfg.Namespace != "" {
		apiCfg.Namespace = cfg.Namespace
	}

	c, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to create nomad client", err)
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaults.SchedulerRateLimit
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = defaults.SchedulerRateBurst
	}

	return &Client{
		api:     c,
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
	}, nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "rate limiter wait canceled", err)
	}
	return nil
}

// ListJobs returns the cluster's job list.
func (c *Client) ListJobs(ctx context.Context) ([]scheduler.JobRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	stubs, _, err := c.api.Jobs().List((&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to list jobs", err)
	}

	jobs := make([]scheduler.JobRecord, 0, len(stubs))
	for _, s := range stubs {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		jobs = append(jobs, scheduler.JobRecord{
			ID:     s.ID,
			Name:   name,
			Type:   s.Type,
			Status: s.Status,
		})
	}
	return jobs, nil
}

// ListAllocations returns all allocations across jobs.
func (c *Client) ListAllocations(ctx context.Context) ([]scheduler.AllocationRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	stubs, _, err := c.api.Allocations().List((&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to list allocations", err)
	}

	allocs := make([]scheduler.AllocationRecord, 0, len(stubs))
	for _, s := range stubs {
		allocs = append(allocs, allocFromStub(s))
	}
	return allocs, nil
}

func allocFromStub(s *api.AllocationListStub) scheduler.AllocationRecord {
	name := s.Name
	if name == "" {
		name = s.JobID
	}
	return scheduler.AllocationRecord{
		ID:           s.ID,
		Name:         name,
		JobID:        s.JobID,
		NodeID:       s.NodeID,
		ClientStatus: s.ClientStatus,
		CreateTime:   s.CreateTime,
	}
}

// ListNodes returns all client nodes.
func (c *Client) ListNodes(ctx context.Context) ([]scheduler.NodeRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	stubs, _, err := c.api.Nodes().List((&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to list nodes", err)
	}

	nodes := make([]scheduler.NodeRecord, 0, len(stubs))
	for _, s := range stubs {
		nodes = append(nodes, scheduler.NodeRecord{
			ID:                    s.ID,
			Name:                  s.Name,
			Status:                s.Status,
			Address:               s.Address,
			Drain:                 s.Drain,
			SchedulingEligibility: s.SchedulingEligibility,
		})
	}
	return nodes, nil
}

// NodeInfo returns detail for one node. The address is resolved from the
// node attributes first, then the HTTP address, then the node name.
func (c *Client) NodeInfo(ctx context.Context, nodeID string) (*scheduler.NodeRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	node, _, err := c.api.Nodes().Info(nodeID, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to read node", err,
			map[string]any{"node": nodeID})
	}

	return &scheduler.NodeRecord{
		ID:                    node.ID,
		Name:                  node.Name,
		Status:                node.Status,
		Address:               nodeAddress(node),
		Drain:                 node.Drain,
		SchedulingEligibility: node.SchedulingEligibility,
	}, nil
}

func nodeAddress(node *api.Node) string {
	if addr := node.Attributes["unique.network.ip-address"]; addr != "" {
		return addr
	}
	if node.HTTPAddr != "" {
		if host, _, err := net.SplitHostPort(node.HTTPAddr); err == nil {
			return host
		}
		return node.HTTPAddr
	}
	return node.Name
}

// JobInfo extracts the network and service discovery detail for one job.
func (c *Client) JobInfo(ctx context.Context, jobID string) (*scheduler.JobDetail, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	job, _, err := c.api.Jobs().Info(jobID, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to read job", err,
			map[string]any{"job": jobID})
	}

	detail := &scheduler.JobDetail{ID: jobID}
	for _, tg := range job.TaskGroups {
		for _, network := range tg.Networks {
			for _, p := range network.ReservedPorts {
				detail.Ports = append(detail.Ports, scheduler.PortMapping{Label: p.Label, Value: p.Value})
			}
			for _, p := range network.DynamicPorts {
				detail.Ports = append(detail.Ports, scheduler.PortMapping{Label: p.Label, Value: p.Value})
			}
		}
		for _, svc := range tg.Services {
			spec := scheduler.ServiceSpec{
				Name: svc.Name,
				Port: resolvePort(svc.PortLabel, detail.Ports),
			}
			for _, check := range svc.Checks {
				if strings.EqualFold(check.Type, "http") && check.Path != "" {
					spec.HealthPath = check.Path
					break
				}
			}
			detail.Services = append(detail.Services, spec)
		}
	}
	return detail, nil
}

// resolvePort maps a service port label to a concrete port number. Numeric
// labels are used verbatim.
func resolvePort(label string, ports []scheduler.PortMapping) int {
	if label == "" {
		return 0
	}
	if v, err := strconv.Atoi(label); err == nil {
		return v
	}
	for _, p := range ports {
		if p.Label == label {
			return p.Value
		}
	}
	return 0
}

// JobAllocations returns the allocations belonging to one job.
func (c *Client) JobAllocations(ctx context.Context, jobID string) ([]scheduler.AllocationRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	stubs, _, err := c.api.Jobs().Allocations(jobID, false, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to list job allocations", err,
			map[string]any{"job": jobID})
	}

	allocs := make([]scheduler.AllocationRecord, 0, len(stubs))
	for _, s := range stubs {
		allocs = append(allocs, allocFromStub(s))
	}
	return allocs, nil
}

// NodeAllocations returns the allocations currently placed on one node.
func (c *Client) NodeAllocations(ctx context.Context, nodeID string) ([]scheduler.AllocationRecord, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	allocs, _, err := c.api.Nodes().Allocations(nodeID, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to list node allocations", err,
			map[string]any{"node": nodeID})
	}

	records := make([]scheduler.AllocationRecord, 0, len(allocs))
	for _, a := range allocs {
		records = append(records, scheduler.AllocationRecord{
			ID:           a.ID,
			Name:         a.Name,
			JobID:        a.JobID,
			NodeID:       a.NodeID,
			ClientStatus: a.ClientStatus,
		})
	}
	return records, nil
}

// AllocationUsage returns a point-in-time resource reading for one allocation.
func (c *Client) AllocationUsage(ctx context.Context, allocID string) (*scheduler.AllocationUsage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	q := (&api.QueryOptions{}).WithContext(ctx)

	alloc, _, err := c.api.Allocations().Info(allocID, q)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to read allocation", err,
			map[string]any{"allocation": allocID})
	}

	stats, err := c.api.Allocations().Stats(alloc, q)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to read allocation stats", err,
			map[string]any{"allocation": allocID})
	}

	usage := &scheduler.AllocationUsage{
		AllocationID:  allocID,
		Name:          alloc.Name,
		JobID:         alloc.JobID,
		TaskGroup:     alloc.TaskGroup,
		ClientStatus:  alloc.ClientStatus,
		DesiredStatus: alloc.DesiredStatus,
	}

	if ru := stats.ResourceUsage; ru != nil {
		if ru.CpuStats != nil {
			usage.CPU = scheduler.CPUStats{
				Percent:          ru.CpuStats.Percent,
				SystemMode:       ru.CpuStats.SystemMode,
				UserMode:         ru.CpuStats.UserMode,
				TotalTicks:       ru.CpuStats.TotalTicks,
				ThrottledPeriods: ru.CpuStats.ThrottledPeriods,
				ThrottledTime:    ru.CpuStats.ThrottledTime,
			}
		}
		if ru.MemoryStats != nil {
			usage.Memory = scheduler.MemoryStats{
				RSS:         ru.MemoryStats.RSS,
				Cache:       ru.MemoryStats.Cache,
				Swap:        ru.MemoryStats.Swap,
				Usage:       ru.MemoryStats.Usage,
				MaxUsage:    ru.MemoryStats.MaxUsage,
				KernelUsage: ru.MemoryStats.KernelUsage,
			}
		}
	}

	if len(stats.Tasks) > 0 {
		usage.Tasks = make(map[string]scheduler.TaskUsage, len(stats.Tasks))
		for name, task := range stats.Tasks {
			if task == nil || task.ResourceUsage == nil {
				continue
			}
			var tu scheduler.TaskUsage
			if cs := task.ResourceUsage.CpuStats; cs != nil {
				tu.CPUPercent = cs.Percent
			}
			if ms := task.ResourceUsage.MemoryStats; ms != nil {
				tu.MemoryRSS = ms.RSS
				tu.MemoryUsage = ms.Usage
			}
			usage.Tasks[name] = tu
		}
	}

	return usage, nil
}

// DrainNode marks a node ineligible and migrates its allocations within the
// given deadline.
func (c *Client) DrainNode(ctx context.Context, nodeID string, deadline time.Duration) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if deadline <= 0 {
		deadline = defaults.DrainDeadline
	}
	spec := &api.DrainSpec{
		Deadline:         deadline,
		IgnoreSystemJobs: false,
	}
	_, err := c.api.Nodes().UpdateDrain(nodeID, spec, false, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to drain node", err,
			map[string]any{"node": nodeID, "deadline": deadline.String()})
	}
	return nil
}

// RecoverNode disables drain and restores scheduling eligibility. Both steps
// must succeed for the node to accept work again.
func (c *Client) RecoverNode(ctx context.Context, nodeID string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	w := (&api.WriteOptions{}).WithContext(ctx)

	if _, err := c.api.Nodes().UpdateDrain(nodeID, nil, false, w); err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to disable drain", err,
			map[string]any{"node": nodeID})
	}
	if _, err := c.api.Nodes().ToggleEligibility(nodeID, true, w); err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to restore eligibility", err,
			map[string]any{"node": nodeID})
	}
	return nil
}

// SubmitJob registers a JSON-encoded job spec and returns the evaluation id.
func (c *Client) SubmitJob(ctx context.Context, spec []byte) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	var job api.Job
	if err := json.Unmarshal(spec, &job); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidRequest, "invalid job spec", err)
	}
	if job.ID == nil || *job.ID == "" {
		return "", errors.New(errors.ErrCodeInvalidRequest, "job spec missing ID")
	}

	resp, _, err := c.api.Jobs().Register(&job, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to register job", err,
			map[string]any{"job": *job.ID})
	}
	if resp.EvalID == "" {
		return "", fmt.Errorf("job %s registered without evaluation", *job.ID)
	}
	return resp.EvalID, nil
}
