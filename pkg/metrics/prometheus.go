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
	"strings"
	"time"

	promapi "github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
)

// nodeExporterPort is the conventional node_exporter scrape port used to
// derive the instance label from a node name.
const nodeExporterPort = 9100

// PrometheusBackend reads node-level gauges from a Prometheus server
// scraping node_exporter.
type PrometheusBackend struct {
	api     promv1.API
	timeout time.Duration
}

// NewPrometheusBackend creates a backend against the given server address
// (e.g. http://prometheus.service.consul:9090).
func NewPrometheusBackend(address string) (*PrometheusBackend, error) {
	client, err := promapi.NewClient(promapi.Config{Address: address})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid prometheus address", err)
	}
	return &PrometheusBackend{
		api:     promv1.NewAPI(client),
		timeout: defaults.PrometheusTimeout,
	}, nil
}

// NodeUsage implements NodeBackend.
func (p *PrometheusBackend) NodeUsage(ctx context.Context, node string) (*NodeUsage, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	instance, err := p.resolveInstance(ctx, node)
	if err != nil {
		return nil, err
	}

	cpu, err := p.queryScalar(ctx, fmt.Sprintf(
		`100 * (1 - avg(rate(node_cpu_seconds_total{mode="idle",instance=%q}[1m])))`, instance))
	if err != nil {
		return nil, err
	}

	memUsed, err := p.queryScalar(ctx, fmt.Sprintf(
		`node_memory_MemTotal_bytes{instance=%q} - node_memory_MemAvailable_bytes{instance=%q}`,
		instance, instance))
	if err != nil {
		return nil, err
	}

	usage := &NodeUsage{
		CPUPercent:      cpu,
		MemoryUsedBytes: uint64(memUsed),
	}

	// Disk counters are best effort: some exporters scope them out.
	diskQueries := []struct {
		query string
		field *uint64
	}{
		{fmt.Sprintf(`sum(node_disk_read_bytes_total{instance=%q})`, instance), &usage.Disk.ReadBytes},
		{fmt.Sprintf(`sum(node_disk_written_bytes_total{instance=%q})`, instance), &usage.Disk.WriteBytes},
		{fmt.Sprintf(`sum(node_disk_reads_completed_total{instance=%q})`, instance), &usage.Disk.ReadOps},
		{fmt.Sprintf(`sum(node_disk_writes_completed_total{instance=%q})`, instance), &usage.Disk.WriteOps},
	}
	for _, dq := range diskQueries {
		v, qerr := p.queryScalar(ctx, dq.query)
		if qerr != nil {
			slog.Debug("disk counter query failed", "instance", instance, "error", qerr)
			continue
		}
		*dq.field = uint64(v)
	}

	return usage, nil
}

// resolveInstance maps a node name to its node_exporter instance label,
// trying the full name first and falling back to the short hostname when
// the node registered under an FQDN.
func (p *PrometheusBackend) resolveInstance(ctx context.Context, node string) (string, error) {
	candidates := []string{fmt.Sprintf("%s:%d", node, nodeExporterPort)}
	if short, _, found := strings.Cut(node, "."); found && short != "" {
		candidates = append(candidates, fmt.Sprintf("%s:%d", short, nodeExporterPort))
	}

	for _, candidate := range candidates {
		known, err := p.instanceKnown(ctx, candidate)
		if err != nil {
			return "", err
		}
		if known {
			return candidate, nil
		}
	}
	return "", errors.NewWithContext(errors.ErrCodeNotFound,
		"node has no node_exporter instance in prometheus",
		map[string]any{"node": node})
}

func (p *PrometheusBackend) instanceKnown(ctx context.Context, instance string) (bool, error) {
	value, warnings, err := p.api.Query(ctx, fmt.Sprintf(`up{instance=%q}`, instance), time.Now())
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeUnavailable, "prometheus query failed", err)
	}
	logWarnings(warnings)
	vector, ok := value.(model.Vector)
	return ok && len(vector) > 0, nil
}

func (p *PrometheusBackend) queryScalar(ctx context.Context, query string) (float64, error) {
	value, warnings, err := p.api.Query(ctx, query, time.Now())
	if err != nil {
		return 0, errors.WrapWithContext(errors.ErrCodeUnavailable, "prometheus query failed", err,
			map[string]any{"query": query})
	}
	logWarnings(warnings)

	vector, ok := value.(model.Vector)
	if !ok || len(vector) == 0 {
		return 0, errors.NewWithContext(errors.ErrCodeNotFound, "prometheus query returned no samples",
			map[string]any{"query": query})
	}
	return float64(vector[0].Value), nil
}

func logWarnings(warnings promv1.Warnings) {
	for _, w := range warnings {
		slog.Debug("prometheus query warning", "warning", w)
	}
}
