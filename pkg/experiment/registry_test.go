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

package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

func webTarget() *target.Target {
	t := target.NewServiceTarget("web-123", target.ServiceAttributes{
		Name:           "web",
		Node:           "node-1",
		Address:        "10.0.0.5",
		Port:           9090,
		HealthEndpoint: "/health",
	}, nil)
	return &t
}

func TestRenderSubstitutesTargetVariables(t *testing.T) {
	doc, err := NewRegistry().Render("cpu-hog", webTarget(), nil)
	require.NoError(t, err)

	cfg := doc.Configuration()
	assert.Equal(t, "web-123", cfg["target_id"])
	assert.Equal(t, "service", cfg["target_kind"])
	assert.Equal(t, "node-1", cfg["target_node"])
	assert.Equal(t, "http://10.0.0.5:9090", cfg["target_url"])
	assert.Equal(t, "/health", cfg["health_endpoint"])
	assert.Equal(t, 120, cfg["duration_seconds"])
	assert.Contains(t, doc.Title(), "${target_id}")
}

func TestRenderOverridesWin(t *testing.T) {
	doc, err := NewRegistry().Render("memory_hog", webTarget(), map[string]any{
		"memory_mb":        4096,
		"duration_seconds": 30,
	})
	require.NoError(t, err)

	cfg := doc.Configuration()
	assert.Equal(t, 4096, cfg["memory_mb"])
	assert.Equal(t, 30, cfg["duration_seconds"])
}

func TestRenderAliases(t *testing.T) {
	reg := NewRegistry()

	hyphen, err := reg.Render("network-latency", nil, nil)
	require.NoError(t, err)
	underscore, err := reg.Render("network_latency", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, hyphen.Title(), underscore.Title())

	hostDown, err := reg.Render("host-down", nil, nil)
	require.NoError(t, err)
	shutdown, err := reg.Render("vm-shutdown", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, shutdown.Title(), hostDown.Title())
}

func TestRenderUnknownTypeFallsBackToDefault(t *testing.T) {
	doc, err := NewRegistry().Render("does-not-exist", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, doc.Title(), "CPU hog")
}

func TestRenderNilTargetUsesPlaceholders(t *testing.T) {
	doc, err := NewRegistry().Render("", nil, nil)
	require.NoError(t, err)

	cfg := doc.Configuration()
	assert.Equal(t, "unknown", cfg["target_id"])
	assert.Equal(t, "http://localhost:8080", cfg["target_url"])
}

func TestBuildTargetURLPriority(t *testing.T) {
	tests := []struct {
		name     string
		attrs    target.ServiceAttributes
		expected string
	}{
		{
			name:     "explicit address wins",
			attrs:    target.ServiceAttributes{Address: "10.0.0.5", Node: "node-1", Port: 9090},
			expected: "http://10.0.0.5:9090",
		},
		{
			name:     "node name second",
			attrs:    target.ServiceAttributes{Node: "node-1", Port: 9090},
			expected: "http://node-1:9090",
		},
		{
			name:     "localhost fallback",
			attrs:    target.ServiceAttributes{Port: 9090},
			expected: "http://localhost:9090",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt := target.NewServiceTarget("svc", tt.attrs, nil)
			assert.Equal(t, tt.expected, buildTargetURL(&tgt))
		})
	}
}

func TestTypesAreSorted(t *testing.T) {
	types := NewRegistry().Types()
	require.NotEmpty(t, types)
	assert.Contains(t, types, "cpu_hog")
	assert.Contains(t, types, "k6_load_test")
}
