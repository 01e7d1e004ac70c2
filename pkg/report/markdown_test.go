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

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/metrics"
)

func metricBundle(target string) Bundle {
	bundle := testBundle(target)
	bundle.Metrics = &metrics.Comparison{
		During: []metrics.Snapshot{{Label: "during_0"}, {Label: "during_1"}},
		Analysis: &metrics.Analysis{
			CPU: &metrics.CPUAnalysis{
				BeforePercent: 12.5,
				PeakPercent:   87.25,
				AfterPercent:  14.0,
				Recovered:     true,
			},
			Memory: &metrics.MemoryAnalysis{
				BeforeBytes: 512 << 20,
				PeakBytes:   2 << 30,
				AfterBytes:  600 << 20,
				Recovered:   false,
			},
			Status: &metrics.StatusAnalysis{Before: "running", After: "running", Stable: true},
		},
	}
	return bundle
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("run-abc12345", metricBundle("web"))

	assert.Contains(t, out, "# CPU hog against web")
	assert.Contains(t, out, "| Run ID | `run-abc12345` |")
	assert.Contains(t, out, "| Target | `web` |")
	assert.Contains(t, out, "| Status | **COMPLETED** |")
	assert.Contains(t, out, "| Chaos Type | Cpu")
	assert.Contains(t, out, "| `duration_seconds` | `120` |")
	assert.Contains(t, out, "Snapshots collected: 2 during")
	assert.Contains(t, out, "| 12.50% | 87.25% | 14.00% | yes |")
	assert.Contains(t, out, "| 512.0 MiB | 2.0 GiB | 600.0 MiB | no |")
	assert.Contains(t, out, "| running | running | yes |")
	// target_id lives in the Run table, not the configuration dump
	assert.NotContains(t, out, "| `target_id` |")
}

func TestRenderMarkdownNoComparison(t *testing.T) {
	bundle := testBundle("web")
	bundle.Metrics = &metrics.Comparison{
		Before: metrics.Snapshot{Label: "before", Error: "collector timeout"},
	}

	out := RenderMarkdown("run-abc12345", bundle)
	assert.Contains(t, out, "No comparison available")
	assert.NotContains(t, out, "### CPU")
}

func TestRenderMarkdownNoMetrics(t *testing.T) {
	out := RenderMarkdown("run-abc12345", testBundle("web"))
	assert.NotContains(t, out, "## Metrics")
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML("run-abc12345", metricBundle("web"))
	require.NoError(t, err)

	assert.Contains(t, out, "<title>CPU hog against web - run-abc12345</title>")
	assert.Contains(t, out, "<code>run-abc12345</code>")
	assert.Contains(t, out, "<code>web</code>")
	assert.Contains(t, out, "87.25")
	assert.Contains(t, out, "512.0 MiB")
	assert.Contains(t, out, `class="recovered-yes"`)
	assert.Contains(t, out, `class="recovered-no"`)
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	bundle := testBundle("web")
	bundle.Result.Message = "<script>alert(1)</script>"

	out, err := RenderHTML("run-abc12345", bundle)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, formatBytes(tc.in), "%d", tc.in)
	}
}
