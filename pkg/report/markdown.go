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
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// RenderMarkdown produces the human-readable summary of one run.
func RenderMarkdown(runID string, bundle Bundle) string {
	var b strings.Builder

	title := bundle.Experiment.Title()
	if title == "" {
		title = "Chaos Experiment"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	cfg := bundle.Experiment.Configuration()
	fmt.Fprintf(&b, "## Run\n\n")
	fmt.Fprintf(&b, "| Property | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Run ID | `%s` |\n", runID)
	if tags := bundle.Experiment.Tags(); len(tags) > 0 {
		fmt.Fprintf(&b, "| Chaos Type | %s |\n", titleCaser.String(strings.Join(tags, ", ")))
	}
	fmt.Fprintf(&b, "| Target | `%v` |\n", cfg["target_id"])
	fmt.Fprintf(&b, "| Status | **%s** |\n", strings.ToUpper(string(bundle.Result.Status)))
	if bundle.Result.Message != "" {
		fmt.Fprintf(&b, "| Details | %s |\n", bundle.Result.Message)
	}

	if len(cfg) > 0 {
		fmt.Fprintf(&b, "\n## Configuration\n\n| Parameter | Value |\n|---|---|\n")
		keys := make([]string, 0, len(cfg))
		for k := range cfg {
			if k == "target_id" {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "| `%s` | `%v` |\n", k, cfg[k])
		}
	}

	if bundle.Metrics != nil {
		writeMetricsMarkdown(&b, bundle)
	}

	return b.String()
}

func writeMetricsMarkdown(b *strings.Builder, bundle Bundle) {
	analysis := bundle.Metrics.Analysis
	fmt.Fprintf(b, "\n## Metrics\n\n")
	fmt.Fprintf(b, "Snapshots collected: %d during, baseline and post included in the JSON bundle.\n",
		len(bundle.Metrics.During))

	if analysis == nil {
		fmt.Fprintf(b, "\nNo comparison available: baseline or post snapshot failed.\n")
		return
	}

	if cpu := analysis.CPU; cpu != nil {
		fmt.Fprintf(b, "\n### CPU\n\n| Before | Peak During | After | Recovered |\n|---|---|---|---|\n")
		fmt.Fprintf(b, "| %.2f%% | %.2f%% | %.2f%% | %s |\n",
			cpu.BeforePercent, cpu.PeakPercent, cpu.AfterPercent, yesNo(cpu.Recovered))
	}
	if mem := analysis.Memory; mem != nil {
		fmt.Fprintf(b, "\n### Memory\n\n| Before | Peak During | After | Recovered |\n|---|---|---|---|\n")
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			formatBytes(mem.BeforeBytes), formatBytes(mem.PeakBytes),
			formatBytes(mem.AfterBytes), yesNo(mem.Recovered))
	}
	if disk := analysis.Disk; disk != nil {
		fmt.Fprintf(b, "\n### Disk I/O\n\n| Counter | Before | Peak | After |\n|---|---|---|---|\n")
		fmt.Fprintf(b, "| Read bytes | %s | %s | %s |\n",
			formatBytes(disk.ReadBytesBefore), formatBytes(disk.PeakReadBytes), formatBytes(disk.ReadBytesAfter))
		fmt.Fprintf(b, "| Write bytes | %s | %s | %s |\n",
			formatBytes(disk.WriteBytesBefore), formatBytes(disk.PeakWriteBytes), formatBytes(disk.WriteBytesAfter))
		fmt.Fprintf(b, "| Total bytes | %s | %s | %s |\n",
			formatBytes(disk.TotalBytesBefore), formatBytes(disk.PeakTotalBytes), formatBytes(disk.TotalBytesAfter))
	}
	if status := analysis.Status; status != nil {
		fmt.Fprintf(b, "\n### Status\n\n| Before | After | Stable |\n|---|---|---|\n")
		fmt.Fprintf(b, "| %s | %s | %s |\n", status.Before, status.After, yesNo(status.Stable))
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
