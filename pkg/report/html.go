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
	"html/template"
	"sort"
	"strings"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/metrics"
)

const htmlReport = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.RunID}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1f2430; }
h1 { border-bottom: 2px solid #4051b5; padding-bottom: .4rem; }
table { border-collapse: collapse; margin: 1rem 0; width: 100%; }
th, td { border: 1px solid #d0d4dd; padding: .45rem .7rem; text-align: left; }
th { background: #f2f4f8; }
.status { font-weight: 600; text-transform: uppercase; }
.recovered-yes { color: #187a33; font-weight: 600; }
.recovered-no { color: #b3261e; font-weight: 600; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<tr><th>Run ID</th><td><code>{{.RunID}}</code></td></tr>
<tr><th>Target</th><td><code>{{.Target}}</code></td></tr>
<tr><th>Status</th><td class="status">{{.Status}}</td></tr>
{{if .Message}}<tr><th>Details</th><td>{{.Message}}</td></tr>{{end}}
</table>

{{if .Config}}
<h2>Configuration</h2>
<table>
<tr><th>Parameter</th><th>Value</th></tr>
{{range .Config}}<tr><td><code>{{.Key}}</code></td><td><code>{{.Value}}</code></td></tr>
{{end}}
</table>
{{end}}

{{if .CPU}}
<h2>CPU</h2>
<table>
<tr><th>Before</th><th>Peak During</th><th>After</th><th>Recovered</th></tr>
<tr><td>{{printf "%.2f" .CPU.BeforePercent}}%</td><td>{{printf "%.2f" .CPU.PeakPercent}}%</td>
<td>{{printf "%.2f" .CPU.AfterPercent}}%</td><td class="recovered-{{if .CPU.Recovered}}yes{{else}}no{{end}}">{{if .CPU.Recovered}}yes{{else}}no{{end}}</td></tr>
</table>
{{end}}

{{if .Memory}}
<h2>Memory</h2>
<table>
<tr><th>Before</th><th>Peak During</th><th>After</th><th>Recovered</th></tr>
<tr><td>{{.MemBefore}}</td><td>{{.MemPeak}}</td><td>{{.MemAfter}}</td>
<td class="recovered-{{if .Memory.Recovered}}yes{{else}}no{{end}}">{{if .Memory.Recovered}}yes{{else}}no{{end}}</td></tr>
</table>
{{end}}

{{if .Status2}}
<h2>Status</h2>
<table>
<tr><th>Before</th><th>After</th><th>Stable</th></tr>
<tr><td>{{.Status2.Before}}</td><td>{{.Status2.After}}</td>
<td class="recovered-{{if .Status2.Stable}}yes{{else}}no{{end}}">{{if .Status2.Stable}}yes{{else}}no{{end}}</td></tr>
</table>
{{end}}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("report").Parse(htmlReport))

type htmlConfigRow struct {
	Key   string
	Value any
}

type htmlData struct {
	RunID   string
	Title   string
	Target  string
	Status  string
	Message string
	Config  []htmlConfigRow

	CPU     *metrics.CPUAnalysis
	Memory  *metrics.MemoryAnalysis
	Status2 *metrics.StatusAnalysis

	MemBefore string
	MemPeak   string
	MemAfter  string
}

// RenderHTML produces the standalone HTML report of one run.
func RenderHTML(runID string, bundle Bundle) (string, error) {
	cfg := bundle.Experiment.Configuration()

	data := htmlData{
		RunID:   runID,
		Title:   bundle.Experiment.Title(),
		Status:  string(bundle.Result.Status),
		Message: bundle.Result.Message,
	}
	if data.Title == "" {
		data.Title = "Chaos Experiment"
	}
	if target, ok := cfg["target_id"].(string); ok {
		data.Target = target
	}

	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data.Config = append(data.Config, htmlConfigRow{Key: k, Value: cfg[k]})
	}

	if bundle.Metrics != nil && bundle.Metrics.Analysis != nil {
		analysis := bundle.Metrics.Analysis
		data.CPU = analysis.CPU
		data.Status2 = analysis.Status
		if analysis.Memory != nil {
			data.Memory = analysis.Memory
			data.MemBefore = formatBytes(analysis.Memory.BeforeBytes)
			data.MemPeak = formatBytes(analysis.Memory.PeakBytes)
			data.MemAfter = formatBytes(analysis.Memory.AfterBytes)
		}
	}

	var b strings.Builder
	if err := htmlTemplate.Execute(&b, data); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "rendering html report", err)
	}
	return b.String(), nil
}
