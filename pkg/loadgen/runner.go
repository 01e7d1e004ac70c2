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

package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
)

// Profile selects the generated load shape.
type Profile string

const (
	// ProfileConstant holds a steady number of virtual users.
	ProfileConstant Profile = "constant"
	// ProfileSpike ramps to a peak quickly and back down.
	ProfileSpike Profile = "spike"
	// ProfileStress ramps in stages to find the saturation point.
	ProfileStress Profile = "stress"
)

// Spec describes one load-test run.
type Spec struct {
	Profile Profile
	URL     string

	VirtualUsers int
	BaseUsers    int
	SpikeUsers   int
	RampUpUsers  int
	MaxUsers     int

	Duration    time.Duration
	ThresholdMS int

	// Script, when set, is run verbatim instead of a generated one.
	Script string
}

// Summary is the condensed k6 summary of one run.
type Summary struct {
	Requests   int64   `json:"requests"`
	FailedRate float64 `json:"failed_rate"`
	AvgMS      float64 `json:"avg_ms"`
	P95MS      float64 `json:"p95_ms"`
}

// Result is the total outcome of one load-test invocation. Available is
// false when the k6 binary is not installed.
type Result struct {
	Available bool     `json:"available"`
	Success   bool     `json:"success"`
	ExitCode  int      `json:"exit_code"`
	Stdout    string   `json:"stdout,omitempty"`
	Stderr    string   `json:"stderr,omitempty"`
	Summary   *Summary `json:"summary,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Runner executes k6 scripts.
type Runner struct {
	// Binary is the resolved k6 path; empty when k6 is not installed.
	Binary string

	// Timeout bounds one run end to end; derived from the spec duration
	// when zero.
	Timeout time.Duration
}

// commonPaths are checked when k6 is not on PATH.
var commonPaths = []string{
	"/usr/local/bin/k6",
	"/opt/homebrew/bin/k6",
	"/usr/bin/k6",
}

// NewRunner locates the k6 binary. A runner with no binary is still usable:
// every run reports unavailability instead of failing.
func NewRunner() *Runner {
	if path, err := exec.LookPath("k6"); err == nil {
		return &Runner{Binary: path}
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return &Runner{Binary: path}
		}
	}
	return &Runner{}
}

// Available reports whether the k6 binary was found.
func (r *Runner) Available() bool {
	return r.Binary != ""
}

// Run executes one load test. Like the metrics collector, Run is total:
// every failure mode is recorded in the Result.
func (r *Runner) Run(ctx context.Context, spec Spec) Result {
	if !r.Available() {
		return Result{
			Available: false,
			Error:     "k6 binary not found, install k6 to run load-test experiments",
		}
	}

	workDir, err := os.MkdirTemp("", "chaosexp-k6-*")
	if err != nil {
		return Result{Available: true, Error: fmt.Sprintf("temp dir: %v", err)}
	}
	defer os.RemoveAll(workDir)

	script := spec.Script
	if script == "" {
		script = buildScript(spec)
	}
	scriptPath := filepath.Join(workDir, "script.js")
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return Result{Available: true, Error: fmt.Sprintf("write script: %v", err)}
	}

	summaryPath := filepath.Join(workDir, "summary.json")
	runCtx, cancel := context.WithTimeout(ctx, r.timeout(spec))
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.Binary, "run",
		"--summary-export", summaryPath, scriptPath)

	var stdout, stderr limitedBuffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Info("load test started", "profile", spec.Profile, "url", spec.URL)
	err = cmd.Run()

	result := Result{
		Available: true,
		Success:   err == nil,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
	}
	if err != nil {
		result.Error = err.Error()
		if exit, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exit.ExitCode()
		}
		if runCtx.Err() == context.DeadlineExceeded {
			result.Error = "k6 execution timed out, check target reachability"
		}
	}

	if summary, serr := readSummary(summaryPath); serr == nil {
		result.Summary = summary
	} else if err == nil {
		slog.Debug("k6 summary not readable", "error", serr)
	}

	slog.Info("load test finished", "success", result.Success)
	return result
}

func (r *Runner) timeout(spec Spec) time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	// Stress profiles overrun their nominal duration, so double it and
	// keep a floor.
	if t := 2 * spec.Duration; t > defaults.LoadTestTimeout {
		return t
	}
	return defaults.LoadTestTimeout
}

// limitedBuffer caps captured process output so a chatty k6 run cannot
// bloat the persisted artifact.
type limitedBuffer struct {
	buf bytes.Buffer
}

const maxCapturedOutput = 64 << 10

func (b *limitedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if remaining := maxCapturedOutput - b.buf.Len(); remaining > 0 {
		if n > remaining {
			p = p[:remaining]
		}
		b.buf.Write(p)
	}
	return n, nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}

// k6Summary mirrors the parts of k6's --summary-export format we report.
type k6Summary struct {
	Metrics struct {
		HTTPReqs struct {
			Count int64 `json:"count"`
		} `json:"http_reqs"`
		HTTPReqFailed struct {
			Value float64 `json:"value"`
		} `json:"http_req_failed"`
		HTTPReqDuration struct {
			Avg float64 `json:"avg"`
			P95 float64 `json:"p(95)"`
		} `json:"http_req_duration"`
	} `json:"metrics"`
}

func readSummary(path string) (*Summary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var parsed k6Summary
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	return &Summary{
		Requests:   parsed.Metrics.HTTPReqs.Count,
		FailedRate: parsed.Metrics.HTTPReqFailed.Value,
		AvgMS:      parsed.Metrics.HTTPReqDuration.Avg,
		P95MS:      parsed.Metrics.HTTPReqDuration.P95,
	}, nil
}
