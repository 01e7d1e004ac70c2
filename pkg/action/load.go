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

package action

import (
	"context"
	"time"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/loadgen"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// LoadRunner is the load-generator collaborator, satisfied by
// loadgen.Runner.
type LoadRunner interface {
	Run(ctx context.Context, spec loadgen.Spec) loadgen.Result
	Available() bool
}

// Load runs a k6 load test shaped by the experiment configuration. Unlike
// the other actions this one blocks for the test duration: the load itself
// is the disruption, and its outcome belongs in the trigger result.
type Load struct {
	Runner  LoadRunner
	Profile loadgen.Profile
}

func (l *Load) Name() string { return "k6-" + string(l.Profile) }

func (l *Load) Invoke(ctx context.Context, tgt target.Target, params Params) Result {
	url := params.String("target_url", "http://localhost:8080") +
		params.String("health_endpoint", "")

	spec := loadgen.Spec{
		Profile:      l.Profile,
		URL:          url,
		VirtualUsers: params.Int("virtual_users", 10),
		BaseUsers:    params.Int("base_users", 10),
		SpikeUsers:   params.Int("spike_users", 100),
		RampUpUsers:  params.Int("ramp_up_users", 50),
		MaxUsers:     params.Int("max_users", 200),
		Duration:     time.Duration(params.Int("duration_seconds", 120)) * time.Second,
		ThresholdMS:  params.Int("response_time_threshold", 500),
	}

	outcome := l.Runner.Run(ctx, spec)

	result := Result{
		Message: "load test finished",
		Output: map[string]any{
			"target":    tgt.Identifier,
			"url":       url,
			"profile":   string(l.Profile),
			"available": outcome.Available,
		},
	}
	switch {
	case !outcome.Available:
		result.Status = StatusSkipped
		result.Message = outcome.Error
	case outcome.Success:
		result.Status = StatusCompleted
	default:
		result.Status = StatusFailed
		result.Message = outcome.Error
	}
	if outcome.Summary != nil {
		result.Output["summary"] = outcome.Summary
	}
	return result
}
