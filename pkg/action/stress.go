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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/scheduler"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// Stress submits a short-lived batch job pinned to the target's node that
// runs stress-ng with knobs taken from the experiment configuration. The
// stress runs inside the cluster, so the trigger returns as soon as the job
// is registered.
type Stress struct {
	Scheduler scheduler.Client

	// Mode selects the stress-ng stressor: cpu, memory or disk.
	Mode string
}

func (s *Stress) Name() string { return "stress-" + s.Mode }

func (s *Stress) Invoke(ctx context.Context, tgt target.Target, params Params) Result {
	node := tgt.Attr(target.AttrNode, "")
	if tgt.Kind == target.KindNode {
		node = tgt.Identifier
	}
	if node == "" || node == "unknown" {
		return Result{
			Status:  StatusFailed,
			Message: fmt.Sprintf("target %s has no resolvable node to stress", tgt.Identifier),
		}
	}

	spec, err := s.jobSpec(tgt, node, params)
	if err != nil {
		return Failed(err)
	}

	evalID, err := s.Scheduler.SubmitJob(ctx, spec)
	if err != nil {
		return Failed(fmt.Errorf("submitting stress job: %w", err))
	}

	slog.Info("stress job submitted", "mode", s.Mode, "node", node, "eval", evalID)
	result := Completed(fmt.Sprintf("stress job submitted to node %s", node))
	result.Output = map[string]any{"eval_id": evalID, "mode": s.Mode}
	return result
}

func (s *Stress) jobSpec(tgt target.Target, node string, params Params) ([]byte, error) {
	duration := params.Int("duration_seconds", 120)

	var args []string
	switch s.Mode {
	case "memory":
		args = []string{
			"--vm", "1",
			"--vm-bytes", fmt.Sprintf("%dM", params.Int("memory_mb", 2048)),
			"--timeout", fmt.Sprintf("%ds", duration),
		}
	case "disk":
		args = []string{
			"--hdd", fmt.Sprintf("%d", params.Int("io_workers", 4)),
			"--hdd-bytes", fmt.Sprintf("%dM", params.Int("write_size_mb", 1024)),
			"--timeout", fmt.Sprintf("%ds", duration),
		}
	default:
		args = []string{
			"--cpu", "0",
			"--cpu-load", "95",
			"--timeout", fmt.Sprintf("%ds", duration),
		}
	}

	jobID := fmt.Sprintf("chaosexp-stress-%s-%s", s.Mode, tgt.Identifier)
	job := map[string]any{
		"Job": map[string]any{
			"ID":          jobID,
			"Name":        jobID,
			"Type":        "batch",
			"Datacenters": []string{"dc1"},
			"Constraints": []map[string]any{
				{"LTarget": "${node.unique.id}", "RTarget": node, "Operand": "="},
			},
			"TaskGroups": []map[string]any{
				{
					"Name": "stress",
					"RestartPolicy": map[string]any{
						"Attempts": 0,
						"Mode":     "fail",
					},
					"Tasks": []map[string]any{
						{
							"Name":   "stress-ng",
							"Driver": "raw_exec",
							"Config": map[string]any{
								"command": "stress-ng",
								"args":    args,
							},
						},
					},
				},
			},
		},
	}
	return json.Marshal(job)
}
