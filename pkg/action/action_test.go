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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/loadgen"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/scheduler"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

type spyScheduler struct {
	scheduler.Client

	drainedNode   string
	drainDeadline time.Duration
	drainErr      error

	submittedSpec []byte
	submitErr     error
}

func (s *spyScheduler) DrainNode(_ context.Context, nodeID string, deadline time.Duration) error {
	s.drainedNode = nodeID
	s.drainDeadline = deadline
	return s.drainErr
}

func (s *spyScheduler) SubmitJob(_ context.Context, spec []byte) (string, error) {
	s.submittedSpec = spec
	if s.submitErr != nil {
		return "", s.submitErr
	}
	return "eval-1", nil
}

type spyLoadRunner struct {
	spec   loadgen.Spec
	result loadgen.Result
}

func (s *spyLoadRunner) Run(_ context.Context, spec loadgen.Spec) loadgen.Result {
	s.spec = spec
	return s.result
}

func (s *spyLoadRunner) Available() bool { return true }

func TestParamsCoercion(t *testing.T) {
	p := Params{
		"ints":    42,
		"floats":  float64(7),
		"strings": "19",
		"junk":    "not-a-number",
	}

	assert.Equal(t, 42, p.Int("ints", 0))
	assert.Equal(t, 7, p.Int("floats", 0))
	assert.Equal(t, 19, p.Int("strings", 0))
	assert.Equal(t, 5, p.Int("junk", 5))
	assert.Equal(t, 5, p.Int("missing", 5))
	assert.Equal(t, "fallback", p.String("missing", "fallback"))
}

func TestRegistryRouting(t *testing.T) {
	sched := &spyScheduler{}
	reg := DefaultRegistry(sched, nil, &spyLoadRunner{}, 0)

	assert.Equal(t, "stress-cpu", reg.For("cpu-hog").Name())
	assert.Equal(t, "stress-cpu", reg.For("cpu_hog").Name())
	assert.Equal(t, "node-drain", reg.For("node_drain").Name())
	assert.Equal(t, "k6-spike", reg.For("spike-test").Name())
	assert.Equal(t, "noop", reg.For("vm_shutdown").Name(), "no platform configured")
	assert.Equal(t, "noop", reg.For("completely-unknown").Name())
}

func TestDrainAction(t *testing.T) {
	sched := &spyScheduler{}
	drain := &Drain{Scheduler: sched, Deadline: 2 * time.Minute}

	tgt := target.NewNodeTarget("node-1", target.NodeAttributes{Name: "client-01"})
	result := drain.Invoke(context.Background(), tgt, nil)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, "node-1", sched.drainedNode)
	assert.Equal(t, 2*time.Minute, sched.drainDeadline)
}

func TestDrainActionRejectsNonNodeTarget(t *testing.T) {
	drain := &Drain{Scheduler: &spyScheduler{}}
	tgt := target.NewServiceTarget("web", target.ServiceAttributes{Name: "web"}, nil)

	result := drain.Invoke(context.Background(), tgt, nil)
	assert.Equal(t, StatusFailed, result.Status)
}

func TestDrainActionRecordsFailure(t *testing.T) {
	sched := &spyScheduler{drainErr: errors.New("drain rejected")}
	drain := &Drain{Scheduler: sched}

	tgt := target.NewNodeTarget("node-1", target.NodeAttributes{})
	result := drain.Invoke(context.Background(), tgt, nil)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Message, "drain rejected")
}

func TestStressActionSubmitsPinnedJob(t *testing.T) {
	sched := &spyScheduler{}
	stress := &Stress{Scheduler: sched, Mode: "cpu"}

	tgt := target.NewServiceTarget("web", target.ServiceAttributes{Name: "web", Node: "node-1"}, nil)
	result := stress.Invoke(context.Background(), tgt, Params{"duration_seconds": 30})

	require.Equal(t, StatusCompleted, result.Status, result.Message)
	assert.Equal(t, "eval-1", result.Output["eval_id"])

	var job map[string]any
	require.NoError(t, json.Unmarshal(sched.submittedSpec, &job))
	spec := job["Job"].(map[string]any)
	assert.Equal(t, "batch", spec["Type"])
	constraint := spec["Constraints"].([]any)[0].(map[string]any)
	assert.Equal(t, "node-1", constraint["RTarget"])
}

func TestStressActionFailsWithoutNode(t *testing.T) {
	stress := &Stress{Scheduler: &spyScheduler{}, Mode: "cpu"}
	tgt := target.NewServiceTarget("web", target.ServiceAttributes{Name: "web"}, nil)

	result := stress.Invoke(context.Background(), tgt, nil)
	assert.Equal(t, StatusFailed, result.Status)
}

func TestLoadActionBuildsSpecFromParams(t *testing.T) {
	runner := &spyLoadRunner{result: loadgen.Result{Available: true, Success: true}}
	load := &Load{Runner: runner, Profile: loadgen.ProfileSpike}

	tgt := target.NewServiceTarget("web", target.ServiceAttributes{Name: "web"}, nil)
	result := load.Invoke(context.Background(), tgt, Params{
		"target_url":       "http://10.0.0.5:9090",
		"health_endpoint":  "/health",
		"base_users":       float64(5),
		"spike_users":      float64(50),
		"duration_seconds": float64(60),
	})

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, "http://10.0.0.5:9090/health", runner.spec.URL)
	assert.Equal(t, 5, runner.spec.BaseUsers)
	assert.Equal(t, 50, runner.spec.SpikeUsers)
	assert.Equal(t, time.Minute, runner.spec.Duration)
}

func TestLoadActionSkipsWhenUnavailable(t *testing.T) {
	runner := &spyLoadRunner{result: loadgen.Result{Available: false, Error: "k6 not installed"}}
	load := &Load{Runner: runner, Profile: loadgen.ProfileConstant}

	tgt := target.NewServiceTarget("web", target.ServiceAttributes{Name: "web"}, nil)
	result := load.Invoke(context.Background(), tgt, nil)

	assert.Equal(t, StatusSkipped, result.Status)
	assert.Contains(t, result.Message, "k6 not installed")
}
