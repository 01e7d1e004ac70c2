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

package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/action"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/experiment"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/metrics"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/report"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

type staticResolver struct {
	targets []target.Target
	err     error
}

func (r *staticResolver) Resolve(context.Context) ([]target.Target, error) {
	return r.targets, r.err
}

type fakeCollector struct {
	calls     []string
	failLabel string
}

func (c *fakeCollector) Collect(_ context.Context, _ target.Kind, id, label string) metrics.Snapshot {
	c.calls = append(c.calls, label)
	if label == c.failLabel {
		return metrics.ErrorSnapshot(label, id, errors.New(errors.ErrCodeUnavailable, "backend down"))
	}
	return metrics.Snapshot{
		Timestamp:    time.Now().UTC(),
		Label:        label,
		SubjectID:    id,
		ClientStatus: "running",
		CPU:          &metrics.CPU{Percent: 20},
		Memory:       &metrics.Memory{Usage: 1 << 30, RSS: 1 << 30},
	}
}

type spyAction struct {
	invoked []string
	result  action.Result
}

func (a *spyAction) Name() string { return "spy" }

func (a *spyAction) Invoke(_ context.Context, tgt target.Target, _ action.Params) action.Result {
	a.invoked = append(a.invoked, tgt.Identifier)
	return a.result
}

func testCatalog() []target.Target {
	return []target.Target{
		target.NewServiceTarget("web", target.ServiceAttributes{
			Name:           "web",
			Node:           "node-1",
			Status:         "running",
			Allocation:     "alloc-1",
			Address:        "10.0.0.5",
			Port:           8080,
			HealthEndpoint: "/health",
		}, nil),
		target.NewNodeTarget("node-1", target.NodeAttributes{
			Name:   "client-01",
			Status: "ready",
		}),
	}
}

func testPipeline(t *testing.T, resolver Resolver, collector metrics.Collector, act action.Action) (*Pipeline, *report.Store) {
	t.Helper()
	store, err := report.NewStore(t.TempDir())
	require.NoError(t, err)
	actions := action.NewRegistry(action.Noop{})
	if act != nil {
		actions.Register(act, "cpu_hog")
	}
	return New(resolver, experiment.NewRegistry(), collector, actions, store, nil), store
}

func TestDryRunEndToEnd(t *testing.T) {
	collector := &fakeCollector{}
	spy := &spyAction{result: action.Completed("started")}
	p, store := testPipeline(t, &staticResolver{targets: testCatalog()}, collector, spy)

	run, err := p.Execute(context.Background(), Options{
		TargetID:       "web",
		ChaosType:      "cpu_hog",
		DryRun:         true,
		CollectMetrics: true,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDryRun, run.Status)
	assert.Equal(t, "web", run.TargetID)
	assert.Equal(t, "true", run.Metadata["dry_run"])
	assert.Empty(t, collector.calls, "dry-run must not capture snapshots")
	assert.Empty(t, spy.invoked, "dry-run must not trigger the disruption")

	bundle, err := store.ReadBundle(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, action.StatusSkipped, bundle.Result.Status)
	assert.Nil(t, bundle.Metrics)
	assert.Equal(t, "node-1", bundle.Experiment.Configuration()["target_node"])
}

func TestRunWithMetrics(t *testing.T) {
	collector := &fakeCollector{}
	spy := &spyAction{result: action.Completed("started")}
	p, store := testPipeline(t, &staticResolver{targets: testCatalog()}, collector, spy)

	run, err := p.Execute(context.Background(), Options{
		TargetID:        "web",
		ChaosType:       "cpu_hog",
		CollectMetrics:  true,
		MetricsDuration: 20 * time.Millisecond,
		MetricsInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, []string{"web"}, spy.invoked)
	require.GreaterOrEqual(t, len(collector.calls), 4)
	assert.Equal(t, "before", collector.calls[0])
	assert.Equal(t, "after", collector.calls[len(collector.calls)-1])

	bundle, err := store.ReadBundle(run.RunID)
	require.NoError(t, err)
	require.NotNil(t, bundle.Metrics)
	require.NotNil(t, bundle.Metrics.Analysis)
	assert.Len(t, bundle.Metrics.During, 2)
	assert.True(t, bundle.Metrics.Analysis.Status.Stable)

	assert.FileExists(t, run.ReportPath)
}

func TestTriggerFailureIsRecordedNotFatal(t *testing.T) {
	spy := &spyAction{result: action.Failed(errors.New(errors.ErrCodeTrigger, "submit rejected"))}
	p, store := testPipeline(t, &staticResolver{targets: testCatalog()}, &fakeCollector{}, spy)

	run, err := p.Execute(context.Background(), Options{
		TargetID:  "web",
		ChaosType: "cpu_hog",
	})
	require.NoError(t, err, "a failed trigger is an attempted experiment, not a pipeline error")
	assert.Equal(t, StatusFailed, run.Status)

	bundle, err := store.ReadBundle(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, action.StatusFailed, bundle.Result.Status)
}

func TestBaselineFailureDegradesComparison(t *testing.T) {
	collector := &fakeCollector{failLabel: "before"}
	p, store := testPipeline(t, &staticResolver{targets: testCatalog()}, collector, &spyAction{result: action.Completed("ok")})

	run, err := p.Execute(context.Background(), Options{
		TargetID:        "web",
		ChaosType:       "cpu_hog",
		CollectMetrics:  true,
		MetricsDuration: 10 * time.Millisecond,
		MetricsInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)

	bundle, err := store.ReadBundle(run.RunID)
	require.NoError(t, err)
	require.NotNil(t, bundle.Metrics)
	assert.Nil(t, bundle.Metrics.Analysis, "no analysis when the baseline failed")
	assert.NotEmpty(t, bundle.Metrics.Before.Error)
}

func TestTargetNotFoundIsFatal(t *testing.T) {
	p, store := testPipeline(t, &staticResolver{targets: testCatalog()}, nil, nil)

	_, err := p.Execute(context.Background(), Options{TargetID: "ghost", ChaosType: "cpu_hog"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))

	ids, listErr := store.ListRuns()
	require.NoError(t, listErr)
	assert.Empty(t, ids, "fatal resolution failures persist nothing")
}

func TestSequentialFanOutReturnsFirstRun(t *testing.T) {
	spy := &spyAction{result: action.Completed("started")}
	p, store := testPipeline(t, &staticResolver{targets: testCatalog()}, nil, spy)

	out := filepath.Join(t.TempDir(), "run.json")
	run, err := p.Execute(context.Background(), Options{
		TargetID:   "web, node-1",
		ChaosType:  "cpu_hog",
		OutputPath: out,
	})
	require.NoError(t, err)

	assert.Equal(t, "web", run.TargetID, "fan-out returns the first target's run")
	assert.Equal(t, []string{"web", "node-1"}, spy.invoked)

	ids, err := store.ListRuns()
	require.NoError(t, err)
	assert.Len(t, ids, 2, "every fanned-out target persists its own artifact")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var exported Run
	require.NoError(t, json.Unmarshal(raw, &exported))
	assert.Equal(t, run.RunID, exported.RunID)
}

func TestEmptyTargetSelectsFirstCatalogEntry(t *testing.T) {
	p, _ := testPipeline(t, &staticResolver{targets: testCatalog()}, nil, &spyAction{result: action.Completed("ok")})

	run, err := p.Execute(context.Background(), Options{ChaosType: "cpu_hog"})
	require.NoError(t, err)
	assert.Equal(t, "web", run.TargetID)
}

func TestUnknownChaosTypeFallsBackToDefaultTemplate(t *testing.T) {
	p, store := testPipeline(t, &staticResolver{targets: testCatalog()}, nil, nil)

	run, err := p.Execute(context.Background(), Options{
		TargetID:  "web",
		ChaosType: "made-up-chaos",
		DryRun:    true,
	})
	require.NoError(t, err)

	bundle, err := store.ReadBundle(run.RunID)
	require.NoError(t, err)
	assert.Contains(t, bundle.Experiment.Title(), "CPU hog")
}

func TestResolverFailureIsFatal(t *testing.T) {
	p, _ := testPipeline(t, &staticResolver{err: errors.New(errors.ErrCodeUnavailable, "scheduler down")}, nil, nil)

	_, err := p.Execute(context.Background(), Options{TargetID: "web"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnavailable, errors.CodeOf(err))
}
