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
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/action"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/experiment"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/metrics"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/report"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// Run statuses.
const (
	StatusDryRun    = "dry-run"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is the record of one pipeline invocation, finalized and persisted
// exactly once at the end of the run.
type Run struct {
	RunID       string            `json:"run_id"`
	ChaosType   string            `json:"chaos_type"`
	TargetID    string            `json:"target_id,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Status      string            `json:"status"`
	ReportPath  string            `json:"report_path,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Options parameterize one pipeline invocation. All overrides are applied
// by the caller up front; the pipeline itself holds no mutable settings.
type Options struct {
	// TargetID selects the target by identifier or display name. Empty
	// selects the first catalog entry. A comma-separated list fans out
	// sequentially, one full run per target.
	TargetID string
	// ChaosType names the experiment template to render.
	ChaosType string
	// ExperimentPath, when set, loads a pre-rendered experiment document
	// instead of rendering a template.
	ExperimentPath string
	// DryRun renders and persists without capturing, triggering, or
	// sampling.
	DryRun bool
	// CollectMetrics enables the baseline/during/post measurement phases.
	CollectMetrics bool
	// MetricsDuration and MetricsInterval shape the during-series.
	MetricsDuration time.Duration
	MetricsInterval time.Duration
	// Overrides take precedence over template defaults during rendering.
	Overrides map[string]any
	// OutputPath, when set, additionally writes the run record JSON there.
	OutputPath string
}

func (o Options) metricsDuration() time.Duration {
	if o.MetricsDuration > 0 {
		return o.MetricsDuration
	}
	return defaults.MetricsDuration
}

func (o Options) metricsInterval() time.Duration {
	if o.MetricsInterval > 0 {
		return o.MetricsInterval
	}
	return defaults.MetricsInterval
}

// Resolver produces the target catalog the pipeline selects from.
type Resolver interface {
	Resolve(ctx context.Context) ([]target.Target, error)
}

// Pipeline drives experiments. All collaborators are injected at
// construction; a Pipeline is safe for concurrent use because each run
// keeps its state on the stack.
type Pipeline struct {
	resolver  Resolver
	templates *experiment.Registry
	collector metrics.Collector
	sampler   *metrics.Sampler
	actions   *action.Registry
	store     *report.Store
	log       *slog.Logger
}

// New wires a pipeline from its collaborators. collector may be nil when
// metrics collection is disabled globally.
func New(resolver Resolver, templates *experiment.Registry, collector metrics.Collector,
	actions *action.Registry, store *report.Store, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	p := &Pipeline{
		resolver:  resolver,
		templates: templates,
		collector: collector,
		actions:   actions,
		store:     store,
		log:       log,
	}
	if collector != nil {
		p.sampler = metrics.NewSampler(collector)
	}
	return p
}

// Execute runs the experiment described by opts. For a comma-separated
// target list it runs the full pipeline once per target, sequentially, and
// returns the first target's run; the remaining runs are persisted and must
// be read back from the store. Bounding scheduler load and keeping report
// artifacts un-interleaved is why the fan-out stays sequential.
func (p *Pipeline) Execute(ctx context.Context, opts Options) (*Run, error) {
	catalog, err := p.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	if strings.Contains(opts.TargetID, ",") {
		selected, err := target.SelectAll(catalog, opts.TargetID)
		if err != nil {
			return nil, err
		}
		var first *Run
		for i := range selected {
			tgt := selected[i]
			p.log.Info("running chaos on target",
				"target", tgt.Identifier,
				"name", tgt.Name())
			single := opts
			single.OutputPath = "" // only the consolidated record is exported
			run, err := p.runSingle(ctx, &tgt, single)
			if err != nil {
				return nil, err
			}
			if first == nil {
				first = run
			}
		}
		if opts.OutputPath != "" && first != nil {
			if err := writeRunRecord(opts.OutputPath, first); err != nil {
				return nil, err
			}
		}
		return first, nil
	}

	tgt, err := target.Select(catalog, opts.TargetID)
	if err != nil {
		return nil, err
	}
	return p.runSingle(ctx, tgt, opts)
}

func (p *Pipeline) runSingle(ctx context.Context, tgt *target.Target, opts Options) (*Run, error) {
	runID := newRunID()
	startedAt := time.Now().UTC()
	log := p.log.With("run", runID, "target", tgt.Identifier, "chaos", opts.ChaosType)

	doc, err := p.renderDocument(tgt, opts)
	if err != nil {
		runCounter(StatusFailed)
		return nil, err
	}

	measuring := opts.CollectMetrics && !opts.DryRun && p.collector != nil

	var before metrics.Snapshot
	if measuring {
		log.Info("capturing baseline metrics")
		before = p.collector.Collect(ctx, tgt.Kind, tgt.Identifier, "before")
	}

	result := p.trigger(ctx, tgt, doc, opts)

	var during []metrics.Snapshot
	if measuring {
		log.Info("sampling during disruption",
			"duration", opts.metricsDuration(),
			"interval", opts.metricsInterval())
		during = p.sampler.Sample(ctx, tgt.Kind, tgt.Identifier,
			opts.metricsDuration(), opts.metricsInterval(), "during")
	}

	var comparison *metrics.Comparison
	if measuring {
		log.Info("capturing post-disruption metrics")
		after := p.collector.Collect(ctx, tgt.Kind, tgt.Identifier, "after")
		comparison = metrics.NewComparison(before, during, after)
	}

	paths, err := p.store.WriteRun(runID, report.Bundle{
		Experiment: doc,
		Result:     result,
		Metrics:    comparison,
	})
	if err != nil {
		runCounter(StatusFailed)
		return nil, err
	}

	run := &Run{
		RunID:       runID,
		ChaosType:   chaosTypeOf(opts, doc),
		TargetID:    tgt.Identifier,
		StartedAt:   startedAt,
		CompletedAt: time.Now().UTC(),
		Status:      runStatus(opts.DryRun, result),
		ReportPath:  paths.Markdown,
		Metadata: map[string]string{
			"dry_run":           strconv.FormatBool(opts.DryRun),
			"metrics_collected": strconv.FormatBool(opts.CollectMetrics),
		},
	}
	runCounter(run.Status)

	if opts.OutputPath != "" {
		if err := writeRunRecord(opts.OutputPath, run); err != nil {
			return nil, err
		}
	}

	log.Info("experiment finished", "status", run.Status, "report", run.ReportPath)
	return run, nil
}

func (p *Pipeline) renderDocument(tgt *target.Target, opts Options) (experiment.Document, error) {
	if opts.ExperimentPath != "" {
		return experiment.Load(opts.ExperimentPath)
	}
	return p.templates.Render(opts.ChaosType, tgt, opts.Overrides)
}

// trigger invokes the disruption action. The call is expected to return
// quickly; the disruptive effect itself runs asynchronously in the target
// system, so sampling starts immediately afterwards. A failed trigger is
// recorded in the persisted result, never escalated.
func (p *Pipeline) trigger(ctx context.Context, tgt *target.Target, doc experiment.Document, opts Options) action.Result {
	if opts.DryRun {
		return action.Result{
			Status:  action.StatusSkipped,
			Message: "dry-run: disruption not triggered",
		}
	}
	act := p.actions.For(opts.ChaosType)
	p.log.Info("triggering disruption", "action", act.Name(), "target", tgt.Identifier)
	return act.Invoke(ctx, *tgt, action.Params(doc.Configuration()))
}

func runStatus(dryRun bool, result action.Result) string {
	if dryRun {
		return StatusDryRun
	}
	if result.Status == action.StatusFailed {
		return StatusFailed
	}
	return StatusCompleted
}

func chaosTypeOf(opts Options, doc experiment.Document) string {
	if opts.ChaosType != "" {
		return opts.ChaosType
	}
	if tags := doc.Tags(); len(tags) > 0 {
		return tags[0]
	}
	return "unspecified"
}

func newRunID() string {
	id := uuid.New()
	return "run-" + hex.EncodeToString(id[:])[:8]
}

func writeRunRecord(path string, run *Run) error {
	raw, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistence, "encoding run record", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, "writing run record", err)
	}
	return nil
}
