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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/pipeline"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/serializer"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:                  "run",
		EnableShellCompletion: true,
		Usage:                 "Execute a chaos experiment",
		Description: `Execute a chaos experiment against a resolved target:
  1. Resolve the target from the scheduler catalog
  2. Render the experiment document from its template
  3. Capture a metric baseline (unless --dry-run)
  4. Trigger the disruption
  5. Sample metrics during the experiment window
  6. Capture the post state and compare against the baseline
  7. Persist JSON, Markdown, and HTML run artifacts

A comma-separated --target list runs the full experiment once per target,
sequentially. The run record of the first target is printed; all runs are
persisted to the reports directory.

# Examples

Dry-run a CPU hog against the first discovered target:
  chaosexp run --type cpu_hog --dry-run

CPU hog with metric collection:
  chaosexp run --target web --type cpu_hog --collect-metrics

Custom experiment document with overrides:
  chaosexp run --target web --experiment ./my-experiment.json \
    --override duration_seconds=300 --override memory_mb=4096`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "target",
				Aliases: []string{"s"},
				Usage:   "Target identifier or name; comma-separated for fan-out (default: first discovered)",
			},
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"e"},
				Usage:   "Chaos type to render (see 'chaosexp experiments' for the catalog)",
			},
			&cli.StringFlag{
				Name:  "experiment",
				Usage: "Path or URL of a pre-rendered experiment document (overrides --type template rendering)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Render and persist without triggering the disruption",
			},
			&cli.BoolFlag{
				Name:  "collect-metrics",
				Usage: "Capture baseline/during/post metric snapshots around the disruption",
			},
			&cli.DurationFlag{
				Name:  "metrics-duration",
				Usage: "Length of the during-experiment sampling window",
			},
			&cli.DurationFlag{
				Name:  "metrics-interval",
				Usage: "Interval between during-experiment samples",
			},
			&cli.StringSliceFlag{
				Name:  "override",
				Usage: "Template value override (format: key=value, can be repeated)",
			},
			&cli.StringFlag{
				Name:  "overrides-file",
				Usage: "Path or URL of a YAML/JSON file with template value overrides",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			overrides, err := parseOverrides(cmd.StringSlice("override"), cmd.String("overrides-file"))
			if err != nil {
				return err
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}

			opts := pipeline.Options{
				TargetID:        cmd.String("target"),
				ChaosType:       cmd.String("type"),
				ExperimentPath:  cmd.String("experiment"),
				DryRun:          cmd.Bool("dry-run") || tk.settings.Chaos.DryRun,
				CollectMetrics:  cmd.Bool("collect-metrics"),
				MetricsDuration: cmd.Duration("metrics-duration"),
				MetricsInterval: cmd.Duration("metrics-interval"),
				Overrides:       overrides,
			}
			if opts.MetricsDuration == 0 {
				opts.MetricsDuration = tk.settings.Chaos.MetricsDuration()
			}
			if opts.MetricsInterval == 0 {
				opts.MetricsInterval = tk.settings.Chaos.MetricsInterval()
			}

			started := time.Now()
			run, err := tk.pipeline.Execute(ctx, opts)
			if err != nil {
				return fmt.Errorf("experiment failed: %w", err)
			}

			slog.Info("experiment finished",
				"runID", run.RunID,
				"status", run.Status,
				"target", run.TargetID,
				"duration", time.Since(started).String(),
				"report", run.ReportPath,
			)

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, run)
		},
	}
}
