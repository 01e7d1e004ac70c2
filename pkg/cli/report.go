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
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/oci"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/report"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/serializer"
)

var runFlag = &cli.StringFlag{
	Name:    "run",
	Aliases: []string{"r"},
	Usage:   "Run id (default: latest run in the reports directory)",
}

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "report",
		EnableShellCompletion: true,
		Usage:                 "Inspect and publish run reports",
		Commands: []*cli.Command{
			reportShowCmd(),
			reportListCmd(),
			reportPushCmd(),
		},
	}
}

func reportShowCmd() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Aliases: []string{"generate"},
		Usage:   "Print a run report",
		Description: `Print a persisted run report. With --markdown the rendered Markdown
report is printed verbatim; otherwise the run bundle is serialized in the
requested format.`,
		Flags: []cli.Flag{
			runFlag,
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Print the rendered Markdown report instead of the bundle",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}

			runID, err := resolveRunID(tk.store, cmd.String("run"))
			if err != nil {
				return err
			}

			bundle, err := tk.store.ReadBundle(runID)
			if err != nil {
				return fmt.Errorf("reading run %q: %w", runID, err)
			}

			if cmd.Bool("markdown") {
				md := report.RenderMarkdown(runID, *bundle)
				out := cmd.String("output")
				if out == "" {
					fmt.Fprint(os.Stdout, md)
					return nil
				}
				return os.WriteFile(out, []byte(md), 0o644)
			}

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, bundle)
		},
	}
}

func reportListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List persisted runs, newest first",
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}

			runs, err := tk.store.ListRuns()
			if err != nil {
				return fmt.Errorf("listing runs: %w", err)
			}

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, runs)
		},
	}
}

func reportPushCmd() *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Push a run's report artifacts to an OCI registry",
		Description: `Push one run's JSON, Markdown, and HTML artifacts to an OCI registry.
Each artifact becomes its own layer with a content-appropriate media type.
The tag defaults to the run id.

# Examples

Push the latest run:
  chaosexp report push --ref oci://registry.local/chaos/reports

Push a specific run with an explicit tag:
  chaosexp report push --run run-ab12cd34 --ref oci://registry.local/chaos/reports:nightly`,
		Flags: []cli.Flag{
			runFlag,
			&cli.StringFlag{
				Name:     "ref",
				Usage:    "Registry reference (e.g. oci://registry.local/chaos/reports[:tag])",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the registry connection",
			},
			&cli.BoolFlag{
				Name:  "insecure",
				Usage: "Skip TLS certificate verification",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tk, err := wire(cmd)
			if err != nil {
				return err
			}

			runID, err := resolveRunID(tk.store, cmd.String("run"))
			if err != nil {
				return err
			}

			ref, err := oci.ParseReference(cmd.String("ref"))
			if err != nil {
				return fmt.Errorf("parsing registry reference: %w", err)
			}
			if ref.Tag == "" {
				ref = ref.WithTag(runID)
			}

			files, err := runArtifacts(tk.store.Dir(), runID)
			if err != nil {
				return err
			}

			result, err := oci.Push(ctx, oci.PushOptions{
				SourceDir:   tk.store.Dir(),
				Files:       files,
				Reference:   ref,
				PlainHTTP:   cmd.Bool("plain-http"),
				InsecureTLS: cmd.Bool("insecure"),
				Annotations: map[string]string{
					"chaosexp.run.id": runID,
				},
			})
			if err != nil {
				return fmt.Errorf("pushing report artifacts: %w", err)
			}

			slog.Info("report artifacts pushed",
				"runID", runID,
				"reference", result.Reference,
				"digest", result.Digest,
			)
			fmt.Fprintln(os.Stdout, result.Reference)
			return nil
		},
	}
}

// resolveRunID defaults to the latest persisted run.
func resolveRunID(store *report.Store, runID string) (string, error) {
	if runID != "" {
		return runID, nil
	}
	latest, err := store.LatestRunID()
	if err != nil {
		return "", fmt.Errorf("no run id given and no runs found: %w", err)
	}
	return latest, nil
}

// runArtifacts lists the existing artifact files for a run. The JSON
// bundle is required; Markdown and HTML are included when present.
func runArtifacts(dir, runID string) ([]string, error) {
	bundleName := runID + ".json"
	if _, err := os.Stat(filepath.Join(dir, bundleName)); err != nil {
		return nil, fmt.Errorf("run %q has no persisted bundle: %w", runID, err)
	}

	files := []string{bundleName}
	for _, ext := range []string{".md", ".html"} {
		name := runID + ext
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			files = append(files, name)
		}
	}
	return files, nil
}
