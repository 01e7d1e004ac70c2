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

	"github.com/urfave/cli/v3"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/serializer"
)

func targetsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "targets",
		Aliases:               []string{"discover"},
		EnableShellCompletion: true,
		Usage:                 "List resolvable chaos targets",
		Description: `Discover and list the targets experiments can run against:
  - Scheduled services with their node, allocation, and address
  - Cluster client nodes with drain and eligibility state

The catalog can be output in JSON, YAML, or table format.`,
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

			targets, err := tk.resolver.Resolve(ctx)
			if err != nil {
				return fmt.Errorf("resolving targets: %w", err)
			}

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, targets)
		},
	}
}

func experimentsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "experiments",
		EnableShellCompletion: true,
		Usage:                 "List available experiment templates",
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

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, tk.templates.Types())
		},
	}
}
