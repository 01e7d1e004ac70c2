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

	"github.com/urfave/cli/v3"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
)

func nodeCmd() *cli.Command {
	return &cli.Command{
		Name:                  "node",
		EnableShellCompletion: true,
		Usage:                 "Drain and recover cluster nodes",
		Commands: []*cli.Command{
			nodeDrainCmd(),
			nodeRecoverCmd(),
		},
	}
}

func nodeDrainCmd() *cli.Command {
	return &cli.Command{
		Name:      "drain",
		Usage:     "Drain a node, migrating its allocations",
		ArgsUsage: "NODE_ID",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "deadline",
				Value: defaults.DrainDeadline,
				Usage: "Deadline for allocation migration before force-stopping",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			nodeID := cmd.Args().First()
			if nodeID == "" {
				return fmt.Errorf("node id is required")
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}

			if err := tk.scheduler.DrainNode(ctx, nodeID, cmd.Duration("deadline")); err != nil {
				return fmt.Errorf("draining node %q: %w", nodeID, err)
			}

			slog.Info("node drain initiated", "nodeID", nodeID, "deadline", cmd.Duration("deadline").String())
			return nil
		},
	}
}

func nodeRecoverCmd() *cli.Command {
	return &cli.Command{
		Name:      "recover",
		Usage:     "Disable drain and restore scheduling eligibility",
		ArgsUsage: "NODE_ID",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			nodeID := cmd.Args().First()
			if nodeID == "" {
				return fmt.Errorf("node id is required")
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}

			if err := tk.scheduler.RecoverNode(ctx, nodeID); err != nil {
				return fmt.Errorf("recovering node %q: %w", nodeID, err)
			}

			slog.Info("node recovered", "nodeID", nodeID)
			return nil
		},
	}
}
