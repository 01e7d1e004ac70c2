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

	"github.com/urfave/cli/v3"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Run the read-only HTTP API",
		Description: `Serve the target catalog and persisted run reports over HTTP:

  GET /v1/targets      resolved target catalog
  GET /v1/runs         persisted run ids, newest first
  GET /v1/runs/{id}    one run's bundle
  GET /health          liveness
  GET /ready           readiness
  GET /metrics         Prometheus metrics

Experiments are triggered from the CLI, not the API.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides config and PORT)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tk, err := wire(cmd)
			if err != nil {
				return err
			}

			cfg := server.NewConfig()
			cfg.Version = version
			if tk.settings.Server.Address != "" {
				cfg.Address = tk.settings.Server.Address
			}
			if tk.settings.Server.Port > 0 {
				cfg.Port = tk.settings.Server.Port
			}
			if port := cmd.Int("port"); port > 0 {
				cfg.Port = int(port)
			}

			s, err := server.NewServer(cfg, tk.resolver, tk.store)
			if err != nil {
				return err
			}
			return s.Start(ctx)
		},
	}
}
