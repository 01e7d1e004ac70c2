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

// Package cli implements the command-line interface for the chaosexp tool.
//
// # Overview
//
// The chaosexp CLI drives chaos experiments against Nomad-scheduled
// workloads, cluster nodes, and libvirt virtual machines. It discovers
// targets, renders experiment documents from templates, triggers
// disruptions, samples metrics around them, and persists run reports.
//
// # Commands
//
// run - Execute a chaos experiment:
//
//	chaosexp run --target web --type cpu_hog --collect-metrics
//
// Resolves the target, renders the experiment document, captures a metric
// baseline, triggers the disruption, samples during the experiment window,
// captures the post state, and writes JSON/Markdown/HTML run artifacts.
// A comma-separated --target list runs the experiment once per target.
//
// targets - List resolvable targets:
//
//	chaosexp targets [--format yaml|json|table]
//
// experiments - List available experiment templates:
//
//	chaosexp experiments
//
// report - Inspect and publish run reports:
//
//	chaosexp report show [--run RUN_ID]
//	chaosexp report push --run RUN_ID --ref oci://registry.local/chaos/reports
//
// node - Drain or recover a cluster node:
//
//	chaosexp node drain node-1 [--deadline 5m]
//	chaosexp node recover node-1
//
// vm - Control virtual machines:
//
//	chaosexp vm off db-vm --force
//	chaosexp vm list
//
// serve - Run the read-only HTTP API:
//
//	chaosexp serve [--port 8080]
//
// # Global Flags
//
//	--config, -c    Config file path (default: discover chaosexp.{yaml,yml,json})
//	--log-level     Log level: debug, info, warn, error (default: info)
package cli
