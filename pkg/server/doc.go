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

// Package server exposes the read-only HTTP API of the chaos tool: the
// resolved target catalog and the persisted experiment runs, plus the
// usual operational endpoints.
//
// Routes:
//
//	GET /              service descriptor
//	GET /health        liveness
//	GET /ready         readiness
//	GET /metrics       Prometheus metrics
//	GET /v1/targets    resolved target catalog
//	GET /v1/runs       persisted run ids, newest first
//	GET /v1/runs/{id}  one run's full bundle
//
// The API is read-only: experiments are triggered from the
// CLI, never over the network. API endpoints go through a middleware
// chain providing request ids, rate limiting, panic recovery, request
// logging, and RED metrics.
package server
