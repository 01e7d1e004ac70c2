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

// Package defaults provides centralized configuration constants for chaosexp.
//
// These values are the fallbacks used when neither the configuration file nor
// CLI flags specify an alternative. Centralizing them keeps the pipeline,
// collectors, and adapters consistent.
package defaults

import "time"

// Metrics sampling cadence.
const (
	// MetricsDuration is the default continuous sampling window.
	MetricsDuration = 60 * time.Second

	// MetricsInterval is the default gap between successive samples.
	MetricsInterval = 5 * time.Second

	// PrometheusTimeout bounds a single Prometheus query.
	PrometheusTimeout = 10 * time.Second

	// CollectorTimeout bounds a single snapshot collection against the
	// scheduler. Collectors respect shorter parent context deadlines.
	CollectorTimeout = 10 * time.Second
)

// Scheduler operations.
const (
	// DrainDeadline is the default node drain migration deadline.
	DrainDeadline = 5 * time.Minute

	// SchedulerRateLimit is the sustained scheduler API request rate.
	SchedulerRateLimit = 50

	// SchedulerRateBurst is the scheduler API request burst allowance.
	SchedulerRateBurst = 100
)

// Disruption defaults.
const (
	// ExperimentDuration is the default disruption window used by
	// experiment templates.
	ExperimentDuration = 120 * time.Second

	// LoadTestTimeout bounds a single load-generator execution beyond its
	// scripted duration, covering ramp-up and summary flush.
	LoadTestTimeout = 10 * time.Minute
)

// HTTP client defaults used by the serializer's reader.
const (
	// HTTPClientTimeout bounds a whole request including body read.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout bounds TCP connection establishment.
	HTTPConnectTimeout = 10 * time.Second

	// HTTPKeepAlive is the keep-alive probe interval for reused
	// connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPTLSHandshakeTimeout bounds the TLS handshake.
	HTTPTLSHandshakeTimeout = 10 * time.Second

	// HTTPResponseHeaderTimeout bounds the wait for response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is how long idle connections stay pooled.
	HTTPIdleConnTimeout = 90 * time.Second
)

// Dashboard server timeouts.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Report artifacts.
const (
	// ReportsDir is the default run artifact directory.
	ReportsDir = "reports"

	// ServicePort is the port assumed for services whose job spec exposes
	// no network information.
	ServicePort = 8080

	// HealthPath is the builtin health endpoint before override tables
	// are applied.
	HealthPath = "/health"

	// HealthPathDefault is the generic override applied when a service
	// spec leaves the builtin health path untouched.
	HealthPathDefault = "/monitoring/health"
)
