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

// Package logging wraps the standard library slog package with chaosexp
// defaults: structured JSON output to stderr, module/version context on every
// record, LOG_LEVEL environment configuration, and source location tracking
// for debug logs.
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("chaosexp", version)
//
//	    slog.Info("starting experiment", "run_id", runID)
//	    slog.Debug("detailed state", "targets", len(targets))
//	    slog.Error("trigger failed", "error", err)
//	}
//
// Supported log levels (case-insensitive): DEBUG, INFO (default),
// WARN/WARNING, ERROR. The LOG_LEVEL environment variable controls verbosity
// when no explicit level is given:
//
//	LOG_LEVEL=debug chaosexp run --type cpu-hog
package logging
