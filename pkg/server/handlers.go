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

package server

import (
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/serializer"
)

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handling default route",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
	)

	resp := struct {
		Name      string   `json:"name"`
		Version   string   `json:"version"`
		Ready     bool     `json:"ready"`
		Timestamp string   `json:"timestamp"`
		Routes    []string `json:"routes"`
	}{
		Name:      s.config.Name,
		Version:   s.config.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes: []string{
			"GET /v1/targets",
			"GET /v1/runs",
			"GET /v1/runs/{id}",
			"GET /health",
			"GET /ready",
			"GET /metrics",
		},
	}

	s.mu.RLock()
	resp.Ready = s.ready
	s.mu.RUnlock()

	serializer.RespondJSON(w, http.StatusOK, resp)
}

// handleTargets handles GET /v1/targets. The catalog is recomputed on
// every request; resolution already tolerates partial scheduler failures.
func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := s.resolver.Resolve(r.Context())
	if err != nil {
		code := apperrors.CodeOf(err)
		writeError(w, r, statusFor(code), code, "target resolution failed", true, nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, TargetsResponse{
		Count:   len(targets),
		Targets: targets,
	})
}

// handleRuns handles GET /v1/runs.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		code := apperrors.CodeOf(err)
		writeError(w, r, statusFor(code), code, "listing runs failed", true, nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, RunsResponse{
		Count: len(runs),
		Runs:  runs,
	})
}

// handleRun handles GET /v1/runs/{id}.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		writeError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
			"run id is required", false, nil)
		return
	}

	bundle, err := s.store.ReadBundle(runID)
	if err != nil {
		code := apperrors.CodeOf(err)
		writeError(w, r, statusFor(code), code, "run not found", false,
			map[string]any{"run_id": runID})
		return
	}

	serializer.RespondJSON(w, http.StatusOK, bundle)
}
