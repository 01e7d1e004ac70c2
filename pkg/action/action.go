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

// Package action implements the disruption actions an experiment can
// trigger. Invoke is a total function: a failed disruption start is recorded
// in the Result, never raised, because a failed trigger still counts as an
// attempted experiment.
package action

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// Params carries the rendered experiment configuration into an action.
// Values are JSON-decoded, so numbers may arrive as float64 or string.
type Params map[string]any

// Int returns the named parameter as an int, or fallback.
func (p Params) Int(key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

// String returns the named parameter as a string, or fallback.
func (p Params) String(key, fallback string) string {
	switch v := p[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case fmt.Stringer:
		return v.String()
	}
	return fallback
}

// Status classifies an action outcome.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Result is the raw trigger outcome persisted with the run.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Output  map[string]any `json:"output,omitempty"`
}

// Completed builds a successful result.
func Completed(message string) Result {
	return Result{Status: StatusCompleted, Message: message}
}

// Failed builds a failed result from an error.
func Failed(err error) Result {
	return Result{Status: StatusFailed, Message: err.Error()}
}

// Action starts one kind of disruption. The disruptive effect runs
// asynchronously in the target system; Invoke returns as soon as the
// disruption has been started (or has failed to start).
type Action interface {
	Name() string
	Invoke(ctx context.Context, tgt target.Target, params Params) Result
}

// Registry routes chaos types to actions.
type Registry struct {
	actions map[string]Action
	def     Action
}

// NewRegistry creates a registry with the given fallback action for chaos
// types that have no dedicated entry.
func NewRegistry(fallback Action) *Registry {
	return &Registry{actions: map[string]Action{}, def: fallback}
}

// Register binds one or more chaos types to an action. Types are normalized
// the way the template index normalizes them.
func (r *Registry) Register(a Action, chaosTypes ...string) {
	for _, t := range chaosTypes {
		r.actions[normalize(t)] = a
	}
}

// For returns the action for the chaos type, falling back to the default.
func (r *Registry) For(chaosType string) Action {
	if a, ok := r.actions[normalize(chaosType)]; ok {
		return a
	}
	return r.def
}

func normalize(chaosType string) string {
	return strings.ReplaceAll(strings.ToLower(chaosType), "-", "_")
}

// Noop is the fallback action for dry runs and for chaos types whose
// disruption runs entirely inside the experiment document.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Invoke(_ context.Context, tgt target.Target, _ Params) Result {
	return Result{
		Status:  StatusSkipped,
		Message: fmt.Sprintf("no disruption action bound for target %s", tgt.Identifier),
	}
}
