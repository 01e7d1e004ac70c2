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

package action

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/scheduler"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// Drain marks the target node ineligible and migrates its allocations. The
// migration itself runs inside the scheduler; the trigger returns once the
// drain is accepted.
type Drain struct {
	Scheduler scheduler.Client
	Deadline  time.Duration
}

func (d *Drain) Name() string { return "node-drain" }

func (d *Drain) Invoke(ctx context.Context, tgt target.Target, _ Params) Result {
	if tgt.Kind != target.KindNode {
		return Result{
			Status:  StatusFailed,
			Message: fmt.Sprintf("drain requires a node target, got %s", tgt.Kind),
		}
	}

	deadline := d.Deadline
	if deadline <= 0 {
		deadline = defaults.DrainDeadline
	}

	if err := d.Scheduler.DrainNode(ctx, tgt.Identifier, deadline); err != nil {
		return Failed(fmt.Errorf("draining node %s: %w", tgt.Identifier, err))
	}

	slog.Info("node drain started", "node", tgt.Identifier, "deadline", deadline.String())
	result := Completed(fmt.Sprintf("node %s draining with deadline %s", tgt.Identifier, deadline))
	result.Output = map[string]any{"node": tgt.Identifier, "deadline": deadline.String()}
	return result
}
