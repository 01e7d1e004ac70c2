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

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/platform"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// PowerOp is a VM power operation.
type PowerOp string

const (
	PowerOff PowerOp = "power-off"
	PowerOn  PowerOp = "power-on"
	Reboot   PowerOp = "reboot"
)

// VMPower applies a power operation to the VM named by the target. Used by
// host-down style experiments against the virtualization substrate.
type VMPower struct {
	Platform platform.Client
	Op       PowerOp
}

func (v *VMPower) Name() string { return "vm-" + string(v.Op) }

func (v *VMPower) Invoke(ctx context.Context, tgt target.Target, params Params) Result {
	name := tgt.Attr(target.AttrName, tgt.Identifier)

	var err error
	switch v.Op {
	case PowerOn:
		err = v.Platform.PowerOn(ctx, name)
	case Reboot:
		err = v.Platform.Reboot(ctx, name)
	default:
		force := params.String("force", "false") == "true"
		err = v.Platform.PowerOff(ctx, name, force)
	}
	if err != nil {
		return Failed(fmt.Errorf("vm %s %s: %w", name, v.Op, err))
	}

	slog.Info("vm power operation applied", "vm", name, "op", string(v.Op))
	result := Completed(fmt.Sprintf("vm %s: %s requested", name, v.Op))
	result.Output = map[string]any{"vm": name, "operation": string(v.Op)}
	return result
}
