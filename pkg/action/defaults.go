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
	"time"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/platform"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/scheduler"
)

// DefaultRegistry wires the standard chaos-type routing. vm may be nil when
// no virtualization substrate is configured; VM chaos types then fall back
// to the noop action.
func DefaultRegistry(sched scheduler.Client, vm platform.Client, load LoadRunner, drainDeadline time.Duration) *Registry {
	r := NewRegistry(Noop{})

	r.Register(&Stress{Scheduler: sched, Mode: "cpu"}, "cpu_hog")
	r.Register(&Stress{Scheduler: sched, Mode: "memory"}, "memory_hog")
	r.Register(&Stress{Scheduler: sched, Mode: "disk"}, "disk_io")

	r.Register(&Drain{Scheduler: sched, Deadline: drainDeadline}, "node_drain")

	if vm != nil {
		r.Register(&VMPower{Platform: vm, Op: PowerOff}, "vm_shutdown", "host_down")
		r.Register(&VMPower{Platform: vm, Op: Reboot}, "vm_reboot")
	}

	if load != nil {
		r.Register(&Load{Runner: load, Profile: "constant"}, "k6_load_test", "load_test")
		r.Register(&Load{Runner: load, Profile: "spike"}, "k6_spike_test", "spike_test")
		r.Register(&Load{Runner: load, Profile: "stress"}, "k6_stress_test", "stress_test")
	}

	return r
}
