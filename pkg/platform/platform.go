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

// Package platform defines the virtualization-substrate collaborator: power
// control and inventory for the virtual machines hosting the cluster.
package platform

import "context"

// State is a coarse VM power state.
type State string

const (
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
	StateUnknown State = "unknown"
)

// VM is one machine in the platform inventory.
type VM struct {
	Name  string `json:"name"`
	State State  `json:"state"`
}

// Client is the VM-platform collaborator consumed by disruption actions and
// the CLI vm commands.
type Client interface {
	// PowerOn starts a stopped VM.
	PowerOn(ctx context.Context, name string) error

	// PowerOff stops a VM: gracefully by default, immediately when force
	// is set.
	PowerOff(ctx context.Context, name string, force bool) error

	// Reboot restarts a running VM.
	Reboot(ctx context.Context, name string) error

	// Status returns the VM's current power state.
	Status(ctx context.Context, name string) (*VM, error)

	// List enumerates the platform inventory.
	List(ctx context.Context) ([]VM, error)

	// Close releases the platform connection.
	Close() error
}
