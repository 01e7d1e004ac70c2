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

package target

import "strconv"

// Kind classifies a target and selects the collector backend used for it.
type Kind string

const (
	// KindService is a scheduled workload correlated with an allocation.
	KindService Kind = "service"
	// KindNode is a workload cluster client node.
	KindNode Kind = "node"
	// KindVM is a virtual machine on the virtualization substrate.
	KindVM Kind = "vm"
)

// Well-known attribute keys. The attribute bag is open: adapters may add
// platform-specific extras under their own keys, but the keys below are the
// stable contract read by the pipeline, templates, and collectors.
const (
	AttrName           = "name"
	AttrNode           = "node"
	AttrStatus         = "status"
	AttrAllocation     = "allocation"
	AttrAddress        = "address"
	AttrPort           = "port"
	AttrHealthEndpoint = "health_endpoint"
	AttrDrain          = "drain"
	AttrEligibility    = "scheduling_eligibility"
)

// Target is a normalized, addressable unit of disruption. Targets are
// recomputed on every resolution pass and never mutated after construction.
type Target struct {
	Identifier string            `json:"identifier"`
	Kind       Kind              `json:"kind"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Attr returns the named attribute, or fallback when absent or empty.
func (t Target) Attr(key, fallback string) string {
	if v, ok := t.Attributes[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Name returns the display name, falling back to the identifier.
func (t Target) Name() string {
	return t.Attr(AttrName, t.Identifier)
}

// ServiceAttributes are the common fields of a service target. The struct
// exists for compile-time field checking; it is flattened into the open
// attribute bag on construction.
type ServiceAttributes struct {
	Name           string
	Node           string
	Status         string
	Allocation     string
	Address        string
	Port           int
	HealthEndpoint string
}

// NewServiceTarget builds a service target from its typed attributes plus
// any platform-specific extras.
func NewServiceTarget(identifier string, attrs ServiceAttributes, extras map[string]string) Target {
	bag := make(map[string]string, 7+len(extras))
	for k, v := range extras {
		bag[k] = v
	}
	bag[AttrName] = attrs.Name
	bag[AttrNode] = orUnknown(attrs.Node)
	bag[AttrStatus] = orUnknown(attrs.Status)
	if attrs.Allocation != "" {
		bag[AttrAllocation] = attrs.Allocation
	}
	bag[AttrAddress] = attrs.Address
	bag[AttrPort] = strconv.Itoa(attrs.Port)
	bag[AttrHealthEndpoint] = attrs.HealthEndpoint
	return Target{Identifier: identifier, Kind: KindService, Attributes: bag}
}

// NodeAttributes are the common fields of a node target.
type NodeAttributes struct {
	Name        string
	Status      string
	Drain       bool
	Eligibility string
}

// NewNodeTarget builds a node target from its typed attributes.
func NewNodeTarget(identifier string, attrs NodeAttributes) Target {
	return Target{
		Identifier: identifier,
		Kind:       KindNode,
		Attributes: map[string]string{
			AttrName:        orUnknown(attrs.Name),
			AttrStatus:      orUnknown(attrs.Status),
			AttrDrain:       strconv.FormatBool(attrs.Drain),
			AttrEligibility: attrs.Eligibility,
		},
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
