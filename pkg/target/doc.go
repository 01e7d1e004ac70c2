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

// Package target resolves raw scheduler records into the normalized target
// catalog used everywhere downstream.
//
// A Target is a unit of disruption: a scheduled service correlated with its
// representative allocation, a cluster node, or a virtual machine. Common
// fields are built through typed attribute structs for compile-time checks,
// while the underlying attribute bag stays open for platform extras.
//
// Resolution is a merge of three independent scheduler list calls. Any of
// them may fail without failing the catalog; per-target enrichment failures
// fall back to placeholder values. Identifiers are unique within one
// resolution pass, and a catalog is never mutated after it is returned.
package target
