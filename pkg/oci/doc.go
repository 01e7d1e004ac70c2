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

// Package oci pushes experiment run reports to OCI-compliant registries
// using ORAS, so runs can be archived and distributed alongside container
// images (GHCR, ECR, local registries).
//
// A pushed artifact carries one run's JSON bundle plus its rendered
// Markdown and HTML reports as separate layers, under the artifact type
// "application/vnd.chaosexp.report". Consumers that do not understand this
// type should treat the artifact as a non-executable blob.
//
// Authentication uses the standard Docker credential store
// (~/.docker/config.json) via the ORAS credentials package.
package oci
