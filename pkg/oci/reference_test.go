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

package oci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		registry   string
		repository string
		tag        string
	}{
		{
			name:       "full reference",
			target:     "oci://ghcr.io/org/chaos-reports:run-abc12345",
			registry:   "ghcr.io",
			repository: "org/chaos-reports",
			tag:        "run-abc12345",
		},
		{
			name:       "no tag",
			target:     "oci://ghcr.io/org/chaos-reports",
			registry:   "ghcr.io",
			repository: "org/chaos-reports",
			tag:        "",
		},
		{
			name:       "local registry with port",
			target:     "oci://localhost:5000/reports:latest",
			registry:   "localhost:5000",
			repository: "reports",
			tag:        "latest",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := ParseReference(tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.registry, ref.Registry)
			assert.Equal(t, tc.repository, ref.Repository)
			assert.Equal(t, tc.tag, ref.Tag)
		})
	}
}

func TestParseReferenceInvalid(t *testing.T) {
	_, err := ParseReference("oci://not a reference")
	require.Error(t, err)
}

func TestReferenceStrings(t *testing.T) {
	ref := &Reference{Registry: "ghcr.io", Repository: "org/chaos-reports", Tag: "run-1"}
	assert.Equal(t, "ghcr.io/org/chaos-reports:run-1", ref.ImageReference())
	assert.Equal(t, "oci://ghcr.io/org/chaos-reports:run-1", ref.String())

	untagged := ref.WithTag("")
	assert.Equal(t, "ghcr.io/org/chaos-reports", untagged.ImageReference())
}

func TestPushValidation(t *testing.T) {
	ctx := t.Context()

	_, err := Push(ctx, PushOptions{})
	require.Error(t, err, "missing reference")

	_, err = Push(ctx, PushOptions{Reference: &Reference{Registry: "ghcr.io", Repository: "r"}})
	require.Error(t, err, "missing tag")

	_, err = Push(ctx, PushOptions{Reference: &Reference{Registry: "ghcr.io", Repository: "r", Tag: "t"}})
	require.Error(t, err, "missing files")
}

func TestLayerMediaType(t *testing.T) {
	assert.Equal(t, "application/json", layerMediaType("run-1.json"))
	assert.Equal(t, "text/markdown", layerMediaType("run-1.md"))
	assert.Equal(t, "text/html", layerMediaType("run-1.HTML"))
}
