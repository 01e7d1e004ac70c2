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

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/serializer"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{name: "valid yaml format", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "valid json format", format: "json", wantFormat: serializer.FormatJSON},
		{name: "valid table format", format: "table", wantFormat: serializer.FormatTable},
		{name: "invalid format xml", format: "xml", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					require.NoError(t, err)
					assert.Equal(t, tt.wantFormat, got)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		})
	}
}

func TestParseOverridesInline(t *testing.T) {
	overrides, err := parseOverrides([]string{
		"duration_seconds=300",
		"packet_loss_percentage=15%",
		"latency_ms=250.5",
		"dry=true",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 300, overrides["duration_seconds"])
	assert.Equal(t, "15%", overrides["packet_loss_percentage"])
	assert.Equal(t, 250.5, overrides["latency_ms"])
	assert.Equal(t, true, overrides["dry"])
}

func TestParseOverridesInvalidPair(t *testing.T) {
	_, err := parseOverrides([]string{"no-equals-sign"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key=value")

	_, err = parseOverrides([]string{"=value"}, "")
	require.Error(t, err)
}

func TestParseOverridesFileWithInlineWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("memory_mb: 1024\nio_workers: 8\n"), 0o644))

	overrides, err := parseOverrides([]string{"memory_mb=4096"}, path)
	require.NoError(t, err)

	assert.Equal(t, 4096, overrides["memory_mb"])
	assert.Equal(t, 8, overrides["io_workers"])
}

func TestParseOverridesMissingFile(t *testing.T) {
	_, err := parseOverrides(nil, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestParseOverridesEmpty(t *testing.T) {
	overrides, err := parseOverrides(nil, "")
	require.NoError(t, err)
	assert.Nil(t, overrides)
}

func TestRootCommandTree(t *testing.T) {
	root := rootCmd()

	names := make([]string, 0, len(root.Commands))
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}

	for _, want := range []string{"run", "targets", "experiments", "report", "node", "vm", "serve"} {
		assert.Contains(t, names, want)
	}
}
