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

package serializer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRun struct {
	RunID  string            `json:"run_id" yaml:"run_id"`
	Status string            `json:"status" yaml:"status"`
	Labels map[string]string `json:"labels" yaml:"labels"`
}

func sample() sampleRun {
	return sampleRun{
		RunID:  "run-abc12345",
		Status: "completed",
		Labels: map[string]string{"chaos": "cpu_hog"},
	}
}

func TestSerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)

	require.NoError(t, w.Serialize(context.Background(), sample()))
	assert.Contains(t, buf.String(), `"run_id": "run-abc12345"`)
}

func TestSerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatYAML, &buf)

	require.NoError(t, w.Serialize(context.Background(), sample()))
	assert.Contains(t, buf.String(), "run_id: run-abc12345")
	assert.Contains(t, buf.String(), "chaos: cpu_hog")
}

func TestSerializeTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)

	require.NoError(t, w.Serialize(context.Background(), sample()))
	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "RunID")
	assert.Contains(t, out, "Labels.chaos")
	assert.Contains(t, out, "cpu_hog")
}

func TestSerializeTableScalar(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)

	require.NoError(t, w.Serialize(context.Background(), 42))
	assert.Contains(t, buf.String(), "value\t42")
}

func TestUnknownFormatDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)

	require.NoError(t, w.Serialize(context.Background(), sample()))
	assert.Contains(t, buf.String(), `"run_id"`)
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w := NewFileWriterOrStdout(FormatJSON, path)

	require.NoError(t, w.Serialize(context.Background(), sample()))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "run-abc12345")
}

func TestSupportedFormats(t *testing.T) {
	assert.ElementsMatch(t, []string{"json", "yaml", "table"}, SupportedFormats())
}
