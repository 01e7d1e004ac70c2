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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"overrides.json", FormatJSON},
		{"overrides.YAML", FormatYAML},
		{"overrides.yml", FormatYAML},
		{"out.table", FormatTable},
		{"mystery.bin", FormatJSON},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatFromPath(tc.path), tc.path)
	}
}

func TestReaderDeserializeJSON(t *testing.T) {
	r, err := NewReader(FormatJSON, strings.NewReader(`{"run_id":"run-1","status":"completed"}`))
	require.NoError(t, err)

	var out sampleRun
	require.NoError(t, r.Deserialize(&out))
	assert.Equal(t, "run-1", out.RunID)
}

func TestReaderDeserializeYAML(t *testing.T) {
	r, err := NewReader(FormatYAML, strings.NewReader("run_id: run-2\nstatus: failed\n"))
	require.NoError(t, err)

	var out sampleRun
	require.NoError(t, r.Deserialize(&out))
	assert.Equal(t, "failed", out.Status)
}

func TestReaderRejectsTableFormat(t *testing.T) {
	_, err := NewReader(FormatTable, strings.NewReader(""))
	require.Error(t, err)
}

func TestFileReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run_id: run-3\n"), 0o644))

	out, err := FromFile[sampleRun](path)
	require.NoError(t, err)
	assert.Equal(t, "run-3", out.RunID)
}

func TestFileReaderMissingFile(t *testing.T) {
	_, err := NewFileReader(FormatJSON, filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestFileReaderRemoteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, httpReaderUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"run_id":"run-remote"}`))
	}))
	defer srv.Close()

	reader, err := NewFileReader(FormatJSON, srv.URL+"/run.json")
	require.NoError(t, err)
	defer reader.Close()

	var out sampleRun
	require.NoError(t, reader.Deserialize(&out))
	assert.Equal(t, "run-remote", out.RunID)
}

func TestCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	reader, err := NewFileReaderAuto(path)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.NoError(t, reader.Close())
}
