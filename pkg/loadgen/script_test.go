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

package loadgen

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScriptConstantProfile(t *testing.T) {
	script := buildScript(Spec{
		Profile:      ProfileConstant,
		URL:          "http://web:9090/health",
		VirtualUsers: 25,
		Duration:     60 * time.Second,
		ThresholdMS:  300,
	})

	assert.Contains(t, script, "vus: 25")
	assert.Contains(t, script, "duration: '60s'")
	assert.Contains(t, script, "p(95)<300")
	assert.Contains(t, script, "http.get('http://web:9090/health')")
}

func TestBuildScriptSpikeProfile(t *testing.T) {
	script := buildScript(Spec{
		Profile:    ProfileSpike,
		URL:        "http://web:9090/health",
		BaseUsers:  10,
		SpikeUsers: 100,
		Duration:   120 * time.Second,
	})

	assert.Contains(t, script, "stages:")
	assert.Contains(t, script, "target: 100")
	assert.Contains(t, script, "target: 10")
}

func TestBuildScriptDefaults(t *testing.T) {
	script := buildScript(Spec{Profile: ProfileStress, URL: "http://localhost:8080"})
	assert.Contains(t, script, "target: 200")
	assert.Contains(t, script, "p(95)<500")
}

func TestRunWithoutBinaryDegrades(t *testing.T) {
	runner := &Runner{}
	result := runner.Run(context.Background(), Spec{URL: "http://localhost:8080"})

	assert.False(t, result.Available)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestReadSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	payload := `{
	  "metrics": {
	    "http_reqs": {"count": 1234},
	    "http_req_failed": {"value": 0.02},
	    "http_req_duration": {"avg": 45.5, "p(95)": 120.25}
	  }
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	summary, err := readSummary(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), summary.Requests)
	assert.Equal(t, 0.02, summary.FailedRate)
	assert.Equal(t, 45.5, summary.AvgMS)
	assert.Equal(t, 120.25, summary.P95MS)
}
