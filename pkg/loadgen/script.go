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
	"fmt"
	"time"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
)

const scriptBody = `import http from 'k6/http';
import { check, sleep } from 'k6';

export const options = %s;

export default function () {
  const res = http.get('%s');
  check(res, { 'status is 2xx': (r) => r.status >= 200 && r.status < 300 });
  sleep(1);
}
`

// buildScript generates the k6 script for the spec's profile.
func buildScript(spec Spec) string {
	return fmt.Sprintf(scriptBody, buildOptions(spec), spec.URL)
}

func buildOptions(spec Spec) string {
	threshold := spec.ThresholdMS
	if threshold <= 0 {
		threshold = 500
	}
	duration := spec.Duration
	if duration <= 0 {
		duration = defaults.ExperimentDuration
	}

	switch spec.Profile {
	case ProfileSpike:
		base := orDefault(spec.BaseUsers, 10)
		spike := orDefault(spec.SpikeUsers, 100)
		ramp := duration / 4
		hold := duration - 2*ramp
		return fmt.Sprintf(`{
  stages: [
    { duration: '%s', target: %d },
    { duration: '%s', target: %d },
    { duration: '%s', target: %d },
  ],
  thresholds: { http_req_duration: ['p(95)<%d'] },
}`, k6Duration(ramp), spike, k6Duration(hold), spike, k6Duration(ramp), base, threshold)

	case ProfileStress:
		rampUp := orDefault(spec.RampUpUsers, 50)
		maxUsers := orDefault(spec.MaxUsers, 200)
		stage := duration / 3
		return fmt.Sprintf(`{
  stages: [
    { duration: '%s', target: %d },
    { duration: '%s', target: %d },
    { duration: '%s', target: 0 },
  ],
  thresholds: { http_req_duration: ['p(95)<%d'] },
}`, k6Duration(stage), rampUp, k6Duration(stage), maxUsers, k6Duration(stage), threshold)

	default:
		users := orDefault(spec.VirtualUsers, 10)
		return fmt.Sprintf(`{
  vus: %d,
  duration: '%s',
  thresholds: { http_req_duration: ['p(95)<%d'] },
}`, users, k6Duration(duration), threshold)
	}
}

func k6Duration(d time.Duration) string {
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
