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

package metrics

import "time"

// CPU is the CPU family of a snapshot.
type CPU struct {
	Percent          float64 `json:"percent"`
	SystemTicks      float64 `json:"system_ticks"`
	UserTicks        float64 `json:"user_ticks"`
	ThrottledPeriods uint64  `json:"throttled_periods"`
}

// Memory is the memory family of a snapshot. Usage is the comparison field;
// the remaining counters are descriptive.
type Memory struct {
	RSS      uint64 `json:"rss"`
	Cache    uint64 `json:"cache"`
	Usage    uint64 `json:"usage"`
	MaxUsage uint64 `json:"max_usage"`
}

// Disk is the disk I/O family of a snapshot. All values are cumulative
// counters, not rates.
type Disk struct {
	ReadBytes  uint64 `json:"read_bytes"`
	WriteBytes uint64 `json:"write_bytes"`
	ReadOps    uint64 `json:"read_ops"`
	WriteOps   uint64 `json:"write_ops"`
}

// TotalBytes returns the combined read and write byte counter.
func (d Disk) TotalBytes() uint64 {
	return d.ReadBytes + d.WriteBytes
}

// Snapshot is one point-in-time resource reading for a subject. Metric
// families are pointers: a nil family means the backend does not report it,
// which is distinct from a zero-valued reading. When Error is set the
// numeric fields are zero-valued placeholders and must not enter aggregate
// computations.
type Snapshot struct {
	Timestamp    time.Time `json:"timestamp"`
	Label        string    `json:"label"`
	SubjectID    string    `json:"subject_id"`
	SubjectName  string    `json:"subject_name,omitempty"`
	ClientStatus string    `json:"client_status,omitempty"`
	Tasks        int       `json:"tasks,omitempty"`

	CPU    *CPU    `json:"cpu,omitempty"`
	Memory *Memory `json:"memory,omitempty"`
	Disk   *Disk   `json:"disk,omitempty"`

	Error string `json:"error,omitempty"`
}

// Failed reports whether the snapshot records a collection failure instead
// of a reading.
func (s Snapshot) Failed() bool {
	return s.Error != ""
}

// ErrorSnapshot builds the placeholder snapshot recorded when collection
// fails. Numeric families stay nil so downstream aggregation skips them.
func ErrorSnapshot(label, subjectID string, err error) Snapshot {
	return Snapshot{
		Timestamp: time.Now().UTC(),
		Label:     label,
		SubjectID: subjectID,
		Error:     err.Error(),
	}
}
