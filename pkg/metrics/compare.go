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

import "math"

// Recovery tolerance bands. CPU recovery is an absolute percentage-point
// band; memory recovery is a band relative to the baseline.
const (
	cpuRecoveryBand     = 5.0
	memoryRecoveryRatio = 0.10
)

// Analysis is the per-family delta/recovery report derived from a
// (before, during, after) triple. A family is present only when both the
// baseline and post snapshots report it.
type Analysis struct {
	CPU    *CPUAnalysis    `json:"cpu,omitempty"`
	Memory *MemoryAnalysis `json:"memory,omitempty"`
	Disk   *DiskAnalysis   `json:"disk,omitempty"`
	Status *StatusAnalysis `json:"status,omitempty"`
}

// CPUAnalysis reports CPU utilization before, at its during-peak, and
// after, with recovery meaning the after value returned within an absolute
// percentage-point band of the baseline.
type CPUAnalysis struct {
	BeforePercent float64 `json:"before_percent"`
	PeakPercent   float64 `json:"peak_during_percent"`
	AfterPercent  float64 `json:"after_percent"`
	ChangeDuring  float64 `json:"change_during"`
	Recovery      float64 `json:"recovery"`
	Recovered     bool    `json:"recovered"`
}

// MemoryAnalysis reports memory usage in bytes, with recovery meaning the
// after value returned within a relative band of the baseline.
type MemoryAnalysis struct {
	BeforeBytes  uint64 `json:"before_bytes"`
	PeakBytes    uint64 `json:"peak_during_bytes"`
	AfterBytes   uint64 `json:"after_bytes"`
	ChangeDuring int64  `json:"change_during_bytes"`
	Recovery     int64  `json:"recovery_bytes"`
	Recovered    bool   `json:"recovered"`
}

// DiskAnalysis is descriptive only: cumulative counters have no recovery
// semantics. Peaks fall back to the before value when the during-series is
// empty, so an increase is zero rather than negative or undefined.
type DiskAnalysis struct {
	ReadBytesBefore uint64 `json:"read_bytes_before"`
	ReadBytesAfter  uint64 `json:"read_bytes_after"`
	PeakReadBytes   uint64 `json:"peak_read_bytes"`
	ReadIncrease    int64  `json:"read_increase"`

	WriteBytesBefore uint64 `json:"write_bytes_before"`
	WriteBytesAfter  uint64 `json:"write_bytes_after"`
	PeakWriteBytes   uint64 `json:"peak_write_bytes"`
	WriteIncrease    int64  `json:"write_increase"`

	TotalBytesBefore uint64 `json:"total_bytes_before"`
	TotalBytesAfter  uint64 `json:"total_bytes_after"`
	PeakTotalBytes   uint64 `json:"peak_total_bytes"`
	TotalIncrease    int64  `json:"total_increase"`

	ReadOpsBefore  uint64 `json:"read_ops_before"`
	ReadOpsAfter   uint64 `json:"read_ops_after"`
	WriteOpsBefore uint64 `json:"write_ops_before"`
	WriteOpsAfter  uint64 `json:"write_ops_after"`
}

// StatusAnalysis compares the subject's client status across the
// disruption.
type StatusAnalysis struct {
	Before string `json:"before"`
	After  string `json:"after"`
	Stable bool   `json:"stable"`
}

// Comparison is the persisted measurement bundle of one experiment: the raw
// snapshot triple plus the derived analysis. Error snapshots stay in During
// verbatim for audit purposes.
type Comparison struct {
	Before   Snapshot   `json:"before"`
	During   []Snapshot `json:"during"`
	After    Snapshot   `json:"after"`
	Analysis *Analysis  `json:"analysis,omitempty"`
}

// NewComparison bundles the raw triple with its analysis.
func NewComparison(before Snapshot, during []Snapshot, after Snapshot) *Comparison {
	return &Comparison{
		Before:   before,
		During:   during,
		After:    after,
		Analysis: Compare(before, during, after),
	}
}

// Compare reduces a (before, during, after) triple into a per-family
// analysis. It is a pure function: same inputs, same output, no hidden
// state. Error snapshots in the during-series are excluded from peak
// candidate pools; a failed baseline or post snapshot yields nil.
func Compare(before Snapshot, during []Snapshot, after Snapshot) *Analysis {
	if before.Failed() || after.Failed() {
		return nil
	}

	analysis := &Analysis{}

	if before.CPU != nil && after.CPU != nil {
		analysis.CPU = compareCPU(*before.CPU, during, *after.CPU)
	}
	if before.Memory != nil && after.Memory != nil {
		analysis.Memory = compareMemory(*before.Memory, during, *after.Memory)
	}
	if before.Disk != nil && after.Disk != nil {
		analysis.Disk = compareDisk(*before.Disk, during, *after.Disk)
	}
	if before.ClientStatus != "" && after.ClientStatus != "" {
		analysis.Status = &StatusAnalysis{
			Before: before.ClientStatus,
			After:  after.ClientStatus,
			Stable: before.ClientStatus == after.ClientStatus,
		}
	}

	comparisonCounter()
	return analysis
}

func compareCPU(before CPU, during []Snapshot, after CPU) *CPUAnalysis {
	peak := 0.0
	for _, snap := range during {
		if snap.Failed() || snap.CPU == nil {
			continue
		}
		if snap.CPU.Percent > peak {
			peak = snap.CPU.Percent
		}
	}
	return &CPUAnalysis{
		BeforePercent: before.Percent,
		PeakPercent:   peak,
		AfterPercent:  after.Percent,
		ChangeDuring:  peak - before.Percent,
		Recovery:      before.Percent - after.Percent,
		Recovered:     math.Abs(after.Percent-before.Percent) < cpuRecoveryBand,
	}
}

func compareMemory(before Memory, during []Snapshot, after Memory) *MemoryAnalysis {
	var peak uint64
	for _, snap := range during {
		if snap.Failed() || snap.Memory == nil {
			continue
		}
		if snap.Memory.Usage > peak {
			peak = snap.Memory.Usage
		}
	}

	// A zero baseline degenerates the relative band to an exact zero
	// match.
	var recovered bool
	if before.Usage == 0 {
		recovered = after.Usage == 0
	} else {
		band := memoryRecoveryRatio * float64(before.Usage)
		recovered = math.Abs(float64(after.Usage)-float64(before.Usage)) < band
	}

	return &MemoryAnalysis{
		BeforeBytes:  before.Usage,
		PeakBytes:    peak,
		AfterBytes:   after.Usage,
		ChangeDuring: int64(peak) - int64(before.Usage),
		Recovery:     int64(before.Usage) - int64(after.Usage),
		Recovered:    recovered,
	}
}

func compareDisk(before Disk, during []Snapshot, after Disk) *DiskAnalysis {
	peakRead := diskPeak(during, before.ReadBytes, func(d Disk) uint64 { return d.ReadBytes })
	peakWrite := diskPeak(during, before.WriteBytes, func(d Disk) uint64 { return d.WriteBytes })
	peakTotal := diskPeak(during, before.TotalBytes(), Disk.TotalBytes)

	return &DiskAnalysis{
		ReadBytesBefore: before.ReadBytes,
		ReadBytesAfter:  after.ReadBytes,
		PeakReadBytes:   peakRead,
		ReadIncrease:    int64(peakRead) - int64(before.ReadBytes),

		WriteBytesBefore: before.WriteBytes,
		WriteBytesAfter:  after.WriteBytes,
		PeakWriteBytes:   peakWrite,
		WriteIncrease:    int64(peakWrite) - int64(before.WriteBytes),

		TotalBytesBefore: before.TotalBytes(),
		TotalBytesAfter:  after.TotalBytes(),
		PeakTotalBytes:   peakTotal,
		TotalIncrease:    int64(peakTotal) - int64(before.TotalBytes()),

		ReadOpsBefore:  before.ReadOps,
		ReadOpsAfter:   after.ReadOps,
		WriteOpsBefore: before.WriteOps,
		WriteOpsAfter:  after.WriteOps,
	}
}

// diskPeak defaults to the before value, not zero, so an empty during-series
// never produces a negative increase.
func diskPeak(during []Snapshot, fallback uint64, value func(Disk) uint64) uint64 {
	var peak uint64
	seen := false
	for _, snap := range during {
		if snap.Failed() || snap.Disk == nil {
			continue
		}
		v := value(*snap.Disk)
		if !seen || v > peak {
			peak = v
			seen = true
		}
	}
	if !seen {
		return fallback
	}
	return peak
}
