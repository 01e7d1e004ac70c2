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

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/action"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/experiment"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/metrics"
)

// Bundle is the durable artifact of one run: the rendered experiment, the
// raw trigger result, and the measurement comparison when one was taken.
type Bundle struct {
	Experiment experiment.Document `json:"experiment"`
	Result     action.Result       `json:"result"`
	Metrics    *metrics.Comparison `json:"metrics,omitempty"`
}

// Paths names the artifacts written for one run.
type Paths struct {
	JSON     string `json:"json"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// Store writes and reads run artifacts under one directory. Distinct run
// ids never collide, so concurrent writers need no locking.
type Store struct {
	dir string
}

// NewStore creates the artifact directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, "creating reports directory", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// WriteRun persists the bundle plus its rendered Markdown and HTML. The
// JSON bundle is written last via rename, so a run either exists completely
// or not at all.
func (s *Store) WriteRun(runID string, bundle Bundle) (Paths, error) {
	paths := Paths{
		JSON:     filepath.Join(s.dir, runID+".json"),
		Markdown: filepath.Join(s.dir, runID+".md"),
		HTML:     filepath.Join(s.dir, runID+".html"),
	}

	if err := os.WriteFile(paths.Markdown, []byte(RenderMarkdown(runID, bundle)), 0o644); err != nil {
		return Paths{}, errors.Wrap(errors.ErrCodePersistence, "writing markdown report", err)
	}

	html, err := RenderHTML(runID, bundle)
	if err != nil {
		return Paths{}, err
	}
	if err := os.WriteFile(paths.HTML, []byte(html), 0o644); err != nil {
		return Paths{}, errors.Wrap(errors.ErrCodePersistence, "writing html report", err)
	}

	raw, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return Paths{}, errors.Wrap(errors.ErrCodePersistence, "encoding run bundle", err)
	}
	if err := s.writeAtomic(paths.JSON, raw); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".bundle-*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistence, "creating bundle temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodePersistence, "writing bundle", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, "closing bundle", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, "publishing bundle", err)
	}
	return nil
}

// ReadBundle loads one run's bundle.
func (s *Store) ReadBundle(runID string) (*Bundle, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, runID+".json"))
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "run bundle not found", err,
			map[string]any{"run_id": runID})
	}
	var bundle Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "corrupt run bundle", err,
			map[string]any{"run_id": runID})
	}
	return &bundle, nil
}

// ListRuns returns all persisted run ids, newest first. Run ids embed a
// random suffix, so ordering falls back to file modification time.
func (s *Store) ListRuns() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "run-*.json"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "listing run bundles", err)
	}

	type entry struct {
		id  string
		mod int64
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		id := strings.TrimSuffix(filepath.Base(m), ".json")
		info, statErr := os.Stat(m)
		if statErr != nil {
			continue
		}
		entries = append(entries, entry{id: id, mod: info.ModTime().UnixNano()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].mod > entries[j].mod })

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}

// LatestRunID returns the most recent run id.
func (s *Store) LatestRunID() (string, error) {
	ids, err := s.ListRuns()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errors.New(errors.ErrCodeNotFound,
			fmt.Sprintf("no experiment runs found under %s", s.dir))
	}
	return ids[0], nil
}
