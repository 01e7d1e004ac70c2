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

package target

import (
	"strings"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
)

// Select picks one target by exact identifier or name-attribute match.
// An empty id selects the first catalog entry. A miss is a NOT_FOUND error.
func Select(targets []Target, id string) (*Target, error) {
	if id == "" {
		if len(targets) == 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "target catalog is empty")
		}
		t := targets[0]
		return &t, nil
	}

	for _, candidate := range targets {
		if candidate.Identifier == id || candidate.Attributes[AttrName] == id {
			t := candidate
			return &t, nil
		}
	}
	return nil, errors.NewWithContext(errors.ErrCodeNotFound, "target not found in catalog",
		map[string]any{"target": id})
}

// SelectAll resolves a comma-separated identifier list against the catalog.
// Unknown ids are skipped; an empty result is a NOT_FOUND error.
func SelectAll(targets []Target, ids string) ([]Target, error) {
	var selected []Target
	for _, raw := range strings.Split(ids, ",") {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if t, err := Select(targets, id); err == nil {
			selected = append(selected, *t)
		}
	}
	if len(selected) == 0 {
		return nil, errors.NewWithContext(errors.ErrCodeNotFound, "none of the requested targets found",
			map[string]any{"targets": ids})
	}
	return selected, nil
}
