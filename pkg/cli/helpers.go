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
	"fmt"
	"strconv"
	"strings"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/serializer"
)

// parseOverrides merges an overrides file with key=value pairs from the
// command line. Inline pairs win over file entries.
func parseOverrides(pairs []string, filePath string) (map[string]any, error) {
	overrides := map[string]any{}

	if filePath != "" {
		fromFile, err := serializer.FromFile[map[string]any](filePath)
		if err != nil {
			return nil, fmt.Errorf("loading overrides from %q: %w", filePath, err)
		}
		for k, v := range *fromFile {
			overrides[k] = v
		}
	}

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid override %q: expected key=value", pair)
		}
		overrides[key] = coerceValue(strings.TrimSpace(value))
	}

	if len(overrides) == 0 {
		return nil, nil
	}
	return overrides, nil
}

// coerceValue converts override strings to the types templates expect:
// integers, floats, and booleans pass through typed, everything else stays
// a string.
func coerceValue(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
