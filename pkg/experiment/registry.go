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

package experiment

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

//go:embed templates/*.json
var builtinTemplates embed.FS

// templateIndex maps a normalized chaos type (hyphens folded to
// underscores) to its template file.
var templateIndex = map[string]string{
	"cpu_hog":         "generic_cpu_hog.json",
	"memory_hog":      "generic_memory_hog.json",
	"network_latency": "generic_network_latency.json",
	"packet_loss":     "generic_packet_loss.json",
	"disk_io":         "generic_disk_io.json",

	"node_drain": "node_drain.json",

	"vm_shutdown": "vm_shutdown.json",
	"vm_reboot":   "vm_reboot.json",
	"host_down":   "vm_shutdown.json",

	"k6_load_test":   "k6_load_test.json",
	"load_test":      "k6_load_test.json",
	"k6_spike_test":  "k6_spike_test.json",
	"spike_test":     "k6_spike_test.json",
	"k6_stress_test": "k6_stress_test.json",
	"stress_test":    "k6_stress_test.json",
}

// defaultTemplate is used when no chaos type is given or the given type has
// no dedicated template.
const defaultTemplate = "generic_cpu_hog.json"

// Document is a rendered experiment: a JSON object with at least a title
// and a configuration map. It stays a generic map so template payloads
// (provider stanzas, probes) survive a load/render/persist round trip
// untouched.
type Document map[string]any

// Title returns the document title, or empty when absent.
func (d Document) Title() string {
	s, _ := d["title"].(string)
	return s
}

// Tags returns the document tag list.
func (d Document) Tags() []string {
	raw, ok := d["tags"].([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if s, ok := t.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// Configuration returns the document's configuration map, creating it when
// absent.
func (d Document) Configuration() map[string]any {
	if cfg, ok := d["configuration"].(map[string]any); ok {
		return cfg
	}
	cfg := map[string]any{}
	d["configuration"] = cfg
	return cfg
}

// Registry resolves chaos types to experiment templates. The zero source is
// the embedded catalog; a directory source supports operator-supplied
// template sets.
type Registry struct {
	source fs.FS
	dir    string
}

// NewRegistry returns a registry over the embedded template catalog.
func NewRegistry() *Registry {
	return &Registry{source: builtinTemplates, dir: "templates"}
}

// NewRegistryFromDir returns a registry over an external template
// directory.
func NewRegistryFromDir(path string) *Registry {
	return &Registry{source: os.DirFS(path), dir: "."}
}

// Types returns the chaos types the registry can render, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(templateIndex))
	for t := range templateIndex {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Render materializes the template for the chaos type, substituting target
// attributes and defaults into the configuration map. overrides win over
// every derived value. An unknown chaos type falls back to the default
// template.
func (r *Registry) Render(chaosType string, tgt *target.Target, overrides map[string]any) (Document, error) {
	filename, ok := templateIndex[normalize(chaosType)]
	if !ok {
		filename = defaultTemplate
	}

	raw, err := fs.ReadFile(r.source, r.dir+"/"+filename)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "experiment template not found", err,
			map[string]any{"chaos_type": chaosType, "template": filename})
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "malformed experiment template", err,
			map[string]any{"template": filename})
	}

	cfg := doc.Configuration()
	for k, v := range replacements(tgt) {
		cfg[k] = v
	}
	for k, v := range overrides {
		cfg[k] = v
	}
	return doc, nil
}

// Load reads an operator-supplied experiment document, bypassing the
// template catalog.
func Load(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, "experiment file not readable", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "malformed experiment file", err)
	}
	return doc, nil
}

func normalize(chaosType string) string {
	return strings.ReplaceAll(strings.ToLower(chaosType), "-", "_")
}

// replacements is the stable variable contract shared with the templates:
// downstream overrides must match these keys by exact string.
func replacements(tgt *target.Target) map[string]any {
	vars := map[string]any{
		"target_id":        "unknown",
		"target_kind":      "unknown",
		"target_node":      "unknown",
		"duration_seconds": 120,

		"latency_ms":             250,
		"packet_loss_percentage": "15%",
		"memory_mb":              2048,
		"io_workers":             4,
		"write_size_mb":          1024,

		"target_url":                "http://localhost:8080",
		"health_endpoint":           "/monitoring/health",
		"virtual_users":             10,
		"response_time_threshold":   500,
		"base_users":                10,
		"spike_users":               100,
		"ramp_up_users":             50,
		"max_users":                 200,
		"stress_response_threshold": 2000,
	}
	if tgt == nil {
		return vars
	}

	vars["target_id"] = tgt.Identifier
	vars["target_kind"] = string(tgt.Kind)
	vars["target_node"] = tgt.Attr(target.AttrNode, "unknown")
	vars["target_url"] = buildTargetURL(tgt)
	vars["health_endpoint"] = tgt.Attr(target.AttrHealthEndpoint, "/monitoring/health")
	return vars
}

// buildTargetURL derives a load-test URL: explicit address first, node name
// second, localhost last. Service names are skipped on purpose since they
// are rarely resolvable from the operator's machine.
func buildTargetURL(tgt *target.Target) string {
	port := tgt.Attr(target.AttrPort, "8080")
	if tgt.Kind == target.KindService {
		if address := tgt.Attr(target.AttrAddress, ""); address != "" && address != "unknown" {
			return fmt.Sprintf("http://%s:%s", address, port)
		}
		if node := tgt.Attr(target.AttrNode, ""); node != "" && node != "unknown" && node != "localhost" {
			return fmt.Sprintf("http://%s:%s", node, port)
		}
	}
	return fmt.Sprintf("http://localhost:%s", port)
}
