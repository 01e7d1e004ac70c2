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

// Package config loads the tool's settings from an optional config file
// plus environment variables. Settings are resolved once, in the CLI
// layer, and passed to constructors explicitly; nothing reads them back
// from global state later.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/defaults"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
)

// Config file names probed in the working directory, in order.
var discoveryNames = []string{"chaosexp.yaml", "chaosexp.yml", "chaosexp.json"}

// Nomad holds scheduler connection settings.
type Nomad struct {
	Address   string `yaml:"address" json:"address"`
	Region    string `yaml:"region" json:"region"`
	Token     string `yaml:"token" json:"token"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// Prometheus holds the time-series backend settings used for node-level
// metrics.
type Prometheus struct {
	URL            string `yaml:"url" json:"url"`
	TimeoutSeconds int    `yaml:"timeout" json:"timeout"`
}

// Timeout returns the query timeout as a duration.
func (p Prometheus) Timeout() time.Duration {
	if p.TimeoutSeconds > 0 {
		return time.Duration(p.TimeoutSeconds) * time.Second
	}
	return defaults.PrometheusTimeout
}

// Libvirt holds the virtualization substrate settings.
type Libvirt struct {
	URI string `yaml:"uri" json:"uri"`
}

// Chaos holds experiment execution settings.
type Chaos struct {
	ExperimentsPath        string `yaml:"experiments_path" json:"experiments_path"`
	ReportsPath            string `yaml:"reports_path" json:"reports_path"`
	DryRun                 bool   `yaml:"dry_run" json:"dry_run"`
	MetricsDurationSeconds int    `yaml:"metrics_duration" json:"metrics_duration"`
	MetricsIntervalSeconds int    `yaml:"metrics_interval" json:"metrics_interval"`
}

// MetricsDuration returns the sampling window as a duration.
func (c Chaos) MetricsDuration() time.Duration {
	if c.MetricsDurationSeconds > 0 {
		return time.Duration(c.MetricsDurationSeconds) * time.Second
	}
	return defaults.MetricsDuration
}

// MetricsInterval returns the inter-sample gap as a duration.
func (c Chaos) MetricsInterval() time.Duration {
	if c.MetricsIntervalSeconds > 0 {
		return time.Duration(c.MetricsIntervalSeconds) * time.Second
	}
	return defaults.MetricsInterval
}

// Server holds the API server settings.
type Server struct {
	Address string `yaml:"address" json:"address"`
	Port    int    `yaml:"port" json:"port"`
}

// Settings aggregates all tool configuration.
type Settings struct {
	Nomad      Nomad      `yaml:"nomad" json:"nomad"`
	Prometheus Prometheus `yaml:"prometheus" json:"prometheus"`
	Libvirt    Libvirt    `yaml:"libvirt" json:"libvirt"`
	Chaos      Chaos      `yaml:"chaos" json:"chaos"`
	Server     Server     `yaml:"server" json:"server"`
}

// Load resolves settings: environment defaults first, then the config file
// (explicit path, or auto-discovered in the working directory) layered on
// top. A missing file is not an error; a malformed one is.
func Load(path string) (*Settings, error) {
	settings := fromEnv()

	if path == "" {
		path = discover()
	}
	if path == "" {
		return settings, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "reading config file", err)
	}
	if err := parse(path, raw, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func parse(path string, raw []byte, into *Settings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, into); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "parsing json config", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, into); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "parsing yaml config", err)
		}
	default:
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"unsupported config format", map[string]any{"path": path})
	}
	return nil
}

func discover() string {
	for _, name := range discoveryNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func fromEnv() *Settings {
	return &Settings{
		Nomad: Nomad{
			Address:   envOr("NOMAD_ADDR", "http://127.0.0.1:4646"),
			Region:    os.Getenv("NOMAD_REGION"),
			Token:     os.Getenv("NOMAD_TOKEN"),
			Namespace: os.Getenv("NOMAD_NAMESPACE"),
		},
		Prometheus: Prometheus{
			URL:            os.Getenv("PROMETHEUS_URL"),
			TimeoutSeconds: envInt("PROMETHEUS_TIMEOUT", int(defaults.PrometheusTimeout/time.Second)),
		},
		Libvirt: Libvirt{
			URI: os.Getenv("LIBVIRT_URI"),
		},
		Chaos: Chaos{
			ExperimentsPath: "experiments",
			ReportsPath:     defaults.ReportsDir,
		},
		Server: Server{
			Port: defaults.ServicePort,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
