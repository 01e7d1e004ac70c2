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
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/action"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/config"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/experiment"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/loadgen"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/metrics"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/pipeline"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/platform"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/platform/libvirt"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/report"
	schednomad "github.com/rajanikanthsingh/chaosexp-tool/pkg/scheduler/nomad"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/target"
)

// toolkit bundles the wired collaborators a command needs. Construction is
// lazy per invocation: each command builds exactly one toolkit and the VM
// client connects only on first use.
type toolkit struct {
	settings  *config.Settings
	scheduler *schednomad.Client
	resolver  *target.Resolver
	collector metrics.Collector
	vm        platform.Client
	templates *experiment.Registry
	store     *report.Store
	pipeline  *pipeline.Pipeline
}

// wire builds the toolkit from the resolved settings.
func wire(cmd *cli.Command) (*toolkit, error) {
	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	sched, err := schednomad.New(schednomad.Config{
		Address:   settings.Nomad.Address,
		Region:    settings.Nomad.Region,
		Token:     settings.Nomad.Token,
		Namespace: settings.Nomad.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("creating scheduler client: %w", err)
	}

	var nodes metrics.NodeBackend
	if settings.Prometheus.URL != "" {
		backend, err := metrics.NewPrometheusBackend(settings.Prometheus.URL)
		if err != nil {
			return nil, fmt.Errorf("creating prometheus backend: %w", err)
		}
		nodes = backend
	} else {
		slog.Debug("no prometheus URL configured, node metrics degrade to allocation aggregation")
	}

	var vm platform.Client
	if settings.Libvirt.URI != "" {
		vm = libvirt.New(settings.Libvirt.URI)
	}

	store, err := report.NewStore(settings.Chaos.ReportsPath)
	if err != nil {
		return nil, fmt.Errorf("creating report store: %w", err)
	}

	tk := &toolkit{
		settings:  settings,
		scheduler: sched,
		resolver:  target.NewResolver(sched),
		collector: metrics.NewBackendCollector(sched, nodes),
		vm:        vm,
		templates: templateRegistry(settings),
		store:     store,
	}

	actions := action.DefaultRegistry(sched, vm, loadgen.NewRunner(), 0)
	tk.pipeline = pipeline.New(tk.resolver, tk.templates, tk.collector, actions, store, slog.Default())

	return tk, nil
}

// templateRegistry prefers an external experiments directory when it
// exists, falling back to the embedded catalog.
func templateRegistry(settings *config.Settings) *experiment.Registry {
	dir := settings.Chaos.ExperimentsPath
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return experiment.NewRegistryFromDir(dir)
		}
	}
	return experiment.NewRegistry()
}

// requireVM returns the VM platform client or a configuration error.
func (tk *toolkit) requireVM() (platform.Client, error) {
	if tk.vm == nil {
		return nil, fmt.Errorf("no libvirt URI configured: set LIBVIRT_URI or libvirt.uri in the config file")
	}
	return tk.vm, nil
}
