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

// Package libvirt adapts the qemu/kvm substrate to the platform contract
// over the libvirt RPC protocol.
package libvirt

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	golibvirt "github.com/digitalocean/go-libvirt"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/errors"
	"github.com/rajanikanthsingh/chaosexp-tool/pkg/platform"
)

// Client implements platform.Client over one lazily established libvirt
// connection. Safe for concurrent use.
type Client struct {
	uri string

	mu   sync.Mutex
	conn *golibvirt.Libvirt
}

// New creates a client for the given libvirt URI (qemu:///system when
// empty). The connection is established on first use.
func New(uri string) *Client {
	return &Client{uri: uri}
}

// client returns the live connection, dialing or replacing a dead one.
func (c *Client) client(ctx context.Context) (*golibvirt.Libvirt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.conn != nil {
		if _, err := c.conn.Version(); err == nil {
			return c.conn, nil
		}
		_ = c.conn.Disconnect()
		c.conn = nil
	}

	uri, err := c.parseURI()
	if err != nil {
		return nil, err
	}
	conn, err := golibvirt.ConnectToURI(uri)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "libvirt connect failed", err,
			map[string]any{"uri": uri.Redacted()})
	}
	slog.Debug("libvirt connected", "uri", uri.Redacted())
	c.conn = conn
	return conn, nil
}

func (c *Client) parseURI() (*url.URL, error) {
	raw := c.uri
	if raw == "" {
		raw = string(golibvirt.QEMUSystem)
	}
	uri, err := url.Parse(raw)
	if err != nil || uri.Scheme == "" {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "invalid libvirt uri",
			map[string]any{"uri": raw})
	}
	return uri, nil
}

// PowerOn implements platform.Client.
func (c *Client) PowerOn(ctx context.Context, name string) error {
	conn, dom, err := c.lookup(ctx, name)
	if err != nil {
		return err
	}
	if err := conn.DomainCreate(dom); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "vm power on failed", err,
			map[string]any{"vm": name})
	}
	slog.Info("vm powered on", "vm", name)
	return nil
}

// PowerOff implements platform.Client. Graceful shutdown asks the guest OS
// to stop; force pulls the virtual plug.
func (c *Client) PowerOff(ctx context.Context, name string, force bool) error {
	conn, dom, err := c.lookup(ctx, name)
	if err != nil {
		return err
	}

	if force {
		if err := conn.DomainDestroy(dom); err != nil {
			return errors.WrapWithContext(errors.ErrCodeInternal, "vm destroy failed", err,
				map[string]any{"vm": name})
		}
		slog.Info("vm destroyed", "vm", name)
		return nil
	}

	if err := conn.DomainShutdown(dom); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "vm shutdown failed", err,
			map[string]any{"vm": name})
	}
	slog.Info("vm shutdown requested", "vm", name)
	return nil
}

// Reboot implements platform.Client.
func (c *Client) Reboot(ctx context.Context, name string) error {
	conn, dom, err := c.lookup(ctx, name)
	if err != nil {
		return err
	}
	if err := conn.DomainReboot(dom, 0); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "vm reboot failed", err,
			map[string]any{"vm": name})
	}
	slog.Info("vm reboot requested", "vm", name)
	return nil
}

// Status implements platform.Client.
func (c *Client) Status(ctx context.Context, name string) (*platform.VM, error) {
	conn, dom, err := c.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	state, _, _, _, _, err := conn.DomainGetInfo(dom)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "vm state read failed", err,
			map[string]any{"vm": name})
	}
	return &platform.VM{Name: name, State: mapState(state)}, nil
}

// List implements platform.Client.
func (c *Client) List(ctx context.Context) ([]platform.VM, error) {
	conn, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	doms, _, err := conn.ConnectListAllDomains(1, 0)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "domain listing failed", err)
	}

	vms := make([]platform.VM, 0, len(doms))
	for _, dom := range doms {
		vm := platform.VM{Name: dom.Name, State: platform.StateUnknown}
		if state, _, _, _, _, ierr := conn.DomainGetInfo(dom); ierr == nil {
			vm.State = mapState(state)
		}
		vms = append(vms, vm)
	}
	return vms, nil
}

// Close implements platform.Client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Disconnect()
	c.conn = nil
	return err
}

func (c *Client) lookup(ctx context.Context, name string) (*golibvirt.Libvirt, golibvirt.Domain, error) {
	conn, err := c.client(ctx)
	if err != nil {
		return nil, golibvirt.Domain{}, err
	}
	dom, err := conn.DomainLookupByName(name)
	if err != nil {
		if golibvirt.IsNotFound(err) {
			return nil, golibvirt.Domain{}, errors.NewWithContext(errors.ErrCodeNotFound, "vm not found",
				map[string]any{"vm": name})
		}
		return nil, golibvirt.Domain{}, errors.WrapWithContext(errors.ErrCodeInternal, "vm lookup failed", err,
			map[string]any{"vm": name})
	}
	return conn, dom, nil
}

func mapState(state uint8) platform.State {
	switch golibvirt.DomainState(state) {
	case golibvirt.DomainRunning, golibvirt.DomainBlocked:
		return platform.StateRunning
	case golibvirt.DomainPaused, golibvirt.DomainPmsuspended:
		return platform.StatePaused
	case golibvirt.DomainShutdown, golibvirt.DomainShutoff, golibvirt.DomainCrashed:
		return platform.StateStopped
	default:
		return platform.StateUnknown
	}
}
