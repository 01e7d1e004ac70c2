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
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/rajanikanthsingh/chaosexp-tool/pkg/serializer"
)

func vmCmd() *cli.Command {
	return &cli.Command{
		Name:                  "vm",
		EnableShellCompletion: true,
		Usage:                 "Control virtual machines on the virtualization substrate",
		Description: `Control libvirt virtual machines directly. Requires a libvirt URI,
either via LIBVIRT_URI or libvirt.uri in the config file.`,
		Commands: []*cli.Command{
			vmPowerOnCmd(),
			vmPowerOffCmd(),
			vmRebootCmd(),
			vmStatusCmd(),
			vmListCmd(),
		},
	}
}

func vmName(cmd *cli.Command) (string, error) {
	name := cmd.Args().First()
	if name == "" {
		return "", fmt.Errorf("vm name is required")
	}
	return name, nil
}

func vmPowerOnCmd() *cli.Command {
	return &cli.Command{
		Name:      "on",
		Usage:     "Power on a stopped VM",
		ArgsUsage: "VM_NAME",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := vmName(cmd)
			if err != nil {
				return err
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}
			vm, err := tk.requireVM()
			if err != nil {
				return err
			}

			if err := vm.PowerOn(ctx, name); err != nil {
				return fmt.Errorf("powering on %q: %w", name, err)
			}
			slog.Info("vm powered on", "name", name)
			return nil
		},
	}
}

func vmPowerOffCmd() *cli.Command {
	return &cli.Command{
		Name:      "off",
		Usage:     "Power off a VM",
		ArgsUsage: "VM_NAME",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Destroy the VM immediately instead of a graceful shutdown",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := vmName(cmd)
			if err != nil {
				return err
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}
			vm, err := tk.requireVM()
			if err != nil {
				return err
			}

			if err := vm.PowerOff(ctx, name, cmd.Bool("force")); err != nil {
				return fmt.Errorf("powering off %q: %w", name, err)
			}
			slog.Info("vm powered off", "name", name, "force", cmd.Bool("force"))
			return nil
		},
	}
}

func vmRebootCmd() *cli.Command {
	return &cli.Command{
		Name:      "reboot",
		Usage:     "Reboot a running VM",
		ArgsUsage: "VM_NAME",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := vmName(cmd)
			if err != nil {
				return err
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}
			vm, err := tk.requireVM()
			if err != nil {
				return err
			}

			if err := vm.Reboot(ctx, name); err != nil {
				return fmt.Errorf("rebooting %q: %w", name, err)
			}
			slog.Info("vm rebooted", "name", name)
			return nil
		},
	}
}

func vmStatusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show a VM's power state",
		ArgsUsage: "VM_NAME",
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := vmName(cmd)
			if err != nil {
				return err
			}

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}
			vm, err := tk.requireVM()
			if err != nil {
				return err
			}

			status, err := vm.Status(ctx, name)
			if err != nil {
				return fmt.Errorf("querying %q: %w", name, err)
			}

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, status)
		},
	}
}

func vmListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List VMs and their power states",
		Flags: []cli.Flag{
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			tk, err := wire(cmd)
			if err != nil {
				return err
			}
			vm, err := tk.requireVM()
			if err != nil {
				return err
			}

			vms, err := vm.List(ctx)
			if err != nil {
				return fmt.Errorf("listing vms: %w", err)
			}

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer writer.Close()
			return writer.Serialize(ctx, vms)
		},
	}
}
