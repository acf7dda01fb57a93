/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/rgvalidator/pkg/policy"
)

// PolicyCheck is the outcome of checking an OS type and VM size against a
// policy without any lookup.
type PolicyCheck struct {
	OSType        string `json:"osType" yaml:"osType"`
	OSTypeAllowed bool   `json:"osTypeAllowed" yaml:"osTypeAllowed"`
	ClosestOSType string `json:"closestOSType,omitempty" yaml:"closestOSType,omitempty"`
	VMSize        string `json:"vmSize" yaml:"vmSize"`
	VMSizeAllowed bool   `json:"vmSizeAllowed" yaml:"vmSizeAllowed"`
	ClosestVMSize string `json:"closestVMSize,omitempty" yaml:"closestVMSize,omitempty"`
	Points        int    `json:"points" yaml:"points"`
}

// Passed reports whether both checks passed.
func (c PolicyCheck) Passed() bool {
	return c.OSTypeAllowed && c.VMSizeAllowed
}

func checkPolicy(p *policy.Policy, osType, vmSize string) PolicyCheck {
	c := PolicyCheck{
		OSType:        osType,
		OSTypeAllowed: p.IsValidOSType(osType),
		VMSize:        vmSize,
		VMSizeAllowed: p.IsAllowedVMSize(vmSize),
	}
	if c.OSTypeAllowed {
		c.Points += p.PointsPerCheck
	} else {
		c.Points -= p.PointsPerCheck
		c.ClosestOSType = p.ClosestOSType(osType)
	}
	if c.VMSizeAllowed {
		c.Points += p.PointsPerCheck
	} else {
		c.Points -= p.PointsPerCheck
		c.ClosestVMSize = p.ClosestVMSize(vmSize)
	}
	return c
}

func policyCmd() *cli.Command {
	return &cli.Command{
		Name:  "policy",
		Usage: "Inspect the scoring policy",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective policy as a ScoringPolicy document",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Value: "default",
						Usage: "metadata.name of the printed document",
					},
					policyFlag(),
					outputFlag(),
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					p, err := policy.Load(ctx, cmd.String("policy"))
					if err != nil {
						return fmt.Errorf("failed to load policy: %w", err)
					}
					return writeResult(ctx, cmd, policy.NewDocument(cmd.String("name"), p))
				},
			},
			{
				Name:  "check",
				Usage: "Check an OS type and VM size against the policy",
				Description: `Scores the OS type and VM size checks without looking anything up, and
suggests the closest allowed value for each failing check.

  rgvalidator policy check --os-type Linux --vm-size Standard_B2ms`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "os-type",
						Required: true,
						Usage:    "OS type as reported by Azure (e.g., Linux, Windows)",
					},
					&cli.StringFlag{
						Name:     "vm-size",
						Required: true,
						Usage:    "VM size (e.g., Standard_B2s)",
					},
					&cli.BoolFlag{
						Name:  "fail-on-error",
						Usage: "Exit with a non-zero status when a check fails",
					},
					policyFlag(),
					outputFlag(),
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					p, err := policy.Load(ctx, cmd.String("policy"))
					if err != nil {
						return fmt.Errorf("failed to load policy: %w", err)
					}

					c := checkPolicy(p, cmd.String("os-type"), cmd.String("vm-size"))
					if err := writeResult(ctx, cmd, c); err != nil {
						return err
					}
					if cmd.Bool("fail-on-error") && !c.Passed() {
						return fmt.Errorf("policy check failed for OS type %q and VM size %q", c.OSType, c.VMSize)
					}
					return nil
				},
			},
		},
	}
}
