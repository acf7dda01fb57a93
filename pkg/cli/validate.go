/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/rgvalidator/pkg/api"
	"github.com/NVIDIA/rgvalidator/pkg/directory"
	"github.com/NVIDIA/rgvalidator/pkg/policy"
	"github.com/NVIDIA/rgvalidator/pkg/validator"
)

// explainedResponse adds the per-check outcomes to a response.
type explainedResponse struct {
	validator.Response `yaml:",inline"`
	Checks             []validator.CheckResult `json:"checks" yaml:"checks"`
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate a resource group and optionally one of its virtual machines",
		Description: `Looks up the resource group and virtual machine and scores them against the
policy: each check adds or deducts the policy points (10 by default).

  resource group exists         +10 / -10
  virtual machine exists          0 / -10
  OS type allowed               +10 / -10 (only when the VM exists)
  VM size allowed               +10 / -10 (only when the VM exists)

# Examples

Validate against Azure using the ambient credential:
  rgvalidator validate --resource-group rg-prod --vm vm-web-01 --subscription <id>

Dry run against fixtures, print the individual checks:
  rgvalidator validate -g rg-prod --vm vm-web-01 --fixtures fixtures.yaml --explain

Gate a pipeline on a minimum score and keep the result in a ConfigMap:
  rgvalidator validate -g rg-prod --vm vm-web-01 --min-score 30 -o cm://compliance/rg-prod`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "resource-group",
				Aliases:  []string{"g"},
				Required: true,
				Usage:    "Name of the resource group to validate",
			},
			&cli.StringFlag{
				Name:  "vm",
				Usage: "Name of the virtual machine to validate inside the resource group",
			},
			&cli.StringFlag{
				Name:    "subscription",
				Aliases: []string{"s"},
				Usage:   "Azure subscription ID",
				Sources: cli.EnvVars(api.EnvSubscriptionID),
			},
			&cli.StringFlag{
				Name:  "fixtures",
				Usage: "Resolve lookups from a YAML fixture file instead of Azure",
			},
			&cli.BoolFlag{
				Name:    "parallel",
				Usage:   "Look up the resource group and virtual machine concurrently",
				Sources: cli.EnvVars(api.EnvParallelLookups),
			},
			&cli.BoolFlag{
				Name:  "explain",
				Usage: "Include the individual checks in the output",
			},
			&cli.IntFlag{
				Name:  "min-score",
				Usage: "Fail when the total points are below this value",
			},
			policyFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			p, err := policy.Load(ctx, cmd.String("policy"))
			if err != nil {
				return fmt.Errorf("failed to load policy: %w", err)
			}

			rg, vm, err := directories(cmd)
			if err != nil {
				return err
			}

			v := validator.New(rg, vm,
				validator.WithPolicy(p),
				validator.WithParallelLookups(cmd.Bool("parallel")),
			)

			req := validator.Request{
				ResourceGroupName: cmd.String("resource-group"),
				VMName:            cmd.String("vm"),
			}

			resp, err := v.Validate(ctx, req)
			if err != nil {
				if errors.Is(err, validator.ErrMissingResourceGroupName) {
					return errors.New(validator.MissingResourceGroupMessage)
				}
				return fmt.Errorf("validation failed: %w", err)
			}

			var result any = resp
			if cmd.Bool("explain") {
				result = explainedResponse{Response: *resp, Checks: resp.Checks}
			}
			if err := writeResult(ctx, cmd, result); err != nil {
				return err
			}

			if cmd.IsSet("min-score") {
				if minScore := cmd.Int("min-score"); resp.TotalPoints < minScore {
					return fmt.Errorf("total points %d below minimum %d", resp.TotalPoints, minScore)
				}
			}
			return nil
		},
	}
}

// directories returns the fixture directory when --fixtures is set and the
// Azure directories otherwise.
func directories(cmd *cli.Command) (directory.ResourceGroupDirectory, directory.VMDirectory, error) {
	if path := cmd.String("fixtures"); path != "" {
		m, err := directory.LoadFixtures(path)
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("using fixture directory", "path", path)
		return m, m, nil
	}

	subscription := cmd.String("subscription")
	if subscription == "" {
		return nil, nil, fmt.Errorf("--subscription or %s is required unless --fixtures is set", api.EnvSubscriptionID)
	}

	rg, vm, err := api.NewAzureDirectories(subscription)
	if err != nil {
		return nil, nil, err
	}
	return rg, vm, nil
}
