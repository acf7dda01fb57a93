package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/rgvalidator/pkg/api"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the validation HTTP API",
		Description: `Runs the HTTP API. Routes:

  /api/validate   Azure Functions custom handler route
  /v1/validate    versioned route
  /health /ready  probes
  /metrics        Prometheus metrics

Configuration comes from the environment:

  AZURE_SUBSCRIPTION_ID          subscription to query (required)
  RGVALIDATOR_POLICY             policy file, URL or cm://namespace/name
  RGVALIDATOR_PARALLEL_LOOKUPS   true to look up the group and VM concurrently
  FUNCTIONS_CUSTOMHANDLER_PORT   listen port under Azure Functions
  PORT                           listen port otherwise (default 8080)`,
		Action: func(ctx context.Context, _ *cli.Command) error {
			return api.Serve(ctx)
		},
	}
}
