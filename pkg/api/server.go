package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/NVIDIA/rgvalidator/pkg/azure"
	"github.com/NVIDIA/rgvalidator/pkg/directory"
	"github.com/NVIDIA/rgvalidator/pkg/logging"
	"github.com/NVIDIA/rgvalidator/pkg/policy"
	"github.com/NVIDIA/rgvalidator/pkg/server"
	"github.com/NVIDIA/rgvalidator/pkg/validator"
)

const (
	name           = "rgvalidator-api"
	versionDefault = "dev"

	// RouteFunctions is the route the Azure Functions host forwards to.
	RouteFunctions = "/api/validate"

	// RouteValidate is the versioned route for direct callers.
	RouteValidate = "/v1/validate"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/rgvalidator/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown.
// It configures logging, builds the validator against Azure, sets up routes,
// and handles graceful shutdown.
func Serve(ctx context.Context) error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	cfg, err := ConfigFromEnv()
	if err != nil {
		return err
	}

	v, err := NewValidator(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize validator", "error", err)
		return err
	}

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(Routes(v)),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// Routes maps the validation routes to v.
func Routes(v *validator.Validator) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		RouteFunctions: v.HandleValidate,
		RouteValidate:  v.HandleValidate,
	}
}

// NewValidator loads the policy and builds a validator over the Azure
// directories of cfg.SubscriptionID.
func NewValidator(ctx context.Context, cfg *Config) (*validator.Validator, error) {
	rg, vm, err := NewAzureDirectories(cfg.SubscriptionID)
	if err != nil {
		return nil, err
	}
	return newValidator(ctx, cfg, rg, vm)
}

// NewAzureDirectories builds both directories for subscriptionID over the
// ambient credential.
func NewAzureDirectories(subscriptionID string) (*azure.ResourceGroupDirectory, *azure.VMDirectory, error) {
	if subscriptionID == "" {
		return nil, nil, fmt.Errorf("%s is required", EnvSubscriptionID)
	}

	cred, err := azure.NewCredential()
	if err != nil {
		return nil, nil, err
	}
	opts := azure.DefaultClientOptions()

	rg, err := azure.NewResourceGroupDirectory(subscriptionID, cred, opts)
	if err != nil {
		return nil, nil, err
	}
	vm, err := azure.NewVMDirectory(subscriptionID, cred, opts)
	if err != nil {
		return nil, nil, err
	}
	return rg, vm, nil
}

func newValidator(ctx context.Context, cfg *Config, rg directory.ResourceGroupDirectory, vm directory.VMDirectory) (*validator.Validator, error) {
	p, err := policy.Load(ctx, cfg.PolicyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	slog.Info("validator configured",
		"subscription", cfg.SubscriptionID,
		"policy", policySource(cfg.PolicyURI),
		"pointsPerCheck", p.PointsPerCheck,
		"parallelLookups", cfg.ParallelLookups)

	return validator.New(rg, vm,
		validator.WithPolicy(p),
		validator.WithParallelLookups(cfg.ParallelLookups),
	), nil
}

func policySource(uri string) string {
	if uri == "" {
		return "default"
	}
	return uri
}
