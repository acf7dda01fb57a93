package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// EnvSubscriptionID selects the subscription the directories query.
	EnvSubscriptionID = "AZURE_SUBSCRIPTION_ID"

	// EnvPolicy optionally points at a scoring policy (file, URL or cm://).
	EnvPolicy = "RGVALIDATOR_POLICY"

	// EnvParallelLookups enables concurrent resource group and VM lookups.
	EnvParallelLookups = "RGVALIDATOR_PARALLEL_LOOKUPS"
)

// Config holds the API settings read from the environment.
type Config struct {
	SubscriptionID  string
	PolicyURI       string
	ParallelLookups bool
}

// ConfigFromEnv reads Config from the environment.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		SubscriptionID: strings.TrimSpace(os.Getenv(EnvSubscriptionID)),
		PolicyURI:      strings.TrimSpace(os.Getenv(EnvPolicy)),
	}

	if v := strings.TrimSpace(os.Getenv(EnvParallelLookups)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvParallelLookups, v, err)
		}
		cfg.ParallelLookups = b
	}

	return cfg, nil
}
