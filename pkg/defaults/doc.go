// Package defaults provides centralized configuration constants for rgvalidator.
//
// This package defines timeout values, rate limits and size limits used
// across the codebase.
//
// # Timeout Categories
//
//   - Server timeouts: For HTTP server configuration
//   - Validation timeouts: For one validation request, both lookups included
//   - Kubernetes timeouts: For ConfigMap reads and writes
//   - HTTP client timeouts: For fetching policies over HTTP(S)
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/rgvalidator/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.KubeAPITimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Validation: 60s, below the 230s Azure Functions HTTP limit
//   - K8s operations: 30s per API call
//   - Server shutdown: 30s for graceful shutdown
package defaults
