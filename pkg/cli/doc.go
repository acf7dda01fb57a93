// Package cli implements the command-line interface for rgvalidator.
//
// # Overview
//
// rgvalidator scores an Azure resource group, and optionally one of its
// virtual machines, against a compliance policy. Every check adds or deducts
// the policy points (10 by default). The same scoring backs the HTTP API
// started by the serve command.
//
// # Commands
//
// serve - Run the HTTP API:
//
//	rgvalidator serve
//
// Serves /api/validate (Azure Functions custom handler route), /v1/validate,
// /health, /ready and /metrics.
//
// validate - Score one resource group and VM:
//
//	rgvalidator validate --resource-group rg-prod --vm vm-web-01 --subscription <id>
//	rgvalidator validate -g rg-prod --vm vm-web-01 --fixtures fixtures.yaml --explain
//	rgvalidator validate -g rg-prod --min-score 10 -o cm://compliance/rg-prod
//
// Lookups go to Azure Resource Manager with the ambient credential, or to a
// YAML fixture file with --fixtures. Use --min-score in pipelines to exit
// non-zero below a threshold.
//
// policy show - Print the effective policy:
//
//	rgvalidator policy show --policy cm://compliance/policy --format yaml
//
// policy check - Score an OS type and VM size without lookups:
//
//	rgvalidator policy check --os-type Linux --vm-size Standard_B2ms
//
// # Global Flags
//
//	--debug        Enable debug logging
//	--log-json     Output logs in JSON format
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
//	LOG_LEVEL                      Logging verbosity (debug, info, warn, error)
//	AZURE_SUBSCRIPTION_ID          Default for --subscription
//	RGVALIDATOR_POLICY             Default for --policy
//	RGVALIDATOR_PARALLEL_LOOKUPS   Default for --parallel
//	KUBECONFIG                     Kubeconfig for cm:// policies and outputs
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, lookup failure, score below --min-score)
//	2  Context canceled or timeout
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/rgvalidator/pkg/cli.version=1.0.0'"
package cli
