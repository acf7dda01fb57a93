// Package azure implements the resource group and virtual machine
// directories on top of Azure Resource Manager.
//
// Both directories share one credential, normally DefaultAzureCredential
// (environment, workload identity, managed identity, Azure CLI). A 404 from
// ARM becomes a not-found lookup; every other error is returned as a
// failure carrying an error code derived from the HTTP status.
package azure
