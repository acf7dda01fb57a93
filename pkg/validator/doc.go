/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package validator scores a resource group, and optionally a virtual
// machine inside it, against a scoring policy.
//
// # Checks
//
// Up to four checks run. Each adds or deducts the policy's points once,
// except that a found virtual machine scores nothing by itself:
//
//	resourceGroup  the resource group exists           +10 / -10
//	virtualMachine the virtual machine exists           0 / -10 (only when a VM name is given)
//	osType         the VM OS type is accepted          +10 / -10 (only when the VM exists)
//	vmSize         the VM size is on the allow-list    +10 / -10 (only when the VM exists)
//
// With the default policy the total is one of -20, -10, 0, 10, 20 or 30.
//
// # Outcomes
//
// A missing resource group name fails before any lookup with
// ErrMissingResourceGroupName. A lookup that returns not-found is scored;
// any other lookup failure aborts the validation and is returned as is,
// discarding the partial score.
//
// # Usage
//
//	v := validator.New(rgDirectory, vmDirectory, validator.WithPolicy(p))
//	resp, err := v.Validate(ctx, validator.Request{
//	    ResourceGroupName: "rg-prod",
//	    VMName:            "vm-web-01",
//	})
//
// # HTTP
//
// HandleValidate reads resourceGroupName and vmName from the query string or
// a JSON body (query wins per parameter) and answers 200 with the JSON
// response, 400 with a plain-text hint when resourceGroupName is missing,
// or 500 with "Error: <message>" when a lookup fails.
package validator
