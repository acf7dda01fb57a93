/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package azure

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/rgvalidator/pkg/directory"
)

var _ directory.ResourceGroupDirectory = (*ResourceGroupDirectory)(nil)

// resourceGroupsAPI is the part of armresources.ResourceGroupsClient in use.
type resourceGroupsAPI interface {
	Get(ctx context.Context, resourceGroupName string, options *armresources.ResourceGroupsClientGetOptions) (armresources.ResourceGroupsClientGetResponse, error)
}

// ResourceGroupDirectory looks up resource groups in one subscription.
type ResourceGroupDirectory struct {
	api resourceGroupsAPI
}

// NewResourceGroupDirectory creates a directory for subscriptionID.
func NewResourceGroupDirectory(subscriptionID string, cred azcore.TokenCredential, opts *arm.ClientOptions) (*ResourceGroupDirectory, error) {
	if subscriptionID == "" {
		return nil, errors.New("subscription ID is required")
	}
	c, err := armresources.NewResourceGroupsClient(subscriptionID, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource groups client: %w", err)
	}
	return &ResourceGroupDirectory{api: c}, nil
}

// GetResourceGroup implements directory.ResourceGroupDirectory.
func (d *ResourceGroupDirectory) GetResourceGroup(ctx context.Context, name string) (directory.ResourceGroupLookup, error) {
	resp, err := d.api.Get(ctx, name, nil)
	if err != nil {
		if isNotFound(err) {
			return directory.ResourceGroupNotFound(), nil
		}
		return directory.ResourceGroupLookup{}, lookupFailure("resource group lookup failed", err, map[string]any{
			"resourceGroup": name,
		})
	}
	return directory.ResourceGroupFound(toResourceGroupRecord(resp.ResourceGroup)), nil
}

func toResourceGroupRecord(rg armresources.ResourceGroup) *directory.ResourceGroupRecord {
	rec := &directory.ResourceGroupRecord{
		ID:        ptr.Deref(rg.ID, ""),
		Name:      ptr.Deref(rg.Name, ""),
		Location:  ptr.Deref(rg.Location, ""),
		Type:      ptr.Deref(rg.Type, ""),
		ManagedBy: ptr.Deref(rg.ManagedBy, ""),
	}
	if len(rg.Tags) > 0 {
		rec.Tags = make(map[string]string, len(rg.Tags))
		for k, v := range rg.Tags {
			rec.Tags[k] = ptr.Deref(v, "")
		}
	}
	if rg.Properties != nil {
		rec.Properties = &directory.ResourceGroupProperties{
			ProvisioningState: ptr.Deref(rg.Properties.ProvisioningState, ""),
		}
	}
	return rec
}
