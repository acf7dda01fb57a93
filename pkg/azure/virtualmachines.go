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
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/rgvalidator/pkg/directory"
	rgerrors "github.com/NVIDIA/rgvalidator/pkg/errors"
)

var _ directory.VMDirectory = (*VMDirectory)(nil)

// virtualMachinesAPI is the part of armcompute.VirtualMachinesClient in use.
type virtualMachinesAPI interface {
	Get(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientGetOptions) (armcompute.VirtualMachinesClientGetResponse, error)
}

// VMDirectory looks up virtual machines in one subscription.
type VMDirectory struct {
	api virtualMachinesAPI
}

// NewVMDirectory creates a directory for subscriptionID.
func NewVMDirectory(subscriptionID string, cred azcore.TokenCredential, opts *arm.ClientOptions) (*VMDirectory, error) {
	if subscriptionID == "" {
		return nil, errors.New("subscription ID is required")
	}
	c, err := armcompute.NewVirtualMachinesClient(subscriptionID, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual machines client: %w", err)
	}
	return &VMDirectory{api: c}, nil
}

// GetVirtualMachine implements directory.VMDirectory. The instance view is
// always requested.
func (d *VMDirectory) GetVirtualMachine(ctx context.Context, resourceGroup, name string) (directory.VMLookup, error) {
	resp, err := d.api.Get(ctx, resourceGroup, name, &armcompute.VirtualMachinesClientGetOptions{
		Expand: ptr.To(armcompute.InstanceViewTypesInstanceView),
	})
	if err != nil {
		if isNotFound(err) {
			return directory.VMNotFound(), nil
		}
		return directory.VMLookup{}, lookupFailure("virtual machine lookup failed", err, map[string]any{
			"resourceGroup":  resourceGroup,
			"virtualMachine": name,
		})
	}
	rec, err := toVMRecord(resp.VirtualMachine)
	if err != nil {
		return directory.VMLookup{}, rgerrors.WrapWithContext(rgerrors.ErrCodeInternal, "virtual machine lookup failed", err, map[string]any{
			"resourceGroup":  resourceGroup,
			"virtualMachine": name,
		})
	}
	return directory.VMFound(rec), nil
}

// toVMRecord projects the fields the validator scores. A response without
// the storage or hardware profile is malformed. An unset OS type or size
// inside a present profile projects to an empty string and fails the check.
func toVMRecord(vm armcompute.VirtualMachine) (*directory.VMRecord, error) {
	props := vm.Properties
	switch {
	case props == nil:
		return nil, errors.New("response has no properties")
	case props.StorageProfile == nil || props.StorageProfile.OSDisk == nil:
		return nil, errors.New("response has no storageProfile.osDisk")
	case props.HardwareProfile == nil:
		return nil, errors.New("response has no hardwareProfile")
	}
	return &directory.VMRecord{
		ID:       ptr.Deref(vm.ID, ""),
		Name:     ptr.Deref(vm.Name, ""),
		Location: ptr.Deref(vm.Location, ""),
		OSType:   string(ptr.Deref(props.StorageProfile.OSDisk.OSType, "")),
		VMSize:   string(ptr.Deref(props.HardwareProfile.VMSize, "")),
	}, nil
}
