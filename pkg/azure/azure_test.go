package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	rgerrors "github.com/NVIDIA/rgvalidator/pkg/errors"
)

func armError(status int, code string) error {
	return armErrorWithMessage(status, code, "")
}

func armErrorWithMessage(status int, code, message string) error {
	req := httptest.NewRequest(http.MethodGet, "https://management.azure.com/subscriptions/sub/resourcegroups/rg", nil)
	return &azcore.ResponseError{
		ErrorCode:  code,
		StatusCode: status,
		RawResponse: &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Request:    req,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`{"error":{"code":"` + code + `","message":"` + message + `"}}`)),
		},
	}
}

type fakeResourceGroups struct {
	rg    *armresources.ResourceGroup
	err   error
	names []string
}

func (f *fakeResourceGroups) Get(_ context.Context, name string, _ *armresources.ResourceGroupsClientGetOptions) (armresources.ResourceGroupsClientGetResponse, error) {
	f.names = append(f.names, name)
	if f.err != nil {
		return armresources.ResourceGroupsClientGetResponse{}, f.err
	}
	return armresources.ResourceGroupsClientGetResponse{ResourceGroup: *f.rg}, nil
}

type fakeVirtualMachines struct {
	vm   *armcompute.VirtualMachine
	err  error
	opts *armcompute.VirtualMachinesClientGetOptions
}

func (f *fakeVirtualMachines) Get(_ context.Context, _ string, _ string, opts *armcompute.VirtualMachinesClientGetOptions) (armcompute.VirtualMachinesClientGetResponse, error) {
	f.opts = opts
	if f.err != nil {
		return armcompute.VirtualMachinesClientGetResponse{}, f.err
	}
	return armcompute.VirtualMachinesClientGetResponse{VirtualMachine: *f.vm}, nil
}

func TestResourceGroupDirectory_Found(t *testing.T) {
	api := &fakeResourceGroups{rg: &armresources.ResourceGroup{
		ID:       ptr.To("/subscriptions/sub/resourceGroups/rg-prod"),
		Name:     ptr.To("rg-prod"),
		Location: ptr.To("westeurope"),
		Type:     ptr.To("Microsoft.Resources/resourceGroups"),
		Tags:     map[string]*string{"env": ptr.To("prod"), "empty": nil},
		Properties: &armresources.ResourceGroupProperties{
			ProvisioningState: ptr.To("Succeeded"),
		},
	}}
	d := &ResourceGroupDirectory{api: api}

	res, err := d.GetResourceGroup(context.Background(), "rg-prod")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, []string{"rg-prod"}, api.names)
	assert.Equal(t, "rg-prod", res.Record.Name)
	assert.Equal(t, "westeurope", res.Record.Location)
	assert.Equal(t, "prod", res.Record.Tags["env"])
	assert.Equal(t, "", res.Record.Tags["empty"])
	assert.Equal(t, "Succeeded", res.Record.Properties.ProvisioningState)
}

func TestResourceGroupDirectory_NotFound(t *testing.T) {
	d := &ResourceGroupDirectory{api: &fakeResourceGroups{err: armError(http.StatusNotFound, "ResourceGroupNotFound")}}

	res, err := d.GetResourceGroup(context.Background(), "rg-missing")
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Nil(t, res.Record)
}

func TestResourceGroupDirectory_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code rgerrors.ErrorCode
	}{
		{"forbidden", armError(http.StatusForbidden, "AuthorizationFailed"), rgerrors.ErrCodeUnauthorized},
		{"unauthorized", armError(http.StatusUnauthorized, "InvalidAuthenticationToken"), rgerrors.ErrCodeUnauthorized},
		{"throttled", armError(http.StatusTooManyRequests, "TooManyRequests"), rgerrors.ErrCodeUnavailable},
		{"server error", armError(http.StatusBadGateway, "BadGateway"), rgerrors.ErrCodeUnavailable},
		{"bad request", armError(http.StatusBadRequest, "InvalidResourceGroupName"), rgerrors.ErrCodeInternal},
		{"transport", errors.New("dial tcp: connection refused"), rgerrors.ErrCodeUnavailable},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), rgerrors.ErrCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &ResourceGroupDirectory{api: &fakeResourceGroups{err: tt.err}}

			_, err := d.GetResourceGroup(context.Background(), "rg-prod")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.code, rgerrors.CodeOf(err))

			var se *rgerrors.StructuredError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "rg-prod", se.Context["resourceGroup"])
		})
	}
}

func TestVMDirectory_FoundRequestsInstanceView(t *testing.T) {
	api := &fakeVirtualMachines{vm: &armcompute.VirtualMachine{
		Name:     ptr.To("vm-web-01"),
		Location: ptr.To("westeurope"),
		Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{
				VMSize: ptr.To(armcompute.VirtualMachineSizeTypesStandardB2S),
			},
			StorageProfile: &armcompute.StorageProfile{
				OSDisk: &armcompute.OSDisk{OSType: ptr.To(armcompute.OperatingSystemTypesLinux)},
			},
		},
	}}
	d := &VMDirectory{api: api}

	res, err := d.GetVirtualMachine(context.Background(), "rg-prod", "vm-web-01")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "vm-web-01", res.Record.Name)
	assert.Equal(t, "Linux", res.Record.OSType)
	assert.Equal(t, "Standard_B2s", res.Record.VMSize)

	require.NotNil(t, api.opts)
	assert.Equal(t, armcompute.InstanceViewTypesInstanceView, *api.opts.Expand)
}

func TestVMDirectory_MalformedResponse(t *testing.T) {
	linux := ptr.To(armcompute.OperatingSystemTypesLinux)
	b2s := ptr.To(armcompute.VirtualMachineSizeTypesStandardB2S)

	tests := []struct {
		name string
		vm   armcompute.VirtualMachine
	}{
		{"no properties", armcompute.VirtualMachine{Name: ptr.To("vm-bare")}},
		{"no storage profile", armcompute.VirtualMachine{Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{VMSize: b2s},
		}}},
		{"no os disk", armcompute.VirtualMachine{Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{VMSize: b2s},
			StorageProfile:  &armcompute.StorageProfile{},
		}}},
		{"no hardware profile", armcompute.VirtualMachine{Properties: &armcompute.VirtualMachineProperties{
			StorageProfile: &armcompute.StorageProfile{OSDisk: &armcompute.OSDisk{OSType: linux}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &VMDirectory{api: &fakeVirtualMachines{vm: &tt.vm}}

			res, err := d.GetVirtualMachine(context.Background(), "rg-prod", "vm-bare")
			require.Error(t, err)
			assert.False(t, res.Found())
			assert.Equal(t, rgerrors.ErrCodeInternal, rgerrors.CodeOf(err))
			assert.Contains(t, err.Error(), "virtual machine lookup failed")
		})
	}
}

func TestVMDirectory_UnsetFieldsInPresentProfiles(t *testing.T) {
	d := &VMDirectory{api: &fakeVirtualMachines{vm: &armcompute.VirtualMachine{
		Name: ptr.To("vm-unset"),
		Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{},
			StorageProfile:  &armcompute.StorageProfile{OSDisk: &armcompute.OSDisk{}},
		},
	}}}

	res, err := d.GetVirtualMachine(context.Background(), "rg-prod", "vm-unset")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Empty(t, res.Record.OSType)
	assert.Empty(t, res.Record.VMSize)
}

func TestLookupFailure_RendersARMMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "code and message",
			err:  armErrorWithMessage(http.StatusForbidden, "AuthorizationFailed", "The client does not have authorization"),
			want: "resource group lookup failed: AuthorizationFailed: The client does not have authorization",
		},
		{
			name: "code only",
			err:  armError(http.StatusConflict, "Conflict"),
			want: "resource group lookup failed: Conflict",
		},
		{
			name: "non ARM cause",
			err:  errors.New("dial tcp: connection refused"),
			want: "resource group lookup failed: dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &ResourceGroupDirectory{api: &fakeResourceGroups{err: tt.err}}

			_, err := d.GetResourceGroup(context.Background(), "rg-prod")
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.NotContains(t, err.Error(), "RESPONSE")
			assert.NotContains(t, err.Error(), "\n")

			var respErr *azcore.ResponseError
			if errors.As(tt.err, &respErr) {
				require.True(t, errors.As(err, &respErr))
			}
		})
	}
}

func TestVMDirectory_NotFoundAndFailure(t *testing.T) {
	notFound := &VMDirectory{api: &fakeVirtualMachines{err: armError(http.StatusNotFound, "ResourceNotFound")}}
	res, err := notFound.GetVirtualMachine(context.Background(), "rg-prod", "vm-missing")
	require.NoError(t, err)
	assert.False(t, res.Found())

	failing := &VMDirectory{api: &fakeVirtualMachines{err: armError(http.StatusForbidden, "AuthorizationFailed")}}
	_, err = failing.GetVirtualMachine(context.Background(), "rg-prod", "vm-web-01")
	require.Error(t, err)
	assert.Equal(t, rgerrors.ErrCodeUnauthorized, rgerrors.CodeOf(err))

	var se *rgerrors.StructuredError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "vm-web-01", se.Context["virtualMachine"])
	assert.Equal(t, "AuthorizationFailed", se.Context["armErrorCode"])
}

func TestNewDirectories_RequireSubscription(t *testing.T) {
	_, err := NewResourceGroupDirectory("", nil, nil)
	assert.Error(t, err)

	_, err = NewVMDirectory("", nil, nil)
	assert.Error(t, err)
}

func TestDefaultClientOptions(t *testing.T) {
	opts := DefaultClientOptions()
	assert.Equal(t, ApplicationID, opts.Telemetry.ApplicationID)
}
