package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetResourceGroup(t *testing.T) {
	ctx := context.Background()
	m := NewMemory().AddResourceGroup(ResourceGroupRecord{
		Name:     "rg-prod",
		Location: "westeurope",
		Tags:     map[string]string{"env": "prod"},
	})

	res, err := m.GetResourceGroup(ctx, "rg-prod")
	require.NoError(t, err)
	assert.True(t, res.Found())
	assert.Equal(t, "westeurope", res.Record.Location)

	// returned records are copies
	res.Record.Tags["env"] = "mutated"
	again, err := m.GetResourceGroup(ctx, "rg-prod")
	require.NoError(t, err)
	assert.Equal(t, "prod", again.Record.Tags["env"])

	missing, err := m.GetResourceGroup(ctx, "rg-missing")
	require.NoError(t, err)
	assert.False(t, missing.Found())
	assert.Equal(t, StatusNotFound, missing.Status)
	assert.Nil(t, missing.Record)

	rgCalls, vmCalls := m.Calls()
	assert.Equal(t, 3, rgCalls)
	assert.Zero(t, vmCalls)
}

func TestMemory_GetVirtualMachine(t *testing.T) {
	ctx := context.Background()
	m := NewMemory().AddVirtualMachine("rg-prod", VMRecord{Name: "vm-web-01", OSType: "Linux", VMSize: "Standard_B2s"})

	res, err := m.GetVirtualMachine(ctx, "rg-prod", "vm-web-01")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Linux", res.Record.OSType)

	// scoped to the resource group
	other, err := m.GetVirtualMachine(ctx, "rg-dev", "vm-web-01")
	require.NoError(t, err)
	assert.False(t, other.Found())
}

func TestMemory_InjectedFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("AuthorizationFailed")
	m := NewMemory().
		FailResourceGroup("rg-locked", boom).
		FailVirtualMachine("rg-prod", "vm-locked", boom)

	_, err := m.GetResourceGroup(ctx, "rg-locked")
	assert.ErrorIs(t, err, boom)

	_, err = m.GetVirtualMachine(ctx, "rg-prod", "vm-locked")
	assert.ErrorIs(t, err, boom)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory().GetResourceGroup(ctx, "rg-prod")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewMemory().GetVirtualMachine(ctx, "rg-prod", "vm")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFixtures(t *testing.T) {
	data := []byte(`
resourceGroups:
  - name: rg-prod
    location: westeurope
    tags:
      owner: platform
    virtualMachines:
      - name: vm-web-01
        osType: Linux
        vmSize: Standard_B2s
      - name: vm-legacy
        osType: Solaris
        vmSize: Standard_A0
failures:
  - resourceGroup: rg-locked
    message: "AuthorizationFailed: no access"
  - resourceGroup: rg-prod
    virtualMachine: vm-flaky
    message: "connection reset by peer"
`)

	m, err := ParseFixtures(data)
	require.NoError(t, err)

	ctx := context.Background()
	rg, err := m.GetResourceGroup(ctx, "rg-prod")
	require.NoError(t, err)
	require.True(t, rg.Found())
	assert.Equal(t, "platform", rg.Record.Tags["owner"])

	vm, err := m.GetVirtualMachine(ctx, "rg-prod", "vm-legacy")
	require.NoError(t, err)
	require.True(t, vm.Found())
	assert.Equal(t, "Solaris", vm.Record.OSType)

	_, err = m.GetResourceGroup(ctx, "rg-locked")
	assert.EqualError(t, err, "AuthorizationFailed: no access")

	_, err = m.GetVirtualMachine(ctx, "rg-prod", "vm-flaky")
	assert.EqualError(t, err, "connection reset by peer")
}

func TestParseFixtures_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "resourceGroups: [unterminated"},
		{"group without name", "resourceGroups:\n  - location: westeurope\n"},
		{"failure without group", "failures:\n  - message: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixtures([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFixtures_MissingFile(t *testing.T) {
	_, err := LoadFixtures(t.TempDir() + "/absent.yaml")
	assert.ErrorContains(t, err, "failed to read fixtures")
}
