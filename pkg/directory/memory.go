package directory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	_ ResourceGroupDirectory = (*Memory)(nil)
	_ VMDirectory            = (*Memory)(nil)
)

// Memory is an in-memory directory of resource groups and virtual machines.
// It backs dry runs from fixture files and tests. Failures can be injected
// per entity. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	groups  map[string]ResourceGroupRecord
	vms     map[vmKey]VMRecord
	rgErrs  map[string]error
	vmErrs  map[vmKey]error
	rgCalls int
	vmCalls int
}

type vmKey struct {
	resourceGroup string
	name          string
}

// NewMemory returns an empty directory.
func NewMemory() *Memory {
	return &Memory{
		groups: make(map[string]ResourceGroupRecord),
		vms:    make(map[vmKey]VMRecord),
		rgErrs: make(map[string]error),
		vmErrs: make(map[vmKey]error),
	}
}

// AddResourceGroup registers a resource group.
func (m *Memory) AddResourceGroup(rec ResourceGroupRecord) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[rec.Name] = rec
	return m
}

// AddVirtualMachine registers a virtual machine in resourceGroup.
func (m *Memory) AddVirtualMachine(resourceGroup string, rec VMRecord) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vms[vmKey{resourceGroup, rec.Name}] = rec
	return m
}

// FailResourceGroup makes lookups of name return err.
func (m *Memory) FailResourceGroup(name string, err error) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rgErrs[name] = err
	return m
}

// FailVirtualMachine makes lookups of resourceGroup/name return err.
func (m *Memory) FailVirtualMachine(resourceGroup, name string, err error) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vmErrs[vmKey{resourceGroup, name}] = err
	return m
}

// Calls returns how many resource group and virtual machine lookups were served.
func (m *Memory) Calls() (resourceGroups, virtualMachines int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rgCalls, m.vmCalls
}

// GetResourceGroup implements ResourceGroupDirectory.
func (m *Memory) GetResourceGroup(ctx context.Context, name string) (ResourceGroupLookup, error) {
	if err := ctx.Err(); err != nil {
		return ResourceGroupLookup{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rgCalls++

	if err, ok := m.rgErrs[name]; ok {
		return ResourceGroupLookup{}, err
	}
	rec, ok := m.groups[name]
	if !ok {
		return ResourceGroupNotFound(), nil
	}
	rec.Tags = maps.Clone(rec.Tags)
	if rec.Properties != nil {
		p := *rec.Properties
		rec.Properties = &p
	}
	return ResourceGroupFound(&rec), nil
}

// GetVirtualMachine implements VMDirectory.
func (m *Memory) GetVirtualMachine(ctx context.Context, resourceGroup, name string) (VMLookup, error) {
	if err := ctx.Err(); err != nil {
		return VMLookup{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.vmCalls++

	key := vmKey{resourceGroup, name}
	if err, ok := m.vmErrs[key]; ok {
		return VMLookup{}, err
	}
	rec, ok := m.vms[key]
	if !ok {
		return VMNotFound(), nil
	}
	return VMFound(&rec), nil
}

// Fixtures is the on-disk form of a Memory directory.
//
//	resourceGroups:
//	  - name: rg-prod
//	    location: westeurope
//	    virtualMachines:
//	      - name: vm-web-01
//	        osType: Linux
//	        vmSize: Standard_B2s
//	failures:
//	  - resourceGroup: rg-locked
//	    message: "AuthorizationFailed: client does not have authorization"
type Fixtures struct {
	ResourceGroups []FixtureResourceGroup `yaml:"resourceGroups"`
	Failures       []FixtureFailure       `yaml:"failures,omitempty"`
}

// FixtureResourceGroup is a resource group with its virtual machines.
type FixtureResourceGroup struct {
	ResourceGroupRecord `yaml:",inline"`
	VirtualMachines     []VMRecord `yaml:"virtualMachines,omitempty"`
}

// FixtureFailure injects a lookup failure. VirtualMachine is optional.
type FixtureFailure struct {
	ResourceGroup  string `yaml:"resourceGroup"`
	VirtualMachine string `yaml:"virtualMachine,omitempty"`
	Message        string `yaml:"message"`
}

// LoadFixtures reads a fixture file into a new Memory directory.
func LoadFixtures(path string) (*Memory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures %q: %w", path, err)
	}
	return ParseFixtures(b)
}

// ParseFixtures decodes YAML fixtures into a new Memory directory.
func ParseFixtures(data []byte) (*Memory, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	m := NewMemory()
	for _, g := range f.ResourceGroups {
		if g.Name == "" {
			return nil, errors.New("fixture resource group without a name")
		}
		m.AddResourceGroup(g.ResourceGroupRecord)
		for _, vm := range g.VirtualMachines {
			m.AddVirtualMachine(g.Name, vm)
		}
	}
	for _, fl := range f.Failures {
		if fl.ResourceGroup == "" {
			return nil, errors.New("fixture failure without a resourceGroup")
		}
		err := errors.New(fl.Message)
		if fl.VirtualMachine == "" {
			m.FailResourceGroup(fl.ResourceGroup, err)
		} else {
			m.FailVirtualMachine(fl.ResourceGroup, fl.VirtualMachine, err)
		}
	}
	return m, nil
}
