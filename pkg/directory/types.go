package directory

import "context"

// LookupStatus is the non-failure outcome of a lookup.
type LookupStatus string

const (
	StatusFound    LookupStatus = "Found"
	StatusNotFound LookupStatus = "NotFound"
)

// ResourceGroupRecord is the metadata of a resource group.
// The JSON shape follows the ARM resource group document.
type ResourceGroupRecord struct {
	ID         string                   `json:"id,omitempty" yaml:"id,omitempty"`
	Name       string                   `json:"name" yaml:"name"`
	Location   string                   `json:"location,omitempty" yaml:"location,omitempty"`
	Type       string                   `json:"type,omitempty" yaml:"type,omitempty"`
	ManagedBy  string                   `json:"managedBy,omitempty" yaml:"managedBy,omitempty"`
	Tags       map[string]string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Properties *ResourceGroupProperties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// ResourceGroupProperties holds the resource group provisioning state.
type ResourceGroupProperties struct {
	ProvisioningState string `json:"provisioningState,omitempty" yaml:"provisioningState,omitempty"`
}

// VMRecord is the subset of virtual machine metadata the validator scores.
type VMRecord struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	OSType   string `json:"osType" yaml:"osType"`
	VMSize   string `json:"vmSize" yaml:"vmSize"`
}

// ResourceGroupLookup is the result of a resource group lookup.
type ResourceGroupLookup struct {
	Status LookupStatus
	Record *ResourceGroupRecord
}

// Found reports whether the resource group exists.
func (l ResourceGroupLookup) Found() bool {
	return l.Status == StatusFound && l.Record != nil
}

// VMLookup is the result of a virtual machine lookup.
type VMLookup struct {
	Status LookupStatus
	Record *VMRecord
}

// Found reports whether the virtual machine exists.
func (l VMLookup) Found() bool {
	return l.Status == StatusFound && l.Record != nil
}

// ResourceGroupFound builds a found lookup.
func ResourceGroupFound(rec *ResourceGroupRecord) ResourceGroupLookup {
	return ResourceGroupLookup{Status: StatusFound, Record: rec}
}

// ResourceGroupNotFound builds a not-found lookup.
func ResourceGroupNotFound() ResourceGroupLookup {
	return ResourceGroupLookup{Status: StatusNotFound}
}

// VMFound builds a found lookup.
func VMFound(rec *VMRecord) VMLookup {
	return VMLookup{Status: StatusFound, Record: rec}
}

// VMNotFound builds a not-found lookup.
func VMNotFound() VMLookup {
	return VMLookup{Status: StatusNotFound}
}

// ResourceGroupDirectory looks up resource groups by name.
type ResourceGroupDirectory interface {
	GetResourceGroup(ctx context.Context, name string) (ResourceGroupLookup, error)
}

// VMDirectory looks up virtual machines by name within a resource group.
// Implementations request the instance view.
type VMDirectory interface {
	GetVirtualMachine(ctx context.Context, resourceGroup, name string) (VMLookup, error)
}
