package validator

import (
	"github.com/NVIDIA/rgvalidator/pkg/directory"
	rgerrors "github.com/NVIDIA/rgvalidator/pkg/errors"
)

const (
	// DefaultMessage is the message of every successful response.
	DefaultMessage = "Validation results"

	// MissingResourceGroupMessage is the 400 body.
	MissingResourceGroupMessage = "Please provide a 'resourceGroupName' in the query string or request body."
)

// ErrMissingResourceGroupName is returned when the request has no resource group name.
var ErrMissingResourceGroupName = rgerrors.New(rgerrors.ErrCodeInvalidRequest, MissingResourceGroupMessage)

// Status is the per-resource status reported in a response.
type Status string

const (
	StatusValidated  Status = "Validated"
	StatusNotFound   Status = "Not Found"
	StatusNotChecked Status = "Not Checked"
)

// Request names what to validate.
type Request struct {
	ResourceGroupName string `json:"resourceGroupName" yaml:"resourceGroupName"`
	VMName            string `json:"vmName,omitempty" yaml:"vmName,omitempty"`
}

// Response is the validation result.
type Response struct {
	Message              string                         `json:"message" yaml:"message"`
	ResourceGroupStatus  Status                         `json:"resourceGroupStatus" yaml:"resourceGroupStatus"`
	VMStatus             Status                         `json:"vmStatus" yaml:"vmStatus"`
	TotalPoints          int                            `json:"totalPoints" yaml:"totalPoints"`
	ResourceGroupDetails *directory.ResourceGroupRecord `json:"resourceGroupDetails,omitempty" yaml:"resourceGroupDetails,omitempty"`
	VMDetails            *VMDetails                     `json:"vmDetails,omitempty" yaml:"vmDetails,omitempty"`

	// Checks lists the scored checks in evaluation order. Not part of the
	// HTTP response.
	Checks []CheckResult `json:"-" yaml:"-"`
}

// VMDetails is the projection of a found virtual machine.
type VMDetails struct {
	Name   string `json:"name" yaml:"name"`
	OSType string `json:"osType" yaml:"osType"`
	VMSize string `json:"vmSize" yaml:"vmSize"`
}

// Check names a scored check.
type Check string

const (
	CheckResourceGroup  Check = "resourceGroup"
	CheckVirtualMachine Check = "virtualMachine"
	CheckOSType         Check = "osType"
	CheckVMSize         Check = "vmSize"
)

// CheckStatus is the outcome of a check.
type CheckStatus string

const (
	CheckStatusPassed CheckStatus = "passed"
	CheckStatusFailed CheckStatus = "failed"
)

// CheckResult records one scoring decision.
type CheckResult struct {
	Check   Check       `json:"check" yaml:"check"`
	Subject string      `json:"subject" yaml:"subject"`
	Actual  string      `json:"actual,omitempty" yaml:"actual,omitempty"`
	Status  CheckStatus `json:"status" yaml:"status"`
	Points  int         `json:"points" yaml:"points"`
	Message string      `json:"message,omitempty" yaml:"message,omitempty"`
}
