// Package policy holds the rules a validation is scored against.
//
// The default policy awards or deducts 10 points per check, accepts the
// "Linux" and "Windows" OS types and a fixed list of VM sizes. Matching is
// exact and case-sensitive: "linux" is not a valid OS type.
package policy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/agnivade/levenshtein"
)

const (
	// APIVersion is the apiVersion of policy documents.
	APIVersion = "rgvalidator.nvidia.com/v1alpha1"

	// Kind is the kind of policy documents.
	Kind = "ScoringPolicy"

	// DefaultPointsPerCheck is awarded or deducted once per check.
	DefaultPointsPerCheck = 10
)

var (
	defaultOSTypes = []string{"Linux", "Windows"}
	defaultVMSizes = []string{"Standard_DC2ds_v3", "Standard_B2s", "Standard_D2s_v3"}
)

// Policy is an immutable scoring policy. Share freely between requests.
type Policy struct {
	PointsPerCheck int      `json:"pointsPerCheck" yaml:"pointsPerCheck"`
	OSTypes        []string `json:"osTypes" yaml:"osTypes"`
	VMSizes        []string `json:"vmSizes" yaml:"vmSizes"`
}

// Default returns the built-in policy.
func Default() *Policy {
	return &Policy{
		PointsPerCheck: DefaultPointsPerCheck,
		OSTypes:        slices.Clone(defaultOSTypes),
		VMSizes:        slices.Clone(defaultVMSizes),
	}
}

// Validate checks the policy is usable.
func (p *Policy) Validate() error {
	var errs []error
	if p.PointsPerCheck <= 0 {
		errs = append(errs, fmt.Errorf("pointsPerCheck must be positive, got %d", p.PointsPerCheck))
	}
	if len(p.OSTypes) == 0 {
		errs = append(errs, errors.New("osTypes must not be empty"))
	}
	if len(p.VMSizes) == 0 {
		errs = append(errs, errors.New("vmSizes must not be empty"))
	}
	if slices.Contains(p.OSTypes, "") || slices.Contains(p.VMSizes, "") {
		errs = append(errs, errors.New("osTypes and vmSizes must not contain empty values"))
	}
	return errors.Join(errs...)
}

// IsValidOSType reports whether osType is accepted. Case-sensitive.
func (p *Policy) IsValidOSType(osType string) bool {
	return slices.Contains(p.OSTypes, osType)
}

// IsAllowedVMSize reports whether vmSize is on the allow-list. Case-sensitive.
func (p *Policy) IsAllowedVMSize(vmSize string) bool {
	return slices.Contains(p.VMSizes, vmSize)
}

// ClosestVMSize returns the allowed size nearest to vmSize by edit distance.
// It only feeds diagnostics; it never changes a score.
func (p *Policy) ClosestVMSize(vmSize string) string {
	return closest(vmSize, p.VMSizes)
}

// ClosestOSType returns the accepted OS type nearest to osType by edit distance.
func (p *Policy) ClosestOSType(osType string) string {
	return closest(osType, p.OSTypes)
}

func closest(s string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(s, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
