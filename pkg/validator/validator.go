/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/rgvalidator/pkg/directory"
	"github.com/NVIDIA/rgvalidator/pkg/policy"
)

// Validator scores resource groups and virtual machines. It holds no
// per-request state and is safe for concurrent use.
type Validator struct {
	resourceGroups directory.ResourceGroupDirectory
	vms            directory.VMDirectory
	policy         *policy.Policy
	parallel       bool
	message        string
	logger         *slog.Logger
}

// Option is a functional option for configuring Validator instances.
type Option func(*Validator)

// WithPolicy sets the scoring policy. Nil keeps the default.
func WithPolicy(p *policy.Policy) Option {
	return func(v *Validator) {
		if p != nil {
			v.policy = p
		}
	}
}

// WithParallelLookups issues the resource group and virtual machine lookups
// concurrently. Scores and responses are unchanged.
func WithParallelLookups(parallel bool) Option {
	return func(v *Validator) {
		v.parallel = parallel
	}
}

// WithMessage overrides the response message.
func WithMessage(message string) Option {
	return func(v *Validator) {
		v.message = message
	}
}

// WithLogger sets the logger used for scoring decisions. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = l
	}
}

// New creates a Validator over the given directories.
func New(rg directory.ResourceGroupDirectory, vm directory.VMDirectory, opts ...Option) *Validator {
	v := &Validator{
		resourceGroups: rg,
		vms:            vm,
		policy:         policy.Default(),
		message:        DefaultMessage,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Policy returns the scoring policy in use.
func (v *Validator) Policy() *policy.Policy {
	return v.policy
}

func (v *Validator) log() *slog.Logger {
	if v.logger != nil {
		return v.logger
	}
	return slog.Default()
}

// Validate runs the checks for req.
//
// It returns ErrMissingResourceGroupName without any lookup when the resource
// group name is empty, and the lookup error unchanged when a directory fails
// for any reason other than not-found.
func (v *Validator) Validate(ctx context.Context, req Request) (*Response, error) {
	if req.ResourceGroupName == "" {
		return nil, ErrMissingResourceGroupName
	}

	start := time.Now()

	rgRes, vmRes, err := v.lookup(ctx, req)
	if err != nil {
		return nil, err
	}

	sc := &scorecard{points: v.policy.PointsPerCheck, logger: v.log(), ctx: ctx}
	resp := &Response{
		Message:  v.message,
		VMStatus: StatusNotChecked,
	}

	if rgRes.Found() {
		resp.ResourceGroupStatus = StatusValidated
		resp.ResourceGroupDetails = rgRes.Record
		sc.pass(CheckResourceGroup, req.ResourceGroupName, "", fmt.Sprintf("resource group %q validated", req.ResourceGroupName))
	} else {
		resp.ResourceGroupStatus = StatusNotFound
		sc.fail(CheckResourceGroup, req.ResourceGroupName, "", fmt.Sprintf("resource group %q not found", req.ResourceGroupName))
	}

	if req.VMName != "" {
		v.scoreVM(sc, resp, req, vmRes)
	}

	resp.TotalPoints = sc.total
	resp.Checks = sc.results

	validationScore.Observe(float64(resp.TotalPoints))
	v.log().DebugContext(ctx, "validation completed",
		"resourceGroup", req.ResourceGroupName,
		"vm", req.VMName,
		"resourceGroupStatus", resp.ResourceGroupStatus,
		"vmStatus", resp.VMStatus,
		"totalPoints", resp.TotalPoints,
		"duration", time.Since(start))

	return resp, nil
}

func (v *Validator) scoreVM(sc *scorecard, resp *Response, req Request, res directory.VMLookup) {
	subject := req.ResourceGroupName + "/" + req.VMName

	if !res.Found() {
		resp.VMStatus = StatusNotFound
		sc.fail(CheckVirtualMachine, subject, "",
			fmt.Sprintf("VM %q not found in resource group %q", req.VMName, req.ResourceGroupName))
		return
	}

	rec := res.Record
	resp.VMStatus = StatusValidated
	resp.VMDetails = &VMDetails{
		Name:   rec.Name,
		OSType: rec.OSType,
		VMSize: rec.VMSize,
	}
	// existence of the VM only unlocks the OS and size checks
	sc.record(CheckVirtualMachine, subject, "", CheckStatusPassed, 0, fmt.Sprintf("VM %q found", req.VMName))

	if v.policy.IsValidOSType(rec.OSType) {
		sc.pass(CheckOSType, subject, rec.OSType, fmt.Sprintf("VM %q OS validated: %s", req.VMName, rec.OSType))
	} else {
		sc.fail(CheckOSType, subject, rec.OSType, fmt.Sprintf("VM %q OS type invalid", req.VMName),
			"closest", v.policy.ClosestOSType(rec.OSType))
	}

	if v.policy.IsAllowedVMSize(rec.VMSize) {
		sc.pass(CheckVMSize, subject, rec.VMSize, fmt.Sprintf("VM %q size validated: %s", req.VMName, rec.VMSize))
	} else {
		sc.fail(CheckVMSize, subject, rec.VMSize, fmt.Sprintf("VM %q size invalid", req.VMName),
			"closest", v.policy.ClosestVMSize(rec.VMSize))
	}
}

// lookup fetches the resource group and, when requested, the virtual machine.
// A resource group failure takes precedence over a virtual machine failure.
func (v *Validator) lookup(ctx context.Context, req Request) (directory.ResourceGroupLookup, directory.VMLookup, error) {
	var (
		rgRes directory.ResourceGroupLookup
		vmRes directory.VMLookup
	)

	if !v.parallel || req.VMName == "" {
		var err error
		if rgRes, err = v.getResourceGroup(ctx, req.ResourceGroupName); err != nil {
			return rgRes, vmRes, err
		}
		if req.VMName != "" {
			if vmRes, err = v.getVirtualMachine(ctx, req.ResourceGroupName, req.VMName); err != nil {
				return rgRes, vmRes, err
			}
		}
		return rgRes, vmRes, nil
	}

	// no shared cancellation: a VM failure must not mask the resource group outcome
	var (
		g            errgroup.Group
		rgErr, vmErr error
	)
	g.Go(func() error {
		rgRes, rgErr = v.getResourceGroup(ctx, req.ResourceGroupName)
		return rgErr
	})
	g.Go(func() error {
		vmRes, vmErr = v.getVirtualMachine(ctx, req.ResourceGroupName, req.VMName)
		return vmErr
	})
	_ = g.Wait()

	// report the same error the sequential order would
	if rgErr != nil {
		return rgRes, vmRes, rgErr
	}
	return rgRes, vmRes, vmErr
}

func (v *Validator) getResourceGroup(ctx context.Context, name string) (directory.ResourceGroupLookup, error) {
	start := time.Now()
	res, err := v.resourceGroups.GetResourceGroup(ctx, name)
	lookupDuration.WithLabelValues("resource_group", outcome(res.Status, err)).Observe(time.Since(start).Seconds())
	return res, err
}

func (v *Validator) getVirtualMachine(ctx context.Context, resourceGroup, name string) (directory.VMLookup, error) {
	start := time.Now()
	res, err := v.vms.GetVirtualMachine(ctx, resourceGroup, name)
	lookupDuration.WithLabelValues("virtual_machine", outcome(res.Status, err)).Observe(time.Since(start).Seconds())
	return res, err
}

func outcome(status directory.LookupStatus, err error) string {
	switch {
	case err != nil:
		return "error"
	case status == directory.StatusFound:
		return "found"
	default:
		return "not_found"
	}
}

// scorecard accumulates check results for one request.
type scorecard struct {
	ctx     context.Context
	logger  *slog.Logger
	points  int
	total   int
	results []CheckResult
}

func (s *scorecard) pass(check Check, subject, actual, msg string, attrs ...any) {
	s.record(check, subject, actual, CheckStatusPassed, s.points, msg, attrs...)
}

func (s *scorecard) fail(check Check, subject, actual, msg string, attrs ...any) {
	s.record(check, subject, actual, CheckStatusFailed, -s.points, msg, attrs...)
}

func (s *scorecard) record(check Check, subject, actual string, status CheckStatus, delta int, msg string, attrs ...any) {
	s.total += delta
	s.results = append(s.results, CheckResult{
		Check:   check,
		Subject: subject,
		Actual:  actual,
		Status:  status,
		Points:  delta,
		Message: msg,
	})
	checkTotal.WithLabelValues(string(check), string(status)).Inc()

	args := append([]any{
		"check", check,
		"subject", subject,
		"points", delta,
		"total", s.total,
	}, attrs...)
	s.logger.InfoContext(s.ctx, msg, args...)
}
