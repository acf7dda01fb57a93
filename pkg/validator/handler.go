/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/NVIDIA/rgvalidator/pkg/defaults"
	"github.com/NVIDIA/rgvalidator/pkg/serializer"
)

// HandleValidate serves validation requests. Any HTTP method is accepted.
//
// Example:
//
//	GET /api/validate?resourceGroupName=rg-prod&vmName=vm-web-01
//
//	POST /api/validate
//	Content-Type: application/json
//	Body: {"resourceGroupName": "rg-prod", "vmName": "vm-web-01"}
func (v *Validator) HandleValidate(w http.ResponseWriter, r *http.Request) {
	req := ParseRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), defaults.ValidationTimeout)
	defer cancel()

	resp, err := v.Validate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrMissingResourceGroupName) {
			validationsTotal.WithLabelValues("invalid").Inc()
			serializer.RespondText(w, http.StatusBadRequest, MissingResourceGroupMessage)
			return
		}

		validationsTotal.WithLabelValues("error").Inc()
		slog.ErrorContext(r.Context(), "validation failed",
			"resourceGroup", req.ResourceGroupName,
			"vm", req.VMName,
			"error", err)
		serializer.RespondText(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	validationsTotal.WithLabelValues("ok").Inc()
	serializer.RespondJSON(w, http.StatusOK, resp)
}
