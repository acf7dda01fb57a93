package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	rgerrors "github.com/NVIDIA/rgvalidator/pkg/errors"
)

// isNotFound reports whether err is an ARM 404.
func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

// codeFor classifies a non-404 lookup failure.
func codeFor(err error) rgerrors.ErrorCode {
	if errors.Is(err, context.DeadlineExceeded) {
		return rgerrors.ErrCodeTimeout
	}

	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return rgerrors.ErrCodeUnavailable
	}
	switch {
	case respErr.StatusCode == http.StatusUnauthorized, respErr.StatusCode == http.StatusForbidden:
		return rgerrors.ErrCodeUnauthorized
	case respErr.StatusCode == http.StatusTooManyRequests, respErr.StatusCode >= http.StatusInternalServerError:
		return rgerrors.ErrCodeUnavailable
	default:
		return rgerrors.ErrCodeInternal
	}
}

// lookupFailure wraps err with the subject of the lookup. ARM failures are
// rendered as their error code and message instead of the full response dump.
func lookupFailure(message string, err error, subject map[string]any) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		if respErr.ErrorCode != "" {
			subject["armErrorCode"] = respErr.ErrorCode
		}
		err = &armFailure{resp: respErr, message: armMessage(respErr.RawResponse)}
	}
	return rgerrors.WrapWithContext(codeFor(err), message, err, subject)
}

// armFailure is an ARM response error that prints like the service message.
type armFailure struct {
	resp    *azcore.ResponseError
	message string
}

func (e *armFailure) Error() string {
	code := e.resp.ErrorCode
	switch {
	case code != "" && e.message != "":
		return code + ": " + e.message
	case code != "":
		return code
	case e.message != "":
		return e.message
	default:
		return fmt.Sprintf("unexpected status %d", e.resp.StatusCode)
	}
}

func (e *armFailure) Unwrap() error {
	return e.resp
}

// armMessage extracts error.message from an ARM error body.
func armMessage(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	body, err := runtime.Payload(resp)
	if err != nil {
		return ""
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error.Message
}
