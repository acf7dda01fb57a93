package server

import (
	"errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	rgerrors "github.com/NVIDIA/rgvalidator/pkg/errors"
	"github.com/NVIDIA/rgvalidator/pkg/serializer"
)

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code rgerrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr writes err as a JSON error response. Structured errors
// keep their code, message and context; anything else is reported as
// internal with fallbackMessage.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, details map[string]any) {
	var se *rgerrors.StructuredError
	if errors.As(err, &se) {
		merged := mergeDetails(se.Context, details)
		if se.Cause != nil {
			if merged == nil {
				merged = map[string]any{}
			}
			merged["error"] = se.Cause.Error()
		}
		WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code), merged)
		return
	}

	merged := mergeDetails(details, nil)
	if err != nil {
		if merged == nil {
			merged = map[string]any{}
		}
		merged["error"] = err.Error()
	}
	WriteError(w, r, http.StatusInternalServerError, rgerrors.ErrCodeInternal, fallbackMessage, true, merged)
}

// HTTPStatusFromCode maps an error code to its HTTP status.
func HTTPStatusFromCode(code rgerrors.ErrorCode) int {
	switch code {
	case rgerrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case rgerrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case rgerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case rgerrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case rgerrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case rgerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case rgerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code rgerrors.ErrorCode) bool {
	switch code {
	case rgerrors.ErrCodeTimeout, rgerrors.ErrCodeUnavailable,
		rgerrors.ErrCodeRateLimitExceeded, rgerrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails returns a new map holding a then b; nil when both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
