package validator

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/NVIDIA/rgvalidator/pkg/defaults"
)

const (
	paramResourceGroupName = "resourceGroupName"
	paramVMName            = "vmName"
)

// ParseRequest reads the parameters from the query string and the JSON body.
// For each parameter a non-empty query value wins over the body. A body that
// is not a JSON object, and body values that are not strings, are ignored.
func ParseRequest(r *http.Request) Request {
	q := r.URL.Query()
	body := readBody(r)

	return Request{
		ResourceGroupName: firstNonEmpty(q.Get(paramResourceGroupName), body[paramResourceGroupName]),
		VMName:            firstNonEmpty(q.Get(paramVMName), body[paramVMName]),
	}
}

func readBody(r *http.Request) map[string]string {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	b, err := io.ReadAll(io.LimitReader(r.Body, defaults.MaxDocumentSize))
	if err != nil || len(b) == 0 {
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		slog.Debug("ignoring request body that is not a JSON object", "error", err)
		return nil
	}

	out := make(map[string]string, 2)
	for _, k := range []string{paramResourceGroupName, paramVMName} {
		if s, ok := raw[k].(string); ok {
			out[k] = s
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
