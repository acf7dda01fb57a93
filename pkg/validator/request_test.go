package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		want   Request
	}{
		{"empty", "/", "", Request{}},
		{"query", "/?resourceGroupName=rg&vmName=vm", "", Request{ResourceGroupName: "rg", VMName: "vm"}},
		{"body", "/", `{"resourceGroupName":"rg","vmName":"vm"}`, Request{ResourceGroupName: "rg", VMName: "vm"}},
		{"query wins", "/?resourceGroupName=q", `{"resourceGroupName":"b","vmName":"vm"}`, Request{ResourceGroupName: "q", VMName: "vm"}},
		{"empty query falls through", "/?resourceGroupName=&vmName=", `{"resourceGroupName":"b","vmName":"v"}`, Request{ResourceGroupName: "b", VMName: "v"}},
		{"non-string values ignored", "/", `{"resourceGroupName":{"name":"rg"},"vmName":true}`, Request{}},
		{"null body", "/?vmName=vm", `null`, Request{VMName: "vm"}},
		{"malformed body", "/?resourceGroupName=rg", `{"resourceGroupName":`, Request{ResourceGroupName: "rg"}},
		{"unknown keys ignored", "/", `{"resourceGroup":"rg","vm":"vm"}`, Request{}},
		{"names are not trimmed", "/?resourceGroupName=%20rg%20", "", Request{ResourceGroupName: " rg "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r *http.Request
			if tt.body == "" {
				r = httptest.NewRequest(http.MethodPost, tt.target, nil)
			} else {
				r = httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			}
			assert.Equal(t, tt.want, ParseRequest(r))
		})
	}
}
