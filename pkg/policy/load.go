/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/rgvalidator/pkg/defaults"
	"github.com/NVIDIA/rgvalidator/pkg/k8s/client"
)

// ConfigMapKey is the ConfigMap data key holding the policy document.
const ConfigMapKey = "policy.yaml"

// Document is the on-disk form of a policy.
//
//	apiVersion: rgvalidator.nvidia.com/v1alpha1
//	kind: ScoringPolicy
//	metadata:
//	  name: default
//	spec:
//	  pointsPerCheck: 10
//	  osTypes: [Linux, Windows]
//	  vmSizes: [Standard_B2s, Standard_D2s_v3]
type Document struct {
	APIVersion string   `json:"apiVersion" yaml:"apiVersion"`
	Kind       string   `json:"kind" yaml:"kind"`
	Metadata   Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Spec       Policy   `json:"spec" yaml:"spec"`
}

// Metadata names a policy document.
type Metadata struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// NewDocument wraps p in a document.
func NewDocument(name string, p *Policy) *Document {
	return &Document{
		APIVersion: APIVersion,
		Kind:       Kind,
		Metadata:   Metadata{Name: name},
		Spec:       *p,
	}
}

// Loader reads policies from files, HTTP(S) URLs and ConfigMaps.
type Loader struct {
	httpClient *http.Client
	kube       kubernetes.Interface
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for http(s) URIs.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		l.httpClient = c
	}
}

// WithKubeClient sets the client used for cm:// URIs.
func WithKubeClient(cs kubernetes.Interface) LoaderOption {
	return func(l *Loader) {
		l.kube = cs
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: defaults.HTTPClientTimeout},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves uri into a policy. An empty uri yields the default policy.
func Load(ctx context.Context, uri string) (*Policy, error) {
	return NewLoader().Load(ctx, uri)
}

// Load resolves uri into a policy. An empty uri yields the default policy.
func (l *Loader) Load(ctx context.Context, uri string) (*Policy, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Default(), nil
	}

	data, err := l.read(ctx, uri)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid policy %q: %w", uri, err)
	}
	return p, nil
}

func (l *Loader) read(ctx context.Context, uri string) ([]byte, error) {
	switch {
	case client.IsConfigMapURI(uri):
		ref, err := client.ParseConfigMapURI(uri)
		if err != nil {
			return nil, err
		}
		cs := l.kube
		if cs == nil {
			if cs, err = client.GetKubeClient(); err != nil {
				return nil, err
			}
		}
		v, err := client.GetConfigMapValue(ctx, cs, ref, ConfigMapKey)
		if err != nil {
			return nil, err
		}
		return []byte(v), nil

	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request for %q: %w", uri, err)
		}
		resp, err := l.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch policy %q: %w", uri, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch policy %q: unexpected status %s", uri, resp.Status)
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, defaults.MaxDocumentSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read policy %q: %w", uri, err)
		}
		return b, nil

	default:
		b, err := os.ReadFile(strings.TrimPrefix(uri, "file://"))
		if err != nil {
			return nil, fmt.Errorf("failed to read policy file: %w", err)
		}
		return b, nil
	}
}

// Parse decodes and validates a policy document. YAML or JSON.
func Parse(data []byte) (*Policy, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode policy document: %w", err)
	}
	if doc.Kind != Kind {
		return nil, fmt.Errorf("unexpected kind %q, want %q", doc.Kind, Kind)
	}
	if doc.APIVersion != "" && doc.APIVersion != APIVersion {
		return nil, fmt.Errorf("unsupported apiVersion %q, want %q", doc.APIVersion, APIVersion)
	}
	p := doc.Spec
	if p.PointsPerCheck == 0 {
		p.PointsPerCheck = DefaultPointsPerCheck
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
