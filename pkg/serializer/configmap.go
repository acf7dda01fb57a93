package serializer

import (
	"context"

	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/rgvalidator/pkg/k8s/client"
)

// ConfigMapWriter stores the serialized value under "result.<ext>" in a ConfigMap.
type ConfigMapWriter struct {
	ref    client.ConfigMapRef
	format Format
	cs     kubernetes.Interface
}

// NewConfigMapWriter returns a writer for ref. The Kubernetes client is
// resolved on first use.
func NewConfigMapWriter(ref client.ConfigMapRef, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		format = FormatJSON
	}
	return &ConfigMapWriter{ref: ref, format: format}
}

// DataKey is the ConfigMap key the value is written to.
func (w *ConfigMapWriter) DataKey() string {
	return "result." + w.format.extension()
}

// Serialize encodes v and applies it to the ConfigMap.
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	b, err := encode(w.format, v)
	if err != nil {
		return err
	}
	cs := w.cs
	if cs == nil {
		if cs, err = client.GetKubeClient(); err != nil {
			return err
		}
	}
	return client.ApplyConfigMapValue(ctx, cs, w.ref, w.DataKey(), string(b))
}
