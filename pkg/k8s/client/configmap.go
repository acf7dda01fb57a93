package client

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/rgvalidator/pkg/defaults"
)

const (
	// ConfigMapURIScheme prefixes ConfigMap references: cm://namespace/name
	ConfigMapURIScheme = "cm://"

	managedByLabel = "app.kubernetes.io/managed-by"
	managedByValue = "rgvalidator"
)

// ConfigMapRef names a ConfigMap.
type ConfigMapRef struct {
	Namespace string
	Name      string
}

func (r ConfigMapRef) String() string {
	return ConfigMapURIScheme + r.Namespace + "/" + r.Name
}

// IsConfigMapURI reports whether uri uses the cm:// scheme.
func IsConfigMapURI(uri string) bool {
	return strings.HasPrefix(uri, ConfigMapURIScheme)
}

// ParseConfigMapURI parses cm://namespace/name.
func ParseConfigMapURI(uri string) (ConfigMapRef, error) {
	if !IsConfigMapURI(uri) {
		return ConfigMapRef{}, fmt.Errorf("invalid ConfigMap URI %q: missing %s prefix", uri, ConfigMapURIScheme)
	}
	parts := strings.Split(strings.TrimPrefix(uri, ConfigMapURIScheme), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ConfigMapRef{}, fmt.Errorf("invalid ConfigMap URI %q: expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	return ConfigMapRef{Namespace: parts[0], Name: parts[1]}, nil
}

// GetConfigMapValue reads a single data key from a ConfigMap.
func GetConfigMapValue(ctx context.Context, cs kubernetes.Interface, ref ConfigMapRef, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.KubeAPITimeout)
	defer cancel()

	cm, err := cs.CoreV1().ConfigMaps(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get ConfigMap %s: %w", ref, err)
	}
	v, ok := cm.Data[key]
	if !ok {
		return "", fmt.Errorf("ConfigMap %s has no key %q", ref, key)
	}
	return v, nil
}

// ApplyConfigMapValue creates the ConfigMap or updates the given key in place.
func ApplyConfigMapValue(ctx context.Context, cs kubernetes.Interface, ref ConfigMapRef, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.KubeAPITimeout)
	defer cancel()

	cms := cs.CoreV1().ConfigMaps(ref.Namespace)

	existing, err := cms.Get(ctx, ref.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		cm := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      ref.Name,
				Namespace: ref.Namespace,
				Labels:    map[string]string{managedByLabel: managedByValue},
			},
			Data: map[string]string{key: value},
		}
		if _, err := cms.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create ConfigMap %s: %w", ref, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get ConfigMap %s: %w", ref, err)
	}

	updated := existing.DeepCopy()
	if updated.Data == nil {
		updated.Data = make(map[string]string)
	}
	updated.Data[key] = value
	if _, err := cms.Update(ctx, updated, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s: %w", ref, err)
	}
	return nil
}
