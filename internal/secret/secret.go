// Package secret builds the Kubernetes Secret manifests that sealer create
// hands to kubeseal.
package secret

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/stuttgart-things/sealer/internal/defaults"
	"github.com/stuttgart-things/sealer/internal/sealing"
)

// Data holds the data needed to generate a Kubernetes Secret manifest.
type Data struct {
	Name      string
	Namespace string
	// Scope adds the matching sealed-secrets annotation when it widens the
	// binding beyond strict.
	Scope      sealing.Scope
	Type       corev1.SecretType
	StringData map[string]string
}

// New builds the Secret object for data.
func New(data Data) (*corev1.Secret, error) {
	if data.Name == "" {
		return nil, fmt.Errorf("secret name is required")
	}
	if len(data.StringData) == 0 {
		return nil, fmt.Errorf("secret %s has no values", data.Name)
	}

	secretType := data.Type
	if secretType == "" {
		secretType = corev1.SecretTypeOpaque
	}

	s := &corev1.Secret{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Secret",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      data.Name,
			Namespace: data.Namespace,
		},
		Type:       secretType,
		StringData: data.StringData,
	}

	switch data.Scope {
	case sealing.ScopeClusterWide:
		s.Annotations = map[string]string{defaults.ClusterWideAnnotation: "true"}
	case sealing.ScopeNamespaceWide:
		s.Annotations = map[string]string{defaults.NamespaceWideAnnotation: "true"}
	}

	return s, nil
}

// GenerateYAML produces a Kubernetes Secret manifest in YAML format.
func GenerateYAML(data Data) ([]byte, error) {
	s, err := New(data)
	if err != nil {
		return nil, err
	}

	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshalling secret YAML: %w", err)
	}

	return out, nil
}
