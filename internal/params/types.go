package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrMixedLayout is returned for a values file that holds a top-level secret
// and a secrets list at the same time.
var ErrMixedLayout = errors.New("values file mixes a top-level secret with a secrets list")

// SecretValues holds the values of a single secret
type SecretValues struct {
	Name       string         `yaml:"name" json:"name"`
	Namespace  string         `yaml:"namespace" json:"namespace"`
	Scope      string         `yaml:"scope" json:"scope"`
	StringData map[string]any `yaml:"stringData" json:"stringData"`
}

func (v SecretValues) isZero() bool {
	return v.Name == "" && v.Namespace == "" && v.Scope == "" && len(v.StringData) == 0
}

// ValuesFile is the content of a values file. On disk it is either one
// secret at the top level or a list of secrets under "secrets"; both decode
// into Secrets.
type ValuesFile struct {
	Secrets []SecretValues
}

// valuesLayout is what both layouts look like before they are told apart.
type valuesLayout struct {
	SecretValues `yaml:",inline"`
	Secrets      []SecretValues `yaml:"secrets" json:"secrets"`
}

func (l valuesLayout) secrets() ([]SecretValues, error) {
	switch {
	case len(l.Secrets) > 0 && !l.SecretValues.isZero():
		return nil, ErrMixedLayout
	case len(l.Secrets) > 0:
		return l.Secrets, nil
	case !l.SecretValues.isZero():
		return []SecretValues{l.SecretValues}, nil
	}
	return nil, nil
}

func (vf *ValuesFile) UnmarshalYAML(node *yaml.Node) error {
	var layout valuesLayout
	if err := node.Decode(&layout); err != nil {
		return err
	}
	secrets, err := layout.secrets()
	if err != nil {
		return err
	}
	vf.Secrets = secrets
	return nil
}

func (vf *ValuesFile) UnmarshalJSON(data []byte) error {
	var layout valuesLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return err
	}
	secrets, err := layout.secrets()
	if err != nil {
		return err
	}
	vf.Secrets = secrets
	return nil
}

// Strings renders every value as a string, the form Secret stringData needs.
// Nested maps and lists are rejected.
func Strings(values map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(values))

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := values[k].(type) {
		case nil:
			out[k] = ""
		case map[string]any, []any:
			return nil, fmt.Errorf("value of %q must be a scalar", k)
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out, nil
}
