// Package params reads the secret values that sealer create turns into
// Secrets.
package params

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile reads a YAML or JSON values file. Files with other extensions
// are read as YAML, which also accepts JSON.
func ParseFile(path string) (*ValuesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading values file: %w", err)
	}

	var vf ValuesFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &vf)
	} else {
		err = yaml.Unmarshal(data, &vf)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing values file %s: %w", path, err)
	}
	return &vf, nil
}

// ParseLiterals turns --from-literal key=value pairs into values. A later
// pair wins over an earlier one with the same key.
func ParseLiterals(literals []string) (map[string]any, error) {
	values := make(map[string]any, len(literals))
	for _, l := range literals {
		key, value, ok := strings.Cut(l, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid literal %q: expected key=value", l)
		}
		values[key] = value
	}
	return values, nil
}

// Merge returns the values of base overlaid with those of overlay.
func Merge(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	maps.Copy(merged, base)
	maps.Copy(merged, overlay)
	return merged
}
