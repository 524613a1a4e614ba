// Package registry finds the SealedSecrets below a directory.
package registry

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/stuttgart-things/sealer/internal/defaults"
	"github.com/stuttgart-things/sealer/internal/sealing"
)

// Scan walks root and returns every SealedSecret in its YAML files, sorted
// by namespace and name. Hidden directories are skipped and files that are
// not valid YAML are ignored.
func Scan(root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
		default:
			return nil
		}

		found, err := Load(path)
		if err != nil {
			return err
		}
		entries = append(entries, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Namespace != entries[j].Namespace {
			return entries[i].Namespace < entries[j].Namespace
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Load returns the SealedSecrets of a single, possibly multi-document, YAML
// file.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	dec := yaml.NewDecoder(f)
	for {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// not a manifest
			return entries, nil
		}

		if entry, ok := entryOf(obj); ok {
			entry.Path = path
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func entryOf(obj map[string]any) (Entry, bool) {
	if obj == nil {
		return Entry{}, false
	}
	u := unstructured.Unstructured{Object: obj}
	if u.GetKind() != SealedSecretKind {
		return Entry{}, false
	}

	entry := Entry{
		Name:      u.GetName(),
		Namespace: u.GetNamespace(),
		Scope:     scopeOf(u),
		Keys:      []string{},
	}

	if field, found, _ := unstructured.NestedFieldNoCopy(obj, "spec", "encryptedData"); found {
		data, _ := field.(map[string]any)
		for k := range data {
			entry.Keys = append(entry.Keys, k)
		}
		sort.Strings(entry.Keys)
	}
	return entry, true
}

// scopeOf reads the scope annotations kubeseal sets on the SealedSecret and
// its template.
func scopeOf(u unstructured.Unstructured) sealing.Scope {
	annotations := u.GetAnnotations()
	if tmpl, found, _ := unstructured.NestedStringMap(u.Object, "spec", "template", "metadata", "annotations"); found {
		if annotations == nil {
			annotations = map[string]string{}
		}
		for k, v := range tmpl {
			annotations[k] = v
		}
	}

	switch {
	case annotations[defaults.ClusterWideAnnotation] == "true":
		return sealing.ScopeClusterWide
	case annotations[defaults.NamespaceWideAnnotation] == "true":
		return sealing.ScopeNamespaceWide
	}
	return sealing.ScopeStrict
}

// FilterEntries returns entries matching the given namespace and/or scope.
// Empty values are treated as wildcards.
func FilterEntries(entries []Entry, namespace string, scope sealing.Scope) []Entry {
	var result []Entry
	for _, e := range entries {
		if namespace != "" && e.Namespace != namespace {
			continue
		}
		if scope.IsSet() && e.Scope != scope {
			continue
		}
		result = append(result, e)
	}
	return result
}
