package kustomize

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	APIVersion = "kustomize.config.k8s.io/v1beta1"
	Kind       = "Kustomization"
)

// FileNames are the names kustomize accepts for a kustomization file, in
// lookup order.
var FileNames = []string{"kustomization.yaml", "kustomization.yml", "Kustomization"}

// Kustomization is a kustomization file. It is kept as a YAML document so
// that fields other than resources survive a load and save.
type Kustomization struct {
	doc yaml.Node
}

// New returns an empty kustomization with apiVersion and kind set.
func New() *Kustomization {
	k := &Kustomization{}
	k.doc = yaml.Node{
		Kind: yaml.DocumentNode,
		Content: []*yaml.Node{{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				scalar("apiVersion"), scalar(APIVersion),
				scalar("kind"), scalar(Kind),
				scalar("resources"), {Kind: yaml.SequenceNode},
			},
		}},
	}
	return k
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// Load reads and parses a kustomization file
func Load(path string) (*Kustomization, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading kustomization file: %w", err)
	}

	k := &Kustomization{}
	if err := yaml.Unmarshal(data, &k.doc); err != nil {
		return nil, fmt.Errorf("parsing kustomization file: %w", err)
	}
	if k.root() == nil {
		return nil, fmt.Errorf("parsing kustomization file: %s is not a mapping", path)
	}

	return k, nil
}

// Save writes a Kustomization to a YAML file
func Save(path string, k *Kustomization) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&k.doc); err != nil {
		return fmt.Errorf("marshalling kustomization: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshalling kustomization: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing kustomization file: %w", err)
	}

	return nil
}

func (k *Kustomization) root() *yaml.Node {
	if k.doc.Kind != yaml.DocumentNode || len(k.doc.Content) == 0 {
		return nil
	}
	if root := k.doc.Content[0]; root.Kind == yaml.MappingNode {
		return root
	}
	return nil
}

func (k *Kustomization) resources(create bool) *yaml.Node {
	root := k.root()
	if root == nil {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "resources" {
			seq := root.Content[i+1]
			if seq.Kind != yaml.SequenceNode {
				// "resources:" with no value
				*seq = yaml.Node{Kind: yaml.SequenceNode}
			}
			return seq
		}
	}
	if !create {
		return nil
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	root.Content = append(root.Content, scalar("resources"), seq)
	return seq
}

// Resources returns the resource entries.
func (k *Kustomization) Resources() []string {
	seq := k.resources(false)
	if seq == nil {
		return nil
	}
	out := make([]string, 0, len(seq.Content))
	for _, n := range seq.Content {
		out = append(out, n.Value)
	}
	return out
}

// AddResource adds a resource entry if it doesn't already exist and reports
// whether it was added.
func (k *Kustomization) AddResource(resource string) bool {
	for _, r := range k.Resources() {
		if r == resource {
			return false
		}
	}
	seq := k.resources(true)
	if seq == nil {
		return false
	}
	seq.Style = 0
	seq.Content = append(seq.Content, scalar(resource))
	return true
}

// Find returns the kustomization file in dir, or "" when there is none.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
	}
	return "", nil
}

// Register lists file, relative to dir, as a resource of the kustomization in
// dir, creating kustomization.yaml when dir has none. It returns the
// kustomization path and whether the file was changed.
func Register(dir, file string) (string, bool, error) {
	rel, err := filepath.Rel(dir, file)
	if err != nil {
		return "", false, fmt.Errorf("resolving resource path: %w", err)
	}
	rel = filepath.ToSlash(rel)

	path, err := Find(dir)
	if err != nil {
		return "", false, err
	}

	var k *Kustomization
	if path == "" {
		path = filepath.Join(dir, FileNames[0])
		k = New()
	} else if k, err = Load(path); err != nil {
		return "", false, err
	}

	if !k.AddResource(rel) {
		return path, false, nil
	}
	if err := Save(path, k); err != nil {
		return "", false, err
	}
	return path, true, nil
}
