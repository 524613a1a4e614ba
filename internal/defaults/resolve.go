// Package defaults derives best-effort sealing parameters from the document
// being sealed.
package defaults

import (
	"path"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/stuttgart-things/sealer/internal/sealing"
)

const (
	// TemplateLeaf is the parameters file of the jsonnet application layout
	// apps/<team>/<app>/<environment>/params.libsonnet.
	TemplateLeaf = "params.libsonnet"

	appsMarker         = "apps"
	certificateDir     = "sealed-secrets"
	prodEnvironment    = "prod"
	prodCertificate    = "prod.pem"
	nonProdCertificate = "nonprod.pem"

	ClusterWideAnnotation   = "sealedsecrets.bitnami.com/cluster-wide"
	NamespaceWideAnnotation = "sealedsecrets.bitnami.com/namespace-wide"
)

// Document is the read-only view of a document the resolver needs.
type Document interface {
	Path() string
	Text() string
	IsUntitled() bool
}

// Resolve returns the sealing parameters that can be derived from doc,
// starting from prior when it is not nil. It never fails: anything that
// cannot be derived keeps its seeded value.
func Resolve(doc Document, prior *sealing.Parameters) sealing.Parameters {
	var result sealing.Parameters
	if prior != nil {
		result = *prior
	}

	if isTemplateDocument(doc) {
		return fromTemplatePath(doc.Path(), result)
	}
	return fromManifest(doc.Text(), result)
}

func slashPath(p string) string {
	return path.Clean(strings.ReplaceAll(p, `\`, "/"))
}

func isTemplateDocument(doc Document) bool {
	if doc.IsUntitled() || doc.Path() == "" {
		return false
	}
	return path.Base(slashPath(doc.Path())) == TemplateLeaf
}

// fromTemplatePath reads .../apps/<team>/<app>/<env>/params.libsonnet.
func fromTemplatePath(p string, result sealing.Parameters) sealing.Parameters {
	parts := strings.Split(slashPath(p), "/")
	n := len(parts)

	if n < 5 || parts[n-5] != appsMarker {
		if !result.Scope.IsSet() {
			result.Scope = sealing.ScopeStrict
		}
		return result
	}

	env, app, team := parts[n-2], parts[n-3], parts[n-4]

	rootParts := parts[:n-5]
	root := strings.Join(rootParts, "/")
	if len(rootParts) == 1 && rootParts[0] == "" {
		root = "/"
	}

	cert := nonProdCertificate
	if env == prodEnvironment {
		cert = prodCertificate
	}

	result.Name = sealing.Some(app)
	result.Namespace = sealing.Some(team + "-" + app)
	result.CertificatePath = sealing.Some(path.Join(root, certificateDir, cert))
	result.Scope = sealing.ScopeStrict
	return result
}

// parseResult is either a decoded YAML tree or the reason decoding failed.
type parseResult struct {
	tree map[string]any
	err  error
}

func parseManifest(text string) parseResult {
	var tree map[string]any
	if err := yaml.Unmarshal([]byte(text), &tree); err != nil {
		return parseResult{err: err}
	}
	return parseResult{tree: tree}
}

// lookupString returns the string at fields, treating missing, null and
// non-string values alike as absent.
func (r parseResult) lookupString(fields ...string) (string, bool) {
	if r.err != nil || r.tree == nil {
		return "", false
	}
	v, found, err := unstructured.NestedString(r.tree, fields...)
	if err != nil || !found {
		return "", false
	}
	return v, true
}

func (r parseResult) has(fields ...string) bool {
	if r.err != nil || r.tree == nil {
		return false
	}
	_, found, err := unstructured.NestedFieldNoCopy(r.tree, fields...)
	return err == nil && found
}

func fromManifest(text string, result sealing.Parameters) sealing.Parameters {
	doc := parseManifest(text)
	if doc.err != nil {
		return result
	}

	if name, ok := doc.lookupString("metadata", "name"); ok && name != "" {
		result.Name = sealing.Some(name)
	}
	if namespace, ok := doc.lookupString("metadata", "namespace"); ok && namespace != "" {
		result.Namespace = sealing.Some(namespace)
	}

	clusterWide, _ := doc.lookupString("metadata", "annotations", ClusterWideAnnotation)
	namespaceWide, _ := doc.lookupString("metadata", "annotations", NamespaceWideAnnotation)

	switch {
	case clusterWide == "true":
		result.Scope = sealing.ScopeClusterWide
	case namespaceWide == "true":
		result.Scope = sealing.ScopeNamespaceWide
	case doc.has("metadata"):
		result.Scope = sealing.ScopeStrict
	}

	return result
}
