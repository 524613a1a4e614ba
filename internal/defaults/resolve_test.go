package defaults

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuttgart-things/sealer/internal/editor"
	"github.com/stuttgart-things/sealer/internal/sealing"
)

type testDoc struct {
	path     string
	text     string
	untitled bool
}

func (d testDoc) Path() string { return d.path }
func (d testDoc) Text() string { return d.text }
func (d testDoc) IsUntitled() bool { return d.untitled }

const secretManifest = `apiVersion: v1
kind: Secret
metadata:
  name: exampleSecret
  namespace: exampleNamespace
data:
  username: dXNlcg==
`

func TestResolve_Manifest(t *testing.T) {
	got := Resolve(testDoc{path: "/work/secret.yaml", text: secretManifest}, nil)

	assert.Equal(t, sealing.Some("exampleSecret"), got.Name)
	assert.Equal(t, sealing.Some("exampleNamespace"), got.Namespace)
	assert.Equal(t, sealing.ScopeStrict, got.Scope)
	assert.False(t, got.CertificatePath.Set)
}

func TestResolve_Annotations(t *testing.T) {
	tests := []struct {
		name        string
		annotations string
		want        sealing.Scope
	}{
		{
			name: "no annotations",
			want: sealing.ScopeStrict,
		},
		{
			name:        "namespace-wide",
			annotations: "    sealedsecrets.bitnami.com/namespace-wide: \"true\"\n",
			want:        sealing.ScopeNamespaceWide,
		},
		{
			name:        "cluster-wide",
			annotations: "    sealedsecrets.bitnami.com/cluster-wide: \"true\"\n",
			want:        sealing.ScopeClusterWide,
		},
		{
			name: "cluster-wide wins over namespace-wide",
			annotations: "    sealedsecrets.bitnami.com/namespace-wide: \"true\"\n" +
				"    sealedsecrets.bitnami.com/cluster-wide: \"true\"\n",
			want: sealing.ScopeClusterWide,
		},
		{
			name:        "false markers fall back to strict",
			annotations: "    sealedsecrets.bitnami.com/cluster-wide: \"false\"\n",
			want:        sealing.ScopeStrict,
		},
		{
			name:        "unquoted boolean is not the string true",
			annotations: "    sealedsecrets.bitnami.com/cluster-wide: true\n",
			want:        sealing.ScopeStrict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "kind: Secret\nmetadata:\n  name: s\n"
			if tt.annotations != "" {
				text += "  annotations:\n" + tt.annotations
			}
			got := Resolve(testDoc{text: text, untitled: true}, nil)
			assert.Equal(t, tt.want, got.Scope)
		})
	}
}

func TestResolve_NoMetadataKeepsSeed(t *testing.T) {
	prior := &sealing.Parameters{
		Name:            sealing.Some("prior-name"),
		Namespace:       sealing.Some("prior-ns"),
		CertificatePath: sealing.Some("/certs/prior.pem"),
		Scope:           sealing.ScopeNamespaceWide,
	}

	for _, text := range []string{"", "kind: Secret\n", "just some text"} {
		got := Resolve(testDoc{text: text, untitled: true}, prior)
		assert.Equal(t, *prior, got, "text %q", text)
	}

	got := Resolve(testDoc{text: "kind: Secret\n", untitled: true}, nil)
	assert.Equal(t, sealing.Parameters{}, got)
}

func TestResolve_SeedOverriddenByDocument(t *testing.T) {
	prior := &sealing.Parameters{
		Name:            sealing.Some("prior-name"),
		CertificatePath: sealing.Some("/certs/prior.pem"),
		Scope:           sealing.ScopeClusterWide,
	}

	got := Resolve(testDoc{text: "metadata:\n  name: fresh\n", untitled: true}, prior)
	assert.Equal(t, "fresh", got.Name.Value)
	assert.False(t, got.Namespace.Set)
	assert.Equal(t, "/certs/prior.pem", got.CertificatePath.Value)
	assert.Equal(t, sealing.ScopeStrict, got.Scope)

	// the seed is not modified
	assert.Equal(t, "prior-name", prior.Name.Value)
	assert.Equal(t, sealing.ScopeClusterWide, prior.Scope)
}

func TestResolve_InvalidYAML(t *testing.T) {
	invalid := "data:\n    username\n    password: c2VjcmV0\n"
	prior := &sealing.Parameters{Name: sealing.Some("kept")}

	assert.NotPanics(t, func() {
		got := Resolve(testDoc{path: "/work/broken.yaml", text: invalid}, prior)
		assert.Equal(t, *prior, got)
	})

	got := Resolve(testDoc{path: "/work/broken.yaml", text: invalid}, nil)
	assert.Equal(t, sealing.Parameters{}, got)
}

func TestResolve_TemplatePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantName  string
		wantNS    string
		wantCert  string
		wantUnset bool
	}{
		{
			name:     "windows path non-prod",
			path:     `X:\Develop\kube-applications-state\apps\solutions\reportgenerator\uat\params.libsonnet`,
			wantName: "reportgenerator",
			wantNS:   "solutions-reportgenerator",
			wantCert: "X:/Develop/kube-applications-state/sealed-secrets/nonprod.pem",
		},
		{
			name:     "unix path prod",
			path:     "/src/state/apps/payments/api/prod/params.libsonnet",
			wantName: "api",
			wantNS:   "payments-api",
			wantCert: "/src/state/sealed-secrets/prod.pem",
		},
		{
			name:     "apps at filesystem root",
			path:     "/apps/payments/api/dev/params.libsonnet",
			wantName: "api",
			wantNS:   "payments-api",
			wantCert: "/sealed-secrets/nonprod.pem",
		},
		{
			name:      "non-standard path",
			path:      `X:\Source\params.libsonnet`,
			wantUnset: true,
		},
		{
			name:      "marker at the wrong depth",
			path:      "/src/apps/payments/api/params.libsonnet",
			wantUnset: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(testDoc{path: tt.path, text: "{ image: 'x' }"}, nil)

			assert.Equal(t, sealing.ScopeStrict, got.Scope)
			if tt.wantUnset {
				assert.False(t, got.Name.Set)
				assert.False(t, got.Namespace.Set)
				assert.False(t, got.CertificatePath.Set)
				return
			}
			assert.Equal(t, tt.wantName, got.Name.Value)
			assert.Equal(t, tt.wantNS, got.Namespace.Value)
			assert.Equal(t, tt.wantCert, got.CertificatePath.Value)
		})
	}
}

func TestResolve_TemplatePathKeepsSeededScope(t *testing.T) {
	prior := &sealing.Parameters{Scope: sealing.ScopeClusterWide}
	got := Resolve(testDoc{path: "/tmp/params.libsonnet"}, prior)
	assert.Equal(t, sealing.ScopeClusterWide, got.Scope)
}

func TestResolve_UntitledTemplateIsReadAsYAML(t *testing.T) {
	got := Resolve(testDoc{
		path:     "/src/state/apps/payments/api/prod/params.libsonnet",
		text:     secretManifest,
		untitled: true,
	}, nil)
	assert.Equal(t, "exampleSecret", got.Name.Value)
	assert.Equal(t, "exampleNamespace", got.Namespace.Value)
}

func TestResolve_Idempotent(t *testing.T) {
	prior := &sealing.Parameters{CertificatePath: sealing.Some("/certs/c.pem")}
	docs := []testDoc{
		{path: "/work/secret.yaml", text: secretManifest},
		{path: "/src/state/apps/payments/api/prod/params.libsonnet"},
		{text: strings.Repeat("x: [", 3), untitled: true},
	}

	for _, d := range docs {
		first := Resolve(d, prior)
		second := Resolve(d, prior)
		assert.Equal(t, first, second)
	}
}

func TestResolve_TemplateOpenedFromEnvironmentDir(t *testing.T) {
	root := t.TempDir()
	envDir := filepath.Join(root, "apps", "payments", "api", "prod")
	require.NoError(t, os.MkdirAll(envDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, TemplateLeaf), []byte("{ image: 'x' }\n"), 0o644))
	t.Chdir(envDir)

	doc, err := editor.Open(TemplateLeaf)
	require.NoError(t, err)

	got := Resolve(doc, nil)
	assert.Equal(t, sealing.Some("api"), got.Name)
	assert.Equal(t, sealing.Some("payments-api"), got.Namespace)
	assert.Equal(t, filepath.ToSlash(filepath.Join(root, "sealed-secrets", "prod.pem")), got.CertificatePath.Value)
}
