package secret

import (
	"strings"
	"testing"

	"github.com/stuttgart-things/sealer/internal/defaults"
	"github.com/stuttgart-things/sealer/internal/sealing"
)

type doc struct{ text string }

func (d doc) Path() string { return "" }
func (d doc) Text() string { return d.text }
func (d doc) IsUntitled() bool { return true }

func TestGenerateYAML(t *testing.T) {
	data := Data{
		Name:      "my-secret",
		Namespace: "default",
		StringData: map[string]string{
			"username": "admin",
			"password": "s3cret",
		},
	}

	out, err := GenerateYAML(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	yaml := string(out)

	for _, want := range []string{
		"apiVersion: v1",
		"kind: Secret",
		"name: my-secret",
		"namespace: default",
		"type: Opaque",
		"username: admin",
		"password: s3cret",
	} {
		if !strings.Contains(yaml, want) {
			t.Errorf("expected %q in:\n%s", want, yaml)
		}
	}
}

func TestGenerateYAML_MissingName(t *testing.T) {
	_, err := GenerateYAML(Data{StringData: map[string]string{"key": "val"}})
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	if !strings.Contains(err.Error(), "name") {
		t.Errorf("error should mention name, got: %v", err)
	}
}

func TestGenerateYAML_NoValues(t *testing.T) {
	_, err := GenerateYAML(Data{Name: "empty"})
	if err == nil {
		t.Fatal("expected error for a secret without values")
	}
}

func TestGenerateYAML_ScopeRoundTripsThroughResolver(t *testing.T) {
	for _, scope := range sealing.Scopes {
		out, err := GenerateYAML(Data{
			Name:       "s",
			Namespace:  "ns",
			Scope:      scope,
			StringData: map[string]string{"k": "v"},
		})
		if err != nil {
			t.Fatalf("GenerateYAML(%s) error = %v", scope, err)
		}

		got := defaults.Resolve(doc{text: string(out)}, nil)
		if got.Scope != scope {
			t.Errorf("scope %s resolved as %s from:\n%s", scope, got.Scope, out)
		}
		if got.Name.Value != "s" || got.Namespace.Value != "ns" {
			t.Errorf("unexpected name/namespace %+v", got)
		}
	}
}
