package params

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFile_SingleSecretYAML(t *testing.T) {
	content := `name: db-credentials
namespace: payments
stringData:
  username: admin
  port: 5432
`
	tmpFile := createTempFile(t, "values-single.yaml", content)

	vf, err := ParseFile(tmpFile)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if len(vf.Secrets) != 1 {
		t.Fatalf("expected 1 secret, got %d", len(vf.Secrets))
	}

	if vf.Secrets[0].Name != "db-credentials" {
		t.Errorf("expected secret name 'db-credentials', got '%s'", vf.Secrets[0].Name)
	}

	if vf.Secrets[0].Namespace != "payments" {
		t.Errorf("expected namespace 'payments', got '%s'", vf.Secrets[0].Namespace)
	}

	if vf.Secrets[0].StringData["port"] != 5432 {
		t.Errorf("expected port 5432, got '%v'", vf.Secrets[0].StringData["port"])
	}
}

func TestParseFile_MultiSecretYAML(t *testing.T) {
	content := `secrets:
  - name: db-credentials
    stringData:
      username: admin

  - name: api-token
    scope: cluster-wide
    stringData:
      token: abc
`
	tmpFile := createTempFile(t, "values-multi.yaml", content)

	vf, err := ParseFile(tmpFile)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if len(vf.Secrets) != 2 {
		t.Fatalf("expected 2 secrets, got %d", len(vf.Secrets))
	}

	if vf.Secrets[1].Name != "api-token" {
		t.Errorf("expected second secret 'api-token', got '%s'", vf.Secrets[1].Name)
	}

	if vf.Secrets[1].Scope != "cluster-wide" {
		t.Errorf("expected scope 'cluster-wide', got '%s'", vf.Secrets[1].Scope)
	}
}

func TestParseFile_JSON(t *testing.T) {
	content := `{
  "name": "db-credentials",
  "stringData": {
    "username": "admin"
  }
}`
	tmpFile := createTempFile(t, "values.json", content)

	vf, err := ParseFile(tmpFile)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if len(vf.Secrets) != 1 {
		t.Fatalf("expected 1 secret, got %d", len(vf.Secrets))
	}

	if vf.Secrets[0].StringData["username"] != "admin" {
		t.Errorf("expected username 'admin', got '%v'", vf.Secrets[0].StringData["username"])
	}
}

func TestParseFile_UnknownExtension(t *testing.T) {
	// YAML content with unknown extension - should try both parsers
	content := `stringData:
  username: admin
`
	tmpFile := createTempFile(t, "values.txt", content)

	vf, err := ParseFile(tmpFile)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if len(vf.Secrets) != 1 {
		t.Errorf("expected 1 secret, got %d", len(vf.Secrets))
	}
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := ParseFile("/nonexistent/path/values.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name    string
		params  []string
		want    map[string]any
		wantErr bool
	}{
		{
			name:   "single literal",
			params: []string{"username=admin"},
			want:   map[string]any{"username": "admin"},
		},
		{
			name:   "multiple literals",
			params: []string{"username=admin", "port=5432"},
			want:   map[string]any{"username": "admin", "port": "5432"},
		},
		{
			name:   "value with equals sign",
			params: []string{"dsn=postgres://u:p@h/db?sslmode=disable"},
			want:   map[string]any{"dsn": "postgres://u:p@h/db?sslmode=disable"},
		},
		{
			name:   "empty value",
			params: []string{"password="},
			want:   map[string]any{"password": ""},
		},
		{
			name:    "invalid format",
			params:  []string{"password"},
			wantErr: true,
		},
		{
			name:    "empty key",
			params:  []string{"=value"},
			wantErr: true,
		},
		{
			name:   "later literal wins",
			params: []string{"password=a", "password=b"},
			want:   map[string]any{"password": "b"},
		},
		{
			name:   "empty slice",
			params: []string{},
			want:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLiterals(tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLiterals() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				for k, v := range tt.want {
					if got[k] != v {
						t.Errorf("ParseLiterals()[%s] = %v, want %v", k, got[k], v)
					}
				}
			}
		})
	}
}

func TestMerge(t *testing.T) {
	fileParams := map[string]any{
		"username": "file-user",
		"port":     5432,
	}

	inlineParams := map[string]any{
		"port":     "6432",
		"password": "s3cret",
	}

	result := Merge(fileParams, inlineParams)

	// Check that inline values override file values
	if result["port"] != "6432" {
		t.Errorf("expected port=6432, got %v", result["port"])
	}

	// Check that file-only values are preserved
	if result["username"] != "file-user" {
		t.Errorf("expected username='file-user', got %v", result["username"])
	}

	// Check that inline-only values are added
	if result["password"] != "s3cret" {
		t.Errorf("expected password='s3cret', got %v", result["password"])
	}
}

func TestParseFile_Layouts(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    int
		wantErr error
	}{
		{
			name:    "empty file",
			file:    "empty.yaml",
			content: "",
			want:    0,
		},
		{
			name:    "metadata only",
			file:    "meta.yaml",
			content: "name: db\n",
			want:    1,
		},
		{
			name:    "top-level secret and list",
			file:    "mixed.yaml",
			content: "name: db\nsecrets:\n  - name: api\n",
			wantErr: ErrMixedLayout,
		},
		{
			name:    "top-level secret and list in JSON",
			file:    "mixed.json",
			content: `{"name": "db", "secrets": [{"name": "api"}]}`,
			wantErr: ErrMixedLayout,
		},
		{
			name:    "list in JSON",
			file:    "multi.json",
			content: `{"secrets": [{"name": "a"}, {"name": "b", "stringData": {"k": "v"}}]}`,
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vf, err := ParseFile(createTempFile(t, tt.file, tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFile() error = %v", err)
			}
			if len(vf.Secrets) != tt.want {
				t.Errorf("expected %d secrets, got %d", tt.want, len(vf.Secrets))
			}
		})
	}
}

func TestParseFile_InvalidJSON(t *testing.T) {
	if _, err := ParseFile(createTempFile(t, "broken.json", `{"name": `)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestStrings(t *testing.T) {
	got, err := Strings(map[string]any{"port": 5432, "enabled": true, "empty": nil, "name": "x"})
	if err != nil {
		t.Fatalf("Strings() error = %v", err)
	}

	want := map[string]string{"port": "5432", "enabled": "true", "empty": "", "name": "x"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Strings()[%s] = %q, want %q", k, got[k], v)
		}
	}

	if _, err := Strings(map[string]any{"nested": map[string]any{"a": 1}}); err == nil {
		t.Error("expected error for nested value")
	}
}

func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, name)
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	return tmpFile
}
