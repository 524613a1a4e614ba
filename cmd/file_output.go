package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/stuttgart-things/sealer/internal/kustomize"
)

const defaultFilenamePattern = "{{.name}}-sealed.yaml"

// sealed output is read-only by convention; it is regenerated, not edited
const sealedFileMode = 0o444

// OutputConfig holds configuration for file output
type OutputConfig struct {
	// Output is an explicit file, or - for stdout. Empty derives the file
	// name from FilenamePattern.
	Output          string
	Directory       string
	FilenamePattern string
	DryRun          bool

	Stdout io.Writer
}

func (c OutputConfig) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// FileInfo holds information used for filename generation
type FileInfo struct {
	Name      string
	Namespace string
	// Source is the base name of the sealed document without extension
	Source string
}

// GenerateFilename creates a filename from pattern and file info
func GenerateFilename(pattern string, info FileInfo) (string, error) {
	tmpl, err := template.New("filename").Option("missingkey=error").Parse(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid filename pattern: %w", err)
	}

	data := map[string]string{
		"name":      info.Name,
		"namespace": info.Namespace,
		"source":    info.Source,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing filename template: %w", err)
	}

	name := buf.String()
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("filename pattern %q produced an empty name", pattern)
	}
	return name, nil
}

// Target returns the file a sealed document is written to, or "" when it
// goes to stdout.
func (c OutputConfig) Target(info FileInfo) (string, error) {
	switch c.Output {
	case "-":
		return "", nil
	case "":
	default:
		return c.Output, nil
	}

	pattern := c.FilenamePattern
	if pattern == "" {
		pattern = defaultFilenamePattern
	}
	filename, err := GenerateFilename(pattern, info)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.Directory, filename), nil
}

// WriteSealed writes content according to config and returns the path it
// was written to, or "" when nothing was written to disk.
func WriteSealed(content string, info FileInfo, config OutputConfig) (string, error) {
	path, err := config.Target(info)
	if err != nil {
		return "", err
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if path == "" {
		_, err := io.WriteString(config.stdout(), content)
		return "", err
	}

	if config.DryRun {
		fmt.Fprintln(config.stdout(), "\n=== DRY RUN - No files written ===")
		fmt.Fprintf(config.stdout(), "Would write: %s\n", path)
		fmt.Fprintln(config.stdout(), yamlStyle.Render(strings.TrimSpace(content)))
		return "", nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}

	// replace read-only output from an earlier run
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = os.Chmod(path, 0644)
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("replacing %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(content), sealedFileMode); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	return path, nil
}

// registerKustomize lists every written result in the kustomization of its
// directory and records changed kustomization files in results.
func registerKustomize(results *SealResults) error {
	for _, r := range results.Results {
		if r.OutputPath == "" {
			continue
		}

		dir := filepath.Dir(r.OutputPath)
		path, changed, err := kustomize.Register(dir, r.OutputPath)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}

		fmt.Fprintf(os.Stderr, "Registered %s in %s\n", filepath.Base(r.OutputPath), path)
		if !slices.Contains(results.Extra, path) {
			results.Extra = append(results.Extra, path)
		}
	}
	return nil
}
