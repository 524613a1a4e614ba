// Package config loads the sealer configuration from its YAML file and the
// environment and tells subscribers when it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "sealer"
	appDir    = "sealer"
	fileName  = "config.yaml"
)

// Config holds the recognized options.
type Config struct {
	// ExecutablePath is the kubeseal binary. It may be empty on Windows,
	// where a bundled binary next to sealer is used.
	ExecutablePath string `yaml:"executablePath" envconfig:"executable_path"`
	// UseLocalCertificate passes --cert to kubeseal instead of letting it
	// fetch the certificate from the cluster.
	UseLocalCertificate bool `yaml:"useLocalCertificate" envconfig:"use_local_certificate"`
}

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{UseLocalCertificate: true}
}

type location struct {
	Config string `envconfig:"config"`
}

// FilePath returns the configuration file in use: $SEALER_CONFIG when set,
// $XDG_CONFIG_HOME/sealer/config.yaml otherwise.
func FilePath() (string, error) {
	var loc location
	if err := envconfig.Process(envPrefix, &loc); err != nil {
		return "", fmt.Errorf("reading environment: %w", err)
	}
	if loc.Config != "" {
		return loc.Config, nil
	}

	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, appDir, fileName), nil
}

// Load reads the file at path on top of the defaults and then applies the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("reading config file: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	return cfg, nil
}
