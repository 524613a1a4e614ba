package collector

import (
	"errors"
	"os"
	"strings"
)

var (
	ErrNameRequired      = errors.New("Please specify name")
	ErrNamespaceRequired = errors.New("Please specify namespace")
	ErrFileNotFound      = errors.New("File not found")
)

// ValidateName accepts any non-empty name.
func ValidateName(s string) error {
	if s == "" {
		return ErrNameRequired
	}
	return nil
}

// ValidateNamespace accepts any non-empty namespace.
func ValidateNamespace(s string) error {
	if s == "" {
		return ErrNamespaceRequired
	}
	return nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func validatorFor(step Step, exists func(string) bool) func(string) error {
	switch step {
	case StepName:
		return ValidateName
	case StepNamespace:
		return ValidateNamespace
	case StepCertificate:
		return func(s string) error {
			if !exists(s) {
				return ErrFileNotFound
			}
			return nil
		}
	}
	return func(string) error { return nil }
}
