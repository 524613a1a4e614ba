package cmd

import (
	"github.com/stuttgart-things/sealer/internal/gitops"
)

// CreateConfig holds configuration for the create command
type CreateConfig struct {
	// Secret metadata
	SecretName      string
	SecretNamespace string
	Scope           string
	Type            string
	CertificatePath string

	// Parameter input
	ParamsFile  string
	LiteralsRaw []string

	Output    OutputConfig
	Kustomize bool

	GitConfig *gitops.Config
}
