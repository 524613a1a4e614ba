package cmd

import (
	"github.com/stuttgart-things/sealer/internal/gitops"
	"github.com/stuttgart-things/sealer/internal/sealing"
)

// FileConfig holds configuration for the file command
type FileConfig struct {
	// Source is a file path, or - for standard input
	Source string
	// SaveAs is where standard input is saved before sealing
	SaveAs string

	Overrides sealing.Parameters

	Output    OutputConfig
	Kustomize bool

	GitConfig *gitops.Config
}

// SealResult holds the result of sealing one document
type SealResult struct {
	Name       string
	Namespace  string
	Scope      sealing.Scope
	OutputPath string
	Content    string
}

// SealResults is a collection of seal results
type SealResults struct {
	Results []SealResult
	// Extra are further files written alongside the results, such as an
	// updated kustomization.
	Extra     []string
	GitCommit string
}

// WrittenPaths returns the files written to disk, results first.
func (r *SealResults) WrittenPaths() []string {
	var paths []string
	for _, result := range r.Results {
		if result.OutputPath != "" {
			paths = append(paths, result.OutputPath)
		}
	}
	return append(paths, r.Extra...)
}
