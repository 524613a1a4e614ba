package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stuttgart-things/sealer/internal/gitops"
	"github.com/stuttgart-things/sealer/internal/sealing"
)

// parameterFlags are the sealing parameters that can be fixed on the command
// line. Set values take precedence over the derived defaults.
type parameterFlags struct {
	name      string
	namespace string
	scope     string
	cert      string
}

func (p *parameterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.name, "name", "", "Secret name")
	cmd.Flags().StringVar(&p.namespace, "namespace", "", "Secret namespace")
	cmd.Flags().StringVar(&p.scope, "scope", "", "Sealing scope (strict, namespaceWide, clusterWide)")
	cmd.Flags().StringVar(&p.cert, "cert", "", "Path to the sealing certificate")
}

func (p *parameterFlags) parameters() (sealing.Parameters, error) {
	var params sealing.Parameters

	if p.scope != "" {
		scope, err := sealing.ParseScope(p.scope)
		if err != nil {
			return sealing.Parameters{}, err
		}
		params.Scope = scope
	}
	if p.name != "" {
		params.Name = sealing.Some(p.name)
	}
	if p.namespace != "" {
		params.Namespace = sealing.Some(p.namespace)
	}
	if p.cert != "" {
		params.CertificatePath = sealing.Some(p.cert)
	}

	return params, nil
}

// outputFlags control where sealed documents are written.
type outputFlags struct {
	output          string
	outputDir       string
	filenamePattern string
	dryRun          bool
	kustomize       bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output file, or - for stdout (default: generated from --filename-pattern)")
	cmd.Flags().StringVar(&o.outputDir, "output-dir", "", "Output directory (default: directory of the source file)")
	cmd.Flags().StringVar(&o.filenamePattern, "filename-pattern", defaultFilenamePattern, "Pattern for output filenames")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Print output without writing files")
	cmd.Flags().BoolVar(&o.kustomize, "kustomize", false, "Add written files to kustomization.yaml in the output directory")
}

func (o *outputFlags) config() OutputConfig {
	return OutputConfig{
		Output:          o.output,
		Directory:       o.outputDir,
		FilenamePattern: o.filenamePattern,
		DryRun:          o.dryRun,
	}
}

// gitFlags enable committing and pushing written files.
type gitFlags struct {
	commit       bool
	push         bool
	branch       string
	createBranch bool
	message      string
	remote       string
	user         string
	token        string
}

func (g *gitFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&g.commit, "git-commit", false, "Commit written files to the repository containing them")
	cmd.Flags().BoolVar(&g.push, "git-push", false, "Push after committing (implies --git-commit)")
	cmd.Flags().StringVar(&g.branch, "git-branch", "", "Branch to commit to")
	cmd.Flags().BoolVar(&g.createBranch, "git-create-branch", false, "Create the branch from HEAD")
	cmd.Flags().StringVar(&g.message, "git-message", "", "Commit message (default: auto-generated)")
	cmd.Flags().StringVar(&g.remote, "git-remote", gitops.DefaultRemote, "Git remote name")
	cmd.Flags().StringVar(&g.user, "git-user", "", "Git username (or GIT_USER/GITHUB_USER env)")
	cmd.Flags().StringVar(&g.token, "git-token", "", "Git token (or GIT_TOKEN/GITHUB_TOKEN env)")
}

func (g *gitFlags) config() *gitops.Config {
	return &gitops.Config{
		Commit:       g.commit || g.push,
		Push:         g.push,
		Branch:       g.branch,
		CreateBranch: g.createBranch,
		Remote:       g.remote,
		User:         g.user,
		Token:        g.token,
		Message:      g.message,
	}
}
