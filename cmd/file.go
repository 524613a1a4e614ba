package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stuttgart-things/sealer/internal/gitops"
	"github.com/stuttgart-things/sealer/internal/kubecontext"
)

var (
	fileParams parameterFlags
	fileOutput outputFlags
	fileGit    gitFlags
	fileSaveAs string
)

var fileCmd = &cobra.Command{
	Use:   "file <path|->",
	Short: "Seal a whole Secret manifest",
	Long: `Seals a Secret manifest into a SealedSecret. Name, namespace and scope are
derived from the manifest (or from the params.libsonnet location) and confirmed
interactively. The result is written next to the source as <name>-sealed.yaml.`,
	Args: cobra.ExactArgs(1),
	RunE: runFile,
}

func init() {
	fileParams.register(fileCmd)
	fileOutput.register(fileCmd)
	fileGit.register(fileCmd)
	fileCmd.Flags().StringVar(&fileSaveAs, "save-as", "", "Save standard input to this file before sealing")

	rootCmd.AddCommand(fileCmd)
}

func runFile(cmd *cobra.Command, args []string) error {
	overrides, err := fileParams.parameters()
	if err != nil {
		return err
	}

	config := &FileConfig{
		Source:    args[0],
		SaveAs:    fileSaveAs,
		Overrides: overrides,
		Output:    fileOutput.config(),
		Kustomize: fileOutput.kustomize,
		GitConfig: fileGit.config(),
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	doc, err := openDocument(config.Source, cmd.InOrStdin())
	if err != nil {
		return err
	}

	host := &cliHost{
		interactive: env.interactive,
		saveAs:      config.SaveAs,
		output:      config.Output,
	}
	s := env.session(host)
	defer s.Close()
	s.Overrides = config.Overrides

	if env.interactive {
		fmt.Fprintln(os.Stderr, logo)
	}
	reportCertificateSource(env)

	if err := s.SealFile(cmd.Context(), doc); err != nil {
		return err
	}

	return publishResults(&host.results, config.Kustomize, config.GitConfig)
}

// publishResults registers written files with kustomize and commits them.
func publishResults(results *SealResults, kustomizeEnabled bool, git *gitops.Config) error {
	if kustomizeEnabled {
		if err := registerKustomize(results); err != nil {
			return err
		}
	}
	return executeGitOperations(results, git)
}

// reportCertificateSource names the cluster kubeseal fetches the
// certificate from when no local certificate is used.
func reportCertificateSource(env *environment) {
	if env.store.Current().UseLocalCertificate {
		return
	}

	info, err := kubecontext.Current("")
	if err != nil {
		if errors.Is(err, kubecontext.ErrNoCurrentContext) {
			fmt.Fprintln(os.Stderr, warnStyle.Render("No kubeconfig context selected; kubeseal may not reach the controller"))
			return
		}
		env.logger.Warn("could not read kubeconfig", "error", err)
		return
	}
	fmt.Fprintln(os.Stderr, progressStyle.Render("Fetching certificate via "+info.String()))
}
