package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"

	"github.com/stuttgart-things/sealer/internal/editor"
	"github.com/stuttgart-things/sealer/internal/params"
	"github.com/stuttgart-things/sealer/internal/sealing"
	"github.com/stuttgart-things/sealer/internal/secret"
)

var (
	createParams     parameterFlags
	createType       string
	createLiterals   []string
	createParamsFile string
	createOutput     outputFlags
	createGit        gitFlags
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create and seal a Secret from literal values",
	Long: `Builds a Kubernetes Secret from --from-literal values and/or a YAML/JSON params
file and seals it without writing the plain Secret to disk.

A params file holds either one secret:

  name: db
  namespace: team-db
  stringData:
    password: s3cret

or several under "secrets:".`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createParams.register(createCmd)
	createOutput.register(createCmd)
	createGit.register(createCmd)
	createCmd.Flags().StringVar(&createType, "type", string(corev1.SecretTypeOpaque), "Secret type")
	createCmd.Flags().StringArrayVarP(&createLiterals, "from-literal", "l", nil, "Secret value (key=value, repeatable)")
	createCmd.Flags().StringVarP(&createParamsFile, "from-params-file", "f", "", "YAML/JSON file with secret values")

	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	config := &CreateConfig{
		SecretName:      createParams.name,
		SecretNamespace: createParams.namespace,
		Scope:           createParams.scope,
		Type:            createType,
		CertificatePath: createParams.cert,
		ParamsFile:      createParamsFile,
		LiteralsRaw:     createLiterals,
		Output:          createOutput.config(),
		Kustomize:       createOutput.kustomize,
		GitConfig:       createGit.config(),
	}
	if config.Output.Directory == "" {
		config.Output.Directory = "."
	}

	secrets, err := buildSecrets(config)
	if err != nil {
		return err
	}
	if config.Output.Output != "" && config.Output.Output != "-" && len(secrets) > 1 {
		return fmt.Errorf("--output names a single file but %d secrets are created; use --filename-pattern", len(secrets))
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	host := &cliHost{interactive: env.interactive, output: config.Output}
	s := env.session(host)
	defer s.Close()
	if config.CertificatePath != "" {
		s.Overrides = sealing.Parameters{CertificatePath: sealing.Some(config.CertificatePath)}
	}

	reportCertificateSource(env)

	for i, data := range secrets {
		manifest, err := secret.GenerateYAML(data)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stderr, progressStyle.Render(fmt.Sprintf("[%d/%d] Sealing %s", i+1, len(secrets), data.Name)))
		if err := s.SealManifest(cmd.Context(), editor.NewUntitled(string(manifest))); err != nil {
			return fmt.Errorf("sealing %s: %w", data.Name, err)
		}
	}

	return publishResults(&host.results, config.Kustomize, config.GitConfig)
}

// buildSecrets combines the params file with the command line into the
// secrets to create. Literal values are added to every secret; flags fill
// metadata the file leaves empty and override it for a single secret.
func buildSecrets(config *CreateConfig) ([]secret.Data, error) {
	literals, err := params.ParseLiterals(config.LiteralsRaw)
	if err != nil {
		return nil, err
	}

	var entries []params.SecretValues
	if config.ParamsFile != "" {
		vf, err := params.ParseFile(config.ParamsFile)
		if err != nil {
			return nil, err
		}
		entries = vf.Secrets
	}
	if len(entries) == 0 {
		entries = []params.SecretValues{{}}
	}
	if len(entries) > 1 && config.SecretName != "" {
		return nil, fmt.Errorf("--name cannot be used with a params file holding %d secrets", len(entries))
	}

	var flagScope sealing.Scope
	if config.Scope != "" {
		if flagScope, err = sealing.ParseScope(config.Scope); err != nil {
			return nil, err
		}
	}

	result := make([]secret.Data, 0, len(entries))
	for _, e := range entries {
		values, err := params.Strings(params.Merge(e.StringData, literals))
		if err != nil {
			return nil, fmt.Errorf("secret %s: %w", e.Name, err)
		}

		scope := flagScope
		if !scope.IsSet() && e.Scope != "" {
			if scope, err = sealing.ParseScope(e.Scope); err != nil {
				return nil, fmt.Errorf("secret %s: %w", e.Name, err)
			}
		}

		data := secret.Data{
			Name:       firstNonEmpty(config.SecretName, e.Name),
			Namespace:  firstNonEmpty(config.SecretNamespace, e.Namespace),
			Scope:      scope,
			Type:       corev1.SecretType(config.Type),
			StringData: values,
		}
		if data.Name == "" {
			return nil, fmt.Errorf("secret name is required: use --name or set name in the params file")
		}
		result = append(result, data)
	}

	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
