package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/stuttgart-things/sealer/internal/defaults"
	"github.com/stuttgart-things/sealer/internal/sealing"
)

var (
	defaultsSeed   parameterFlags
	defaultsOutput string
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults <path|->",
	Short: "Show the sealing parameters derived from a document",
	Long: `Shows the scope, name, namespace and certificate sealer would propose for a
document. Flags act as the parameters of a previous run that the derived values
are layered on.`,
	Args: cobra.ExactArgs(1),
	RunE: runDefaults,
}

func init() {
	defaultsSeed.register(defaultsCmd)
	defaultsCmd.Flags().StringVarP(&defaultsOutput, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(defaultsCmd)
}

// parameterView is the printable form of sealing parameters.
type parameterView struct {
	Scope           string  `json:"scope,omitempty"`
	Name            *string `json:"name,omitempty"`
	Namespace       *string `json:"namespace,omitempty"`
	CertificatePath *string `json:"certificatePath,omitempty"`
	Ready           bool    `json:"ready"`
	Missing         string  `json:"missing,omitempty"`
}

func newParameterView(p sealing.Parameters, useLocalCertificate bool) parameterView {
	v := parameterView{Scope: p.Scope.String()}
	if s, ok := p.Name.Get(); ok {
		v.Name = &s
	}
	if s, ok := p.Namespace.Get(); ok {
		v.Namespace = &s
	}
	if s, ok := p.CertificatePath.Get(); ok {
		v.CertificatePath = &s
	}
	if err := p.Validate(useLocalCertificate); err != nil {
		v.Missing = err.Error()
	} else {
		v.Ready = true
	}
	return v
}

func runDefaults(cmd *cobra.Command, args []string) error {
	if defaultsOutput != "table" && defaultsOutput != "json" {
		return fmt.Errorf("invalid output format: %s (valid values: table, json)", defaultsOutput)
	}

	seed, err := defaultsSeed.parameters()
	if err != nil {
		return err
	}
	var prior *sealing.Parameters
	if seed != (sealing.Parameters{}) {
		prior = &seed
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}
	env.applyOverrides()

	doc, err := openDocument(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	view := newParameterView(defaults.Resolve(doc, prior), env.store.Current().UseLocalCertificate)

	if defaultsOutput == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	}
	renderParameterTable(cmd.OutOrStdout(), view)
	return nil
}

func renderParameterTable(w io.Writer, v parameterView) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Parameter", "Value"})
	scope := v.Scope
	if scope == "" {
		scope = unsetValue
	}
	t.AppendRow(table.Row{"Scope", scope})
	t.AppendRow(table.Row{"Name", valueOrUnset(v.Name)})
	t.AppendRow(table.Row{"Namespace", valueOrUnset(v.Namespace)})
	t.AppendRow(table.Row{"Certificate", valueOrUnset(v.CertificatePath)})
	t.AppendSeparator()
	if v.Ready {
		t.AppendRow(table.Row{"Status", "ready to seal"})
	} else {
		t.AppendRow(table.Row{"Status", v.Missing})
	}

	t.Render()
}

const unsetValue = "-"

func valueOrUnset(s *string) string {
	if s == nil {
		return unsetValue
	}
	if *s == "" {
		return `""`
	}
	return *s
}
