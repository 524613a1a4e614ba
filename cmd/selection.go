package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stuttgart-things/sealer/internal/collector"
	"github.com/stuttgart-things/sealer/internal/editor"
	"github.com/stuttgart-things/sealer/internal/session"
)

var (
	selectionParams parameterFlags
	selectionRanges []string
	selectionOutput string
)

var selectionCmd = &cobra.Command{
	Use:   "selection <path|->",
	Short: "Seal selected values in place",
	Long: `Seals the selected text of a document in raw mode and replaces each selection
with its ciphertext. Ranges are N (line), N-M (lines) or L:C-L:C (1-based
line:column, end exclusive). Selections are sealed in the order given.`,
	Example: `  sealer selection values.yaml --select 4:13-4:29 --namespace team-db --name db
  cat values.yaml | sealer selection - --select 3 --non-interactive --scope clusterWide`,
	Args: cobra.ExactArgs(1),
	RunE: runSelection,
}

func init() {
	selectionParams.register(selectionCmd)
	selectionCmd.Flags().StringArrayVarP(&selectionRanges, "select", "s", nil, "Range to seal (repeatable)")
	selectionCmd.Flags().StringVarP(&selectionOutput, "output", "o", "", "Write the edited document to this file, or - for stdout, instead of saving it in place")
	_ = selectionCmd.MarkFlagRequired("select")

	rootCmd.AddCommand(selectionCmd)
}

func runSelection(cmd *cobra.Command, args []string) error {
	overrides, err := selectionParams.parameters()
	if err != nil {
		return err
	}

	env, err := newEnvironment(cmd)
	if err != nil {
		return err
	}

	doc, err := openDocument(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := selectRanges(doc, selectionRanges); err != nil {
		return err
	}

	s := env.session(&cliHost{interactive: env.interactive})
	defer s.Close()
	s.Overrides = overrides

	reportCertificateSource(env)

	sealErr := s.SealSelections(cmd.Context(), doc)

	if doc.IsDirty() {
		if err := writeDocument(doc, selectionOutput, cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	return selectionOutcome(sealErr, len(selectionRanges), os.Stderr)
}

// selectionOutcome reports the result of sealing total selections. Failed
// selections are listed and fail the command; a cancelled prompt only ends
// the run early.
func selectionOutcome(sealErr error, total int, stderr io.Writer) error {
	if sealErr == nil {
		fmt.Fprintln(stderr, successStyle.Render(fmt.Sprintf("Sealed %d selection(s)", total)))
		return nil
	}

	selErrs := session.SelectionErrors(sealErr)
	if len(selErrs) == 0 {
		return sealErr
	}

	failed := 0
	cancelled := false
	for _, e := range selErrs {
		if errors.Is(e, collector.ErrCancelled) {
			cancelled = true
			continue
		}
		failed++
		fmt.Fprintln(stderr, errorStyle.Render(e.Error()))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d selections failed", failed, total)
	}
	if cancelled {
		fmt.Fprintln(stderr, warnStyle.Render("Cancelled: remaining selections were left unchanged"))
	}
	return nil
}

// selectRanges parses every range against the document text and selects
// them in the order given.
func selectRanges(doc *editor.Buffer, specs []string) error {
	ranges := make([]editor.Range, 0, len(specs))
	for _, spec := range specs {
		r, err := editor.ParseRange(doc.Text(), spec)
		if err != nil {
			return fmt.Errorf("--select %s: %w", spec, err)
		}
		ranges = append(ranges, r)
	}
	return doc.Select(ranges...)
}

// writeDocument stores the edited document in output, or prints it for -.
// Without output the file is saved in place; documents read from standard
// input are printed.
func writeDocument(doc *editor.Buffer, output string, stdout io.Writer) error {
	switch {
	case output == "-":
	case output != "":
		return doc.SaveAs(output)
	case !doc.IsUntitled():
		return doc.Save()
	}
	_, err := io.WriteString(stdout, doc.Text())
	return err
}
