package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/stuttgart-things/sealer/internal/registry"
	"github.com/stuttgart-things/sealer/internal/sealing"
)

var (
	listNamespace string
	listScope     string
	listOutput    string
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List sealed secrets below a directory",
	Long:  `Lists every SealedSecret found in the YAML files below dir (default: current directory), with optional filtering by namespace or scope.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listNamespace, "namespace", "", "Filter by namespace")
	listCmd.Flags().StringVar(&listScope, "scope", "", "Filter by scope (strict, namespaceWide, clusterWide)")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if listOutput != "table" && listOutput != "json" {
		return fmt.Errorf("invalid output format: %s (valid values: table, json)", listOutput)
	}

	var scope sealing.Scope
	if listScope != "" {
		var err error
		if scope, err = sealing.ParseScope(listScope); err != nil {
			return err
		}
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	all, err := registry.Scan(root)
	if err != nil {
		return err
	}
	entries := registry.FilterEntries(all, listNamespace, scope)

	if listOutput == "json" {
		return printJSON(cmd.OutOrStdout(), entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sealed secrets found.")
		return nil
	}
	printTable(cmd.OutOrStdout(), entries)
	return nil
}

func printTable(w io.Writer, entries []registry.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Name", "Namespace", "Scope", "Keys", "File"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Name, e.Namespace, e.Scope, strings.Join(e.Keys, ", "), e.Path})
	}

	t.Render()
}

func printJSON(w io.Writer, entries []registry.Entry) error {
	if entries == nil {
		entries = []registry.Entry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}
