package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tordrt/sqlaudit/internal/analyzer"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the query rules in evaluation order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "RULE\tSEVERITY\tCATEGORY\tMESSAGE")
		for _, r := range analyzer.Rules() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Severity, r.Category, r.Message)
		}
		return w.Flush()
	},
}
