package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tordrt/sqlaudit/internal/history"
)

const sqlPreviewWidth = 60

var errNoHistoryURL = errors.New("no history database configured: use --history-url or SQLAUDIT_HISTORY_URL")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analysis runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if cfg.History.URL == "" {
			return errNoHistoryURL
		}
		if cfg.History.Limit < 1 {
			return fmt.Errorf("%w: got %d", history.ErrInvalidLimit, cfg.History.Limit)
		}

		store, err := history.Open(ctx, cfg.History.URL, log)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer func() {
			if err := store.Close(ctx); err != nil {
				log.Warnf("failed to close history store: %v", err)
			}
		}()

		runs, err := store.List(ctx, cfg.History.Limit)
		if err != nil {
			return err
		}
		return printRuns(cmd.OutOrStdout(), runs)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	_ = viper.BindPFlag("history.limit", historyCmd.Flags().Lookup("limit"))
}

func printRuns(out io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "no recorded runs")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCREATED\tERRORS\tWARNINGS\tCOMPLIANCE\tSQL")
	for _, run := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.CreatedAt.Local().Format(time.DateTime),
			run.ErrorCount,
			run.WarningCount,
			run.ComplianceCount,
			previewSQL(run.SQL),
		)
	}
	return w.Flush()
}

// previewSQL collapses whitespace and truncates long statements
func previewSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if r := []rune(s); len(r) > sqlPreviewWidth {
		return string(r[:sqlPreviewWidth-3]) + "..."
	}
	return s
}
