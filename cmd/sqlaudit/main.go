package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tordrt/sqlaudit"
	"github.com/tordrt/sqlaudit/internal/diagnostic"
	"github.com/tordrt/sqlaudit/internal/history"
)

var (
	sqlText     string
	sqlFile     string
	schemaText  string
	schemaFile  string
	outputFile  string
	outputDir   string
	cfgFile     string
	failOnError bool
	noColor     bool
	verbose     bool

	log = logrus.New()
)

var (
	errNoSQL             = errors.New("no SQL given: use --sql, --sql-file or pipe a statement on stdin")
	errConflictingOutput = errors.New("cannot use both --output-dir and --output flags")
	errAnalysisErrors    = errors.New("analysis reported error diagnostics")
)

var rootCmd = &cobra.Command{
	Use:   "sqlaudit",
	Short: "Check SQL statements for unsafe patterns and sensitive data access",
	Long: `sqlaudit inspects a SQL statement for unscoped mutations, unbounded reads and missing join
predicates, flags access to sensitive columns, and lists the tables and columns it references.
A schema given as JSON, YAML or CREATE TABLE text is shown alongside the findings.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              run,
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sqlaudit.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("history-url", "", "Record runs in postgres://, mysql:// or sqlite:// database")

	rootCmd.Flags().StringVar(&sqlText, "sql", "", "SQL statement to analyze")
	rootCmd.Flags().StringVar(&sqlFile, "sql-file", "", "File containing the SQL statement")
	rootCmd.Flags().StringVar(&schemaText, "schema", "", "Schema as JSON, YAML or CREATE TABLE text (optional)")
	rootCmd.Flags().StringVar(&schemaFile, "schema-file", "", "File containing the schema (optional)")
	rootCmd.Flags().StringP("format", "f", "text", "Output format: text, markdown, html, json or yaml")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	rootCmd.Flags().Bool("skip-diagnostics", false, "Leave out optimization notes")
	rootCmd.Flags().Bool("skip-compliance", false, "Leave out compliance warnings")
	rootCmd.Flags().Bool("report-success", false, "Add a success note when no rule fires")
	rootCmd.Flags().StringSlice("sensitive-fields", nil, "Extra sensitive field names (comma-separated)")
	rootCmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "Exit non-zero when an error diagnostic is reported")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("history.url", rootCmd.PersistentFlags().Lookup("history-url"))
	_ = viper.BindPFlag("output.format", rootCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("analysis.skip_diagnostics", rootCmd.Flags().Lookup("skip-diagnostics"))
	_ = viper.BindPFlag("analysis.skip_compliance", rootCmd.Flags().Lookup("skip-compliance"))
	_ = viper.BindPFlag("analysis.report_success", rootCmd.Flags().Lookup("report-success"))
	_ = viper.BindPFlag("compliance.extra_fields", rootCmd.Flags().Lookup("sensitive-fields"))

	rootCmd.AddCommand(rulesCmd, historyCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	return configureLogger(log, cfg.Log.Level, verbose)
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	// Validate flag combinations
	if outputDir != "" && outputFile != "" {
		return errConflictingOutput
	}

	in := inputs{
		sql:        sqlText,
		sqlSet:     cmd.Flags().Changed("sql"),
		sqlFile:    sqlFile,
		schema:     schemaText,
		schemaSet:  cmd.Flags().Changed("schema"),
		schemaFile: schemaFile,
	}

	sql, err := in.readSQL(cmd.InOrStdin(), stdinPiped())
	if err != nil {
		return err
	}

	schemaInput, err := in.readSchema()
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"sql_bytes":  len(sql),
		"has_schema": schemaInput != nil,
	}).Debug("analyzing statement")

	r := sqlaudit.Analyze(schemaInput, sql, &sqlaudit.Options{
		SkipDiagnostics:      cfg.Analysis.SkipDiagnostics,
		SkipCompliance:       cfg.Analysis.SkipCompliance,
		ExtraSensitiveFields: normalizeFields(cfg.Compliance.ExtraFields),
		ReportSuccess:        cfg.Analysis.ReportSuccess,
	})

	if err := writeReport(cmd.OutOrStdout(), r, cfg); err != nil {
		return err
	}

	if cfg.History.URL != "" {
		if err := recordRun(ctx, cfg.History.URL, sql, r); err != nil {
			return err
		}
	}

	if failOnError && r.HasErrors() {
		return fmt.Errorf("%w: %d", errAnalysisErrors, diagnostic.Count(r.Diagnostics, diagnostic.Error))
	}
	return nil
}

func writeReport(stdout io.Writer, r *sqlaudit.Report, cfg *Config) error {
	// Multi-file output
	if outputDir != "" {
		if err := sqlaudit.FormatReport(r, &sqlaudit.OutputOptions{OutputDir: outputDir, Format: cfg.Output.Format}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	// Single-file output
	writer := stdout
	colored := cfg.Output.Color && !noColor && !color.NoColor
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Warnf("failed to close output file: %v", err)
			}
		}()
		writer = f
		colored = false
	}

	if err := sqlaudit.FormatReport(r, &sqlaudit.OutputOptions{
		Writer: writer,
		Format: cfg.Output.Format,
		Color:  colored,
	}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func recordRun(ctx context.Context, url, sql string, r *sqlaudit.Report) error {
	store, err := history.Open(ctx, url, log)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() {
		if err := store.Close(ctx); err != nil {
			log.Warnf("failed to close history store: %v", err)
		}
	}()

	stored, err := store.Record(ctx, sql, r)
	if err != nil {
		return err
	}
	log.WithField("run", stored.ID).Info("recorded analysis run")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
