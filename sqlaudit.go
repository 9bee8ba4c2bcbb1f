// Package sqlaudit inspects SQL statements for unsafe patterns, sensitive-data access and
// the tables and columns they reference, optionally alongside a user-supplied schema.
//
// The analysis is heuristic by design. Statements are matched lexically against a fixed
// rule table, and schemas are read from JSON, YAML or CREATE TABLE text on a best-effort
// basis. Nothing in the analysis fails: unrecognized input produces empty results.
//
// # Quick Start
//
// The simplest way to use this package is RunAnalysis:
//
//	schemaText := `[{"name":"users","columns":[{"name":"id","type":"INTEGER","primaryKey":true}]}]`
//	r := sqlaudit.RunAnalysis(&schemaText, "DELETE FROM users")
//	for _, d := range r.Diagnostics {
//		fmt.Println(d.Severity, d.Message)
//	}
//
// # Report Sections
//
// A report carries three independent sections:
//   - Diagnostics: optimization and safety notes with a severity
//   - ComplianceWarnings: sensitive-data and bulk-operation risks
//   - References: tables and column-like tokens the statement mentions
//
// Sections can be switched off individually with Options.
//
// # Output Formats
//
// FormatReport renders a report as text, markdown, html, json or yaml to any io.Writer,
// or as a directory with _overview.md plus one file per schema table:
//
//	err := sqlaudit.FormatReport(r, &sqlaudit.OutputOptions{Format: "markdown", Writer: os.Stdout})
package sqlaudit

import (
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/tordrt/sqlaudit/internal/analyzer"
	"github.com/tordrt/sqlaudit/internal/compliance"
	"github.com/tordrt/sqlaudit/internal/diagnostic"
	"github.com/tordrt/sqlaudit/internal/formatter"
	"github.com/tordrt/sqlaudit/internal/refs"
	"github.com/tordrt/sqlaudit/internal/report"
	"github.com/tordrt/sqlaudit/internal/schema"
)

// Report is the combined result of one analysis.
type Report = report.Report

// Options configures which report sections are produced.
//
// All fields are optional. The zero value produces every section with the built-in
// sensitive field vocabulary.
type Options struct {
	// SkipDiagnostics leaves Report.Diagnostics empty.
	SkipDiagnostics bool

	// SkipCompliance leaves Report.ComplianceWarnings and Report.SensitiveColumns empty.
	SkipCompliance bool

	// ExtraSensitiveFields extends the sensitive field vocabulary.
	// Example: []string{"IBAN", "DATE_OF_BIRTH"}
	ExtraSensitiveFields []string

	// ReportSuccess adds a single Success diagnostic when no rule fires.
	ReportSuccess bool
}

// OutputOptions configures report output.
//
// If OutputDir is set, a directory with _overview plus one file per schema table is
// written and Writer is ignored. Otherwise the report is written to Writer, or to
// os.Stdout when Writer is nil.
type OutputOptions struct {
	// Writer receives single-document output.
	Writer io.Writer

	// OutputDir selects multi-file output. Only "markdown" and "text" formats apply.
	OutputDir string

	// Format is one of "text", "markdown", "html", "json" or "yaml". Defaults to "text".
	Format string

	// Color enables ANSI colours in text output.
	Color bool
}

// RunAnalysis analyzes sql against an optional schema text using default options.
// A nil or empty schemaText yields an empty schema.
func RunAnalysis(schemaText *string, sql string) *Report {
	return Analyze(schemaText, sql, nil)
}

// Analyze analyzes sql against an optional schema text.
//
// The diagnostics, compliance scan and reference extraction run concurrently; none of
// them share state and none can fail, so Analyze always returns a complete report.
func Analyze(schemaText *string, sql string, opts *Options) *Report {
	if opts == nil {
		opts = &Options{}
	}

	r := &Report{
		Schema:             schema.Empty(),
		Diagnostics:        []diagnostic.Diagnostic{},
		ComplianceWarnings: []diagnostic.ComplianceWarning{},
	}
	if schemaText != nil {
		r.Schema = schema.Parse(*schemaText)
	}

	scanner := compliance.NewScanner(opts.ExtraSensitiveFields...)

	var g errgroup.Group
	if !opts.SkipDiagnostics {
		g.Go(func() error {
			r.Diagnostics = analyzer.Analyze(sql)
			return nil
		})
	}
	if !opts.SkipCompliance {
		g.Go(func() error {
			r.ComplianceWarnings = scanner.Scan(sql)
			r.SensitiveColumns = scanner.SensitiveColumns(r.Schema)
			return nil
		})
	}
	g.Go(func() error {
		r.References = refs.Extract(sql)
		return nil
	})
	// The analyses cannot fail; Wait only joins them.
	_ = g.Wait()

	if opts.ReportSuccess && !opts.SkipDiagnostics && len(r.Diagnostics) == 0 {
		r.Diagnostics = append(r.Diagnostics, diagnostic.Diagnostic{
			Rule:     "no-issues",
			Severity: diagnostic.Success,
			Category: diagnostic.CategorySafety,
			Message:  "No issues detected",
		})
	}

	return r
}

// FormatReport renders a report to the output described by opts.
//
// Returns an error if the format is unknown, the output directory cannot be created,
// or writing fails.
func FormatReport(r *Report, opts *OutputOptions) error {
	if opts == nil {
		opts = &OutputOptions{}
	}

	format := opts.Format
	if format == "" {
		format = formatter.FormatText
	}

	if opts.OutputDir != "" {
		f, err := formatter.NewMultiFileFormatter(opts.OutputDir, format)
		if err != nil {
			return err
		}
		return f.Format(r)
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	f, err := formatter.New(format, writer, opts.Color)
	if err != nil {
		return err
	}
	return f.Format(r)
}
