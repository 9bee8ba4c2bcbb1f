package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tordrt/sqlaudit/internal/diagnostic"
	"github.com/tordrt/sqlaudit/internal/report"
	"github.com/tordrt/sqlaudit/internal/schema"
)

// TextFormatter formats a report as compact text
type TextFormatter struct {
	writer io.Writer
	colors map[diagnostic.Severity]*color.Color
	accent *color.Color
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer, colored bool) *TextFormatter {
	f := &TextFormatter{
		writer: w,
		colors: map[diagnostic.Severity]*color.Color{
			diagnostic.Error:   color.New(color.FgRed, color.Bold),
			diagnostic.Warning: color.New(color.FgYellow),
			diagnostic.Info:    color.New(color.FgCyan),
			diagnostic.Success: color.New(color.FgGreen),
		},
		accent: color.New(color.FgMagenta),
	}

	for _, c := range f.colors {
		toggleColor(c, colored)
	}
	toggleColor(f.accent, colored)
	return f
}

func toggleColor(c *color.Color, enabled bool) {
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}

// Format writes the report in compact text format
func (f *TextFormatter) Format(r *report.Report) error {
	f.formatDiagnostics(r.Diagnostics)
	_, _ = fmt.Fprintln(f.writer)
	f.formatCompliance(r)
	_, _ = fmt.Fprintln(f.writer)
	f.formatReferences(r)

	if !r.Schema.IsEmpty() {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "SCHEMA")
		for i, table := range r.Schema.Tables {
			if i > 0 {
				_, _ = fmt.Fprintln(f.writer) // Blank line between tables
			}
			f.formatTable(table)
		}
	}
	return nil
}

func (f *TextFormatter) formatDiagnostics(diags []diagnostic.Diagnostic) {
	_, _ = fmt.Fprintln(f.writer, "OPTIMIZATION NOTES")
	if len(diags) == 0 {
		_, _ = fmt.Fprintln(f.writer, "  none")
		return
	}
	for _, d := range diags {
		label := "[" + strings.ToUpper(d.Severity.String()) + "]"
		if c, ok := f.colors[d.Severity]; ok {
			label = c.Sprint(label)
		}
		_, _ = fmt.Fprintf(f.writer, "  %s %s\n", label, d.Message)
		if d.Suggestion != "" {
			_, _ = fmt.Fprintf(f.writer, "    → %s\n", d.Suggestion)
		}
	}
}

func (f *TextFormatter) formatCompliance(r *report.Report) {
	_, _ = fmt.Fprintln(f.writer, "COMPLIANCE WARNINGS")
	if len(r.ComplianceWarnings) == 0 {
		_, _ = fmt.Fprintln(f.writer, "  none")
	}
	for _, w := range r.ComplianceWarnings {
		_, _ = fmt.Fprintf(f.writer, "  %s %s\n", f.accent.Sprint("!"), w)
	}
	if len(r.SensitiveColumns) > 0 {
		_, _ = fmt.Fprintf(f.writer, "  sensitive schema columns: %s\n", strings.Join(r.SensitiveColumns, ", "))
	}
}

func (f *TextFormatter) formatReferences(r *report.Report) {
	_, _ = fmt.Fprintln(f.writer, "REFERENCES")
	_, _ = fmt.Fprintf(f.writer, "  tables: %s\n", joinOrNone(r.References.Tables))
	_, _ = fmt.Fprintf(f.writer, "  columns: %s\n", joinOrNone(r.References.Columns))

	if p := r.Preview(); len(p.Unknown) > 0 && !r.Schema.IsEmpty() {
		_, _ = fmt.Fprintf(f.writer, "  not in schema: %s\n", strings.Join(p.Unknown, ", "))
	}
}

func (f *TextFormatter) formatTable(table schema.Table) {
	pkStr := ""
	if pk := table.PrimaryKey(); len(pk) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pk, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumn(col))
	}
}

func formatColumn(col schema.Column) string {
	parts := []string{col.Name + ":"}
	if col.Type != "" {
		parts = append(parts, col.Type)
	}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
