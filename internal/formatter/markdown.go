package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/sqlaudit/internal/report"
	"github.com/tordrt/sqlaudit/internal/schema"
)

// MarkdownFormatter formats a report as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the report in markdown format
func (f *MarkdownFormatter) Format(r *report.Report) error {
	_, _ = fmt.Fprintln(f.writer, "# Query Analysis")
	_, _ = fmt.Fprintln(f.writer)

	f.formatDiagnostics(r)
	f.formatCompliance(r)
	f.formatReferences(r)

	if !r.Schema.IsEmpty() {
		_, _ = fmt.Fprintln(f.writer, "## Schema")
		_, _ = fmt.Fprintln(f.writer)
		for _, table := range r.Schema.Tables {
			f.FormatTable(table, r.ReferencedColumns(table))
		}
	}
	return nil
}

func (f *MarkdownFormatter) formatDiagnostics(r *report.Report) {
	_, _ = fmt.Fprintln(f.writer, "## Optimization Notes")
	_, _ = fmt.Fprintln(f.writer)

	if len(r.Diagnostics) == 0 {
		_, _ = fmt.Fprintln(f.writer, "_None._")
		_, _ = fmt.Fprintln(f.writer)
		return
	}

	_, _ = fmt.Fprintln(f.writer, "| Severity | Message | Suggestion |")
	_, _ = fmt.Fprintln(f.writer, "|---|---|---|")
	for _, d := range r.Diagnostics {
		_, _ = fmt.Fprintf(f.writer, "| %s | %s | %s |\n",
			d.Severity,
			escapeCell(d.Message),
			escapeCell(d.Suggestion))
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatCompliance(r *report.Report) {
	_, _ = fmt.Fprintln(f.writer, "## Compliance Warnings")
	_, _ = fmt.Fprintln(f.writer)

	if len(r.ComplianceWarnings) == 0 {
		_, _ = fmt.Fprintln(f.writer, "_None._")
	}
	for _, w := range r.ComplianceWarnings {
		_, _ = fmt.Fprintf(f.writer, "- %s\n", w)
	}
	if len(r.SensitiveColumns) > 0 {
		_, _ = fmt.Fprintf(f.writer, "\nSensitive schema columns: %s\n", strings.Join(r.SensitiveColumns, ", "))
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatReferences(r *report.Report) {
	_, _ = fmt.Fprintln(f.writer, "## References")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "- **Tables:** %s\n", joinOrNone(r.References.Tables))
	_, _ = fmt.Fprintf(f.writer, "- **Columns:** %s\n", joinOrNone(r.References.Columns))

	if p := r.Preview(); len(p.Unknown) > 0 && !r.Schema.IsEmpty() {
		_, _ = fmt.Fprintf(f.writer, "- **Not in schema:** %s\n", strings.Join(p.Unknown, ", "))
	}
	_, _ = fmt.Fprintln(f.writer)
}

// FormatTable formats a single table (exported for use by multifile formatter).
// Columns listed in referenced are marked as used by the statement.
func (f *MarkdownFormatter) FormatTable(table schema.Table, referenced []string) {
	_, _ = fmt.Fprintf(f.writer, "### %s\n\n", table.Name)

	if len(table.Columns) == 0 {
		_, _ = fmt.Fprintln(f.writer, "_No columns._")
		_, _ = fmt.Fprintln(f.writer)
		return
	}

	used := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		used[name] = true
	}

	for _, col := range table.Columns {
		typeStr := col.Type
		if typeStr == "" {
			typeStr = "?"
		}

		line := fmt.Sprintf("- **%s:** %s", col.Name, typeStr)
		if constraints := formatConstraints(col); constraints != "" {
			line += ", " + constraints
		}
		if used[col.Name] {
			line += " _(referenced)_"
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)
}

func formatConstraints(col schema.Column) string {
	var constraints []string
	if col.IsPrimaryKey {
		constraints = append(constraints, "PK")
	}
	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}
	return strings.Join(constraints, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
