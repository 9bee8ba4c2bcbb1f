package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/sqlaudit/internal/report"
	"github.com/tordrt/sqlaudit/internal/schema"
)

// MultiFileFormatter writes a report to a directory: an overview with every section
// plus one file per schema table
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) (*MultiFileFormatter, error) {
	if format != FormatMarkdown && format != FormatText {
		return nil, fmt.Errorf("%w: %s (multi-file output supports text or markdown)", ErrUnknownFormat, format)
	}
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}, nil
}

// Format writes the report to multiple files
func (f *MultiFileFormatter) Format(r *report.Report) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(r); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	written := make(map[string]bool)
	for _, table := range r.Schema.Tables {
		name := fileName(table.Name)
		// Repeated table names keep the first definition
		if written[name] {
			continue
		}
		written[name] = true

		if err := f.writeTableFile(table, r); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(r *report.Report) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	// Schema tables get their own files; the overview only indexes them
	overview := &report.Report{
		Schema:             schema.Empty(),
		Diagnostics:        r.Diagnostics,
		ComplianceWarnings: r.ComplianceWarnings,
		References:         r.References,
		SensitiveColumns:   r.SensitiveColumns,
	}

	if f.OutputFormat == FormatMarkdown {
		if err := NewMarkdownFormatter(file).Format(overview); err != nil {
			return err
		}
		f.writeTableIndex(file, r, "- **%s**%s\n")
		return nil
	}

	if err := NewTextFormatter(file, false).Format(overview); err != nil {
		return err
	}
	f.writeTableIndex(file, r, "%s%s\n")
	return nil
}

// writeTableIndex lists schema tables alphabetically, marking those the statement references
func (f *MultiFileFormatter) writeTableIndex(file *os.File, r *report.Report, lineFormat string) {
	if r.Schema.IsEmpty() {
		return
	}

	if f.OutputFormat == FormatMarkdown {
		_, _ = fmt.Fprintf(file, "## Tables\n\n")
		_, _ = fmt.Fprintf(file, "Each table has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
	} else {
		_, _ = fmt.Fprintf(file, "\nTABLES\n")
		_, _ = fmt.Fprintf(file, "Each table has a file: <table_name>%s\n", f.getFileExtension())
	}

	sortedTables := make([]schema.Table, len(r.Schema.Tables))
	copy(sortedTables, r.Schema.Tables)
	sort.SliceStable(sortedTables, func(i, j int) bool {
		return sortedTables[i].Name < sortedTables[j].Name
	})

	for _, table := range sortedTables {
		marker := ""
		if r.References.HasTable(table.Name) {
			marker = " (referenced)"
		}
		_, _ = fmt.Fprintf(file, lineFormat, table.Name, marker)
	}
}

// writeTableFile writes a single table to its own file
func (f *MultiFileFormatter) writeTableFile(table schema.Table, r *report.Report) error {
	filename := filepath.Join(f.OutputDir, fileName(table.Name)+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	referenced := r.ReferencedColumns(table)

	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(file).FormatTable(table, referenced)
		return nil
	}

	tf := NewTextFormatter(file, false)
	tf.formatTable(table)
	if len(referenced) > 0 {
		_, _ = fmt.Fprintf(file, "  REFERENCED: %s\n", strings.Join(referenced, ", "))
	}
	return nil
}

// fileName turns a table name into a safe file name
func fileName(table string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, table)
	if name == "" || name == "." || name == ".." {
		return "_unnamed"
	}
	return name
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
