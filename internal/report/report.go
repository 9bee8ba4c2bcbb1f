package report

import (
	"github.com/tordrt/sqlaudit/internal/diagnostic"
	"github.com/tordrt/sqlaudit/internal/refs"
	"github.com/tordrt/sqlaudit/internal/schema"
)

// Report is the combined result of analyzing one statement
type Report struct {
	Schema             *schema.Schema                 `json:"schema" yaml:"schema"`
	Diagnostics        []diagnostic.Diagnostic        `json:"diagnostics" yaml:"diagnostics"`
	ComplianceWarnings []diagnostic.ComplianceWarning `json:"complianceWarnings" yaml:"complianceWarnings"`
	References         refs.ReferenceSet              `json:"references" yaml:"references"`

	// SensitiveColumns lists schema columns matching the sensitive vocabulary (display only)
	SensitiveColumns []string `json:"sensitiveColumns,omitempty" yaml:"sensitiveColumns,omitempty"`
}

// HasErrors reports whether any diagnostic has Error severity
func (r *Report) HasErrors() bool {
	return diagnostic.Count(r.Diagnostics, diagnostic.Error) > 0
}

// TableMatch pairs a referenced table with its schema definition
type TableMatch struct {
	Table             schema.Table
	ReferencedColumns []string
}

// Preview cross-references the statement's tables with the schema
type Preview struct {
	Matched []TableMatch
	Unknown []string
}

// Preview builds the schema/metadata preview. Referenced tables missing from the schema
// are listed as unknown; nothing is validated.
func (r *Report) Preview() Preview {
	var p Preview
	for _, name := range r.References.Tables {
		table, ok := r.Schema.FindTable(name)
		if !ok {
			p.Unknown = append(p.Unknown, name)
			continue
		}

		p.Matched = append(p.Matched, TableMatch{
			Table:             *table,
			ReferencedColumns: r.ReferencedColumns(*table),
		})
	}
	return p
}

// ReferencedColumns returns the columns of table that the statement mentions
func (r *Report) ReferencedColumns(table schema.Table) []string {
	var cols []string
	for _, col := range table.Columns {
		if r.References.HasColumn(col.Name) {
			cols = append(cols, col.Name)
		}
	}
	return cols
}
