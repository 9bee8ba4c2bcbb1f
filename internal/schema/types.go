package schema

import "strings"

// Schema represents a parsed database schema.
// Table names may repeat when the input repeats them; nothing is deduplicated.
type Schema struct {
	Tables []Table `json:"tables" yaml:"tables"`
}

// Table represents a database table
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Column represents a table column
type Column struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	Nullable     bool   `json:"nullable" yaml:"nullable"`
	IsPrimaryKey bool   `json:"primaryKey" yaml:"primaryKey"`
}

// Empty returns a schema with no tables
func Empty() *Schema {
	return &Schema{Tables: []Table{}}
}

// IsEmpty reports whether the schema has no tables
func (s *Schema) IsEmpty() bool {
	return s == nil || len(s.Tables) == 0
}

// FindTable returns the first table whose name matches case-insensitively
func (s *Schema) FindTable(name string) (*Table, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Tables {
		if strings.EqualFold(s.Tables[i].Name, name) {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// PrimaryKey returns the primary key column names in column order
func (t Table) PrimaryKey() []string {
	var pk []string
	for _, col := range t.Columns {
		if col.IsPrimaryKey {
			pk = append(pk, col.Name)
		}
	}
	return pk
}
