// Package refs extracts the tables and column-like tokens a SQL statement mentions.
//
// The extraction is an audit aid, not a resolver: the column set also picks up table
// names, function names and any other upper-case identifiers of three or more letters.
package refs

import (
	"regexp"
	"strings"
)

var (
	tablePattern = regexp.MustCompile(`\b(?:FROM|JOIN)\s+(\w+)`)
	tokenPattern = regexp.MustCompile(`\b[A-Z_]{3,}\b`)
)

var stopWords = map[string]bool{
	"SELECT": true,
	"FROM":   true,
	"WHERE":  true,
	"ORDER":  true,
	"GROUP":  true,
	"HAVING": true,
	"LIMIT":  true,
}

// ReferenceSet holds deduplicated upper-case names in first-seen order.
type ReferenceSet struct {
	Tables  []string `json:"tables" yaml:"tables"`
	Columns []string `json:"columns" yaml:"columns"`
}

// Extract returns the references found in the statement.
func Extract(sql string) ReferenceSet {
	upper := strings.ToUpper(sql)

	set := ReferenceSet{Tables: []string{}, Columns: []string{}}

	seenTables := make(map[string]bool)
	for _, m := range tablePattern.FindAllStringSubmatch(upper, -1) {
		if name := m[1]; !seenTables[name] {
			seenTables[name] = true
			set.Tables = append(set.Tables, name)
		}
	}

	seenColumns := make(map[string]bool)
	for _, tok := range tokenPattern.FindAllString(upper, -1) {
		if stopWords[tok] || seenColumns[tok] {
			continue
		}
		seenColumns[tok] = true
		set.Columns = append(set.Columns, tok)
	}

	return set
}

// HasTable reports whether name was referenced as a table, ignoring case.
func (r ReferenceSet) HasTable(name string) bool {
	return contains(r.Tables, name)
}

// HasColumn reports whether name was collected as a column token, ignoring case.
func (r ReferenceSet) HasColumn(name string) bool {
	return contains(r.Columns, name)
}

// IsEmpty reports whether nothing was referenced.
func (r ReferenceSet) IsEmpty() bool {
	return len(r.Tables) == 0 && len(r.Columns) == 0
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}
