// Package compliance flags SQL statements that may touch sensitive data or
// modify or export rows in bulk.
package compliance

import (
	"strings"

	"github.com/tordrt/sqlaudit/internal/diagnostic"
	"github.com/tordrt/sqlaudit/internal/schema"
)

// DefaultFields is the built-in sensitive field vocabulary.
var DefaultFields = []string{"EMAIL", "PHONE", "SSN", "PASSWORD", "CREDIT_CARD", "BANK_ACCOUNT"}

const (
	sensitivePrefix       = "Query may access sensitive data: "
	modificationWarning   = "Data modification query - ensure proper authorization"
	largeResultSetWarning = "Query may return large result set - consider data export policies"
)

// Scanner checks statements against a sensitive field vocabulary.
type Scanner struct {
	Fields []string
}

// NewScanner returns a scanner using DefaultFields followed by extra fields.
// Extra fields are upper-cased; blanks and duplicates are dropped.
func NewScanner(extra ...string) *Scanner {
	fields := make([]string, 0, len(DefaultFields)+len(extra))
	seen := make(map[string]bool)
	for _, f := range append(append([]string{}, DefaultFields...), extra...) {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		fields = append(fields, f)
	}
	return &Scanner{Fields: fields}
}

// Scan runs the default scanner.
func Scan(sql string) []diagnostic.ComplianceWarning {
	return NewScanner().Scan(sql)
}

// Scan returns one warning per sensitive field mentioned, then the bulk mutation
// warning, then the large result set warning.
func (s *Scanner) Scan(sql string) []diagnostic.ComplianceWarning {
	upper := strings.ToUpper(sql)

	warnings := []diagnostic.ComplianceWarning{}
	for _, field := range s.Fields {
		if strings.Contains(upper, field) {
			warnings = append(warnings, diagnostic.ComplianceWarning(sensitivePrefix+field))
		}
	}

	if strings.Contains(upper, "DELETE FROM") || strings.Contains(upper, "UPDATE") {
		warnings = append(warnings, modificationWarning)
	}

	if strings.Contains(upper, "SELECT") && !strings.Contains(upper, "LIMIT") {
		warnings = append(warnings, largeResultSetWarning)
	}

	return warnings
}

// SensitiveColumns lists "table.column" for every schema column whose name contains
// a vocabulary field. It is used for display only.
func (s *Scanner) SensitiveColumns(sc *schema.Schema) []string {
	if sc.IsEmpty() {
		return nil
	}

	var out []string
	for _, table := range sc.Tables {
		for _, col := range table.Columns {
			name := strings.ToUpper(col.Name)
			for _, field := range s.Fields {
				if strings.Contains(name, field) {
					out = append(out, table.Name+"."+col.Name)
					break
				}
			}
		}
	}
	return out
}
