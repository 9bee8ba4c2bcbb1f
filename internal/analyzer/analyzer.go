// Package analyzer checks SQL statements for unsafe or inefficient patterns.
//
// Matching is lexical: every rule tests substrings of an upper-cased copy of the
// statement. No schema is consulted and no grammar is applied.
package analyzer

import (
	"strings"

	"github.com/tordrt/sqlaudit/internal/diagnostic"
)

// Rule is a single lexical check.
type Rule struct {
	ID         string
	Severity   diagnostic.Severity
	Category   diagnostic.Category
	Message    string
	Suggestion string

	// Match receives the upper-cased statement.
	Match func(upper string) bool
}

const addWhere = "Add a WHERE clause to limit affected rows"

// rules are evaluated in order and fire independently.
var rules = []Rule{
	{
		ID:         "delete-without-where",
		Severity:   diagnostic.Error,
		Category:   diagnostic.CategorySafety,
		Message:    "DELETE statement without WHERE clause",
		Suggestion: addWhere,
		Match:      containsWithout("DELETE FROM", "WHERE"),
	},
	{
		ID:         "update-without-where",
		Severity:   diagnostic.Error,
		Category:   diagnostic.CategorySafety,
		Message:    "UPDATE statement without WHERE clause",
		Suggestion: addWhere,
		Match:      containsWithout("UPDATE", "WHERE"),
	},
	{
		ID:         "select-star-without-limit",
		Severity:   diagnostic.Warning,
		Category:   diagnostic.CategoryPerformance,
		Message:    "SELECT * without LIMIT may return large result sets",
		Suggestion: "Specify needed columns and add a LIMIT clause",
		Match:      containsWithout("SELECT *", "LIMIT"),
	},
	{
		// Statements rarely spell out INDEX, so this fires for nearly every WHERE.
		ID:         "where-index-reminder",
		Severity:   diagnostic.Info,
		Category:   diagnostic.CategoryPerformance,
		Message:    "Ensure filtered columns are indexed",
		Suggestion: "Check that columns used in WHERE have appropriate indexes",
		Match:      containsWithout("WHERE", "INDEX"),
	},
	{
		ID:         "join-without-on",
		Severity:   diagnostic.Error,
		Category:   diagnostic.CategorySafety,
		Message:    "JOIN without ON condition may produce a Cartesian product",
		Suggestion: "Add an ON clause with the join predicate",
		Match:      containsWithout("JOIN", "ON"),
	},
	{
		ID:         "order-by-without-limit",
		Severity:   diagnostic.Warning,
		Category:   diagnostic.CategoryPerformance,
		Message:    "ORDER BY without LIMIT sorts the full result set",
		Suggestion: "Add a LIMIT clause when only top rows are needed",
		Match:      containsWithout("ORDER BY", "LIMIT"),
	},
}

func containsWithout(needle, absent string) func(string) bool {
	return func(upper string) bool {
		return strings.Contains(upper, needle) && !strings.Contains(upper, absent)
	}
}

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Analyze returns the diagnostics of every rule matching the statement, in rule order.
func Analyze(sql string) []diagnostic.Diagnostic {
	upper := strings.ToUpper(sql)

	diags := []diagnostic.Diagnostic{}
	for _, r := range rules {
		if r.Match(upper) {
			diags = append(diags, r.diagnostic())
		}
	}
	return diags
}

func (r Rule) diagnostic() diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Rule:       r.ID,
		Severity:   r.Severity,
		Category:   r.Category,
		Message:    r.Message,
		Suggestion: r.Suggestion,
	}
}
