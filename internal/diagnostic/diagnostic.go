// Package diagnostic defines the severities, categories and finding types shared by the
// query analyzer and the compliance scanner.
package diagnostic

import (
	"fmt"
	"strings"
)

// Severity indicates how serious a diagnostic is.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Success
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalYAML writes the severity name.
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return Error, nil
	case "warning":
		return Warning, nil
	case "info":
		return Info, nil
	case "success":
		return Success, nil
	default:
		return 0, fmt.Errorf("unknown severity: %q", name)
	}
}

// Category groups diagnostics by concern.
type Category string

const (
	CategorySafety      Category = "safety"
	CategoryPerformance Category = "performance"
	CategoryCompliance  Category = "compliance"
)

// Diagnostic is a single finding about a SQL statement.
type Diagnostic struct {
	Rule       string   `json:"rule" yaml:"rule"`
	Severity   Severity `json:"severity" yaml:"severity"`
	Category   Category `json:"category" yaml:"category"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// ComplianceWarning describes a sensitive-data or bulk-operation risk.
type ComplianceWarning string

// Filter returns the diagnostics matching any of the given severities, in order.
func Filter(diags []Diagnostic, severities ...Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		for _, sev := range severities {
			if d.Severity == sev {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// Count returns the number of diagnostics with the given severity.
func Count(diags []Diagnostic, severity Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == severity {
			n++
		}
	}
	return n
}
