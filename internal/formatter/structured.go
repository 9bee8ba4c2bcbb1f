package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/tordrt/sqlaudit/internal/report"
)

// JSONFormatter writes the report as indented JSON
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format writes the report as JSON
func (f *JSONFormatter) Format(r *report.Report) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// YAMLFormatter writes the report as YAML
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the report as YAML
func (f *YAMLFormatter) Format(r *report.Report) error {
	enc := yaml.NewEncoder(f.writer)
	defer func() { _ = enc.Close() }()

	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return nil
}
