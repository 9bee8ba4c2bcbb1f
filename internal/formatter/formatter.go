package formatter

import (
	"errors"
	"fmt"
	"io"

	"github.com/tordrt/sqlaudit/internal/report"
)

// Supported output formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// ErrUnknownFormat is returned for an unsupported output format
var ErrUnknownFormat = errors.New("unknown output format")

// Formatter writes a report
type Formatter interface {
	Format(r *report.Report) error
}

// New returns the single-document formatter for format
func New(format string, w io.Writer, color bool) (Formatter, error) {
	switch format {
	case FormatText:
		return NewTextFormatter(w, color), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	case FormatHTML:
		return NewHTMLFormatter(w), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatYAML:
		return NewYAMLFormatter(w), nil
	default:
		return nil, fmt.Errorf("%w: %s (must be one of text, markdown, html, json, yaml)", ErrUnknownFormat, format)
	}
}
