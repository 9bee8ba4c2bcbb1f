package formatter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/tordrt/sqlaudit/internal/report"
)

// HTMLFormatter renders the markdown report as an HTML fragment
type HTMLFormatter struct {
	writer io.Writer
	md     goldmark.Markdown
}

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(w io.Writer) *HTMLFormatter {
	return &HTMLFormatter{
		writer: w,
		md:     goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Format writes the report as HTML
func (f *HTMLFormatter) Format(r *report.Report) error {
	var src bytes.Buffer
	if err := NewMarkdownFormatter(&src).Format(r); err != nil {
		return err
	}

	if err := f.md.Convert(src.Bytes(), f.writer); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}
