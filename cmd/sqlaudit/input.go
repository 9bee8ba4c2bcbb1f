package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// inputs holds the statement and schema sources given on the command line
type inputs struct {
	sql        string
	sqlSet     bool
	sqlFile    string
	schema     string
	schemaSet  bool
	schemaFile string
}

// readSQL returns the statement from --sql, --sql-file or piped stdin, in that order.
// An explicitly empty --sql is a valid (empty) statement.
func (in inputs) readSQL(stdin io.Reader, piped bool) (string, error) {
	if in.sqlSet && in.sqlFile != "" {
		return "", fmt.Errorf("cannot use both --sql and --sql-file flags")
	}

	switch {
	case in.sqlSet:
		return in.sql, nil
	case in.sqlFile != "":
		data, err := os.ReadFile(in.sqlFile)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL file: %w", err)
		}
		return string(data), nil
	case piped:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL from stdin: %w", err)
		}
		return string(data), nil
	default:
		return "", errNoSQL
	}
}

// readSchema returns the schema text, or nil when none was given
func (in inputs) readSchema() (*string, error) {
	if in.schemaSet && in.schemaFile != "" {
		return nil, fmt.Errorf("cannot use both --schema and --schema-file flags")
	}

	switch {
	case in.schemaSet:
		text := in.schema
		return &text, nil
	case in.schemaFile != "":
		data, err := os.ReadFile(in.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		text := string(data)
		return &text, nil
	default:
		return nil, nil
	}
}

// stdinPiped reports whether stdin is a pipe or file rather than a terminal
func stdinPiped() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}

// normalizeFields splits comma-separated entries and trims blanks
func normalizeFields(fields []string) []string {
	var out []string
	for _, entry := range fields {
		for _, f := range strings.Split(entry, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
	}
	return out
}
