package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/sqlaudit/internal/formatter"
	"github.com/tordrt/sqlaudit/internal/history"
)

// resetFlags restores every flag to its default. Flag values and the package vars they
// are bound to survive between Execute calls.
func resetFlags(t *testing.T) {
	t.Helper()
	for _, fs := range []*pflag.FlagSet{rootCmd.PersistentFlags(), rootCmd.Flags(), historyCmd.Flags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				require.NoError(t, sv.Replace(nil))
			} else {
				require.NoError(t, f.Value.Set(f.DefValue))
			}
			f.Changed = false
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		args       []string
		wantErr    bool
		wantErrIs  error
		wantOutput string
	}{
		{
			name:       "error diagnostic without fail-on-error",
			args:       []string{"--sql", "DELETE FROM users"},
			wantOutput: "[ERROR] DELETE statement without WHERE clause",
		},
		{
			name:       "fail-on-error with error diagnostic",
			args:       []string{"--sql", "DELETE FROM users", "--fail-on-error"},
			wantErrIs:  errAnalysisErrors,
			wantOutput: "[ERROR] DELETE statement without WHERE clause",
		},
		{
			name:       "fail-on-error with warnings only",
			args:       []string{"--sql", "SELECT * FROM users", "--fail-on-error"},
			wantOutput: "SELECT * without LIMIT",
		},
		{
			name:      "output and output-dir together",
			args:      []string{"--sql", "SELECT 1", "-o", filepath.Join(dir, "out.txt"), "-d", filepath.Join(dir, "out")},
			wantErrIs: errConflictingOutput,
		},
		{
			name:    "sql and sql-file together",
			args:    []string{"--sql", "SELECT 1", "--sql-file", filepath.Join(dir, "q.sql")},
			wantErr: true,
		},
		{
			name:       "json format",
			args:       []string{"--sql", "SELECT email FROM users", "-f", "json"},
			wantOutput: `"Query may access sensitive data: EMAIL"`,
		},
		{
			name:      "unknown format",
			args:      []string{"--sql", "SELECT 1", "-f", "xml"},
			wantErrIs: formatter.ErrUnknownFormat,
		},
		{
			name:       "skip diagnostics",
			args:       []string{"--sql", "DELETE FROM users", "--skip-diagnostics", "--fail-on-error"},
			wantOutput: "OPTIMIZATION NOTES",
		},
		{
			name:       "extra sensitive fields",
			args:       []string{"--sql", "SELECT iban FROM accounts LIMIT 1", "--sensitive-fields", "iban"},
			wantOutput: "Query may access sensitive data: IBAN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)

			switch {
			case tt.wantErrIs != nil:
				assert.ErrorIs(t, err, tt.wantErrIs)
			case tt.wantErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
			}
			if tt.wantOutput != "" {
				assert.Contains(t, out, tt.wantOutput)
			}
		})
	}
}

func TestRootCommandFlagsDoNotLeak(t *testing.T) {
	_, err := execute(t, "--sql", "DELETE FROM users", "--fail-on-error")
	require.ErrorIs(t, err, errAnalysisErrors)

	_, err = execute(t, "--sql", "DELETE FROM users")
	assert.NoError(t, err)
}

func TestRootCommandWritesOutputFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "report.md")

	out, err := execute(t, "--sql", "UPDATE accounts SET balance = 0", "-f", "markdown", "-o", file)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Query Analysis"))
	assert.Contains(t, string(data), "UPDATE statement without WHERE clause")
}

func TestRootCommandRecordsHistory(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, "--sql", "DELETE FROM users", "--history-url", url)
	require.NoError(t, err)

	store, err := history.Open(ctx, url, nil)
	require.NoError(t, err)
	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.NoError(t, store.Close(ctx))

	require.Len(t, runs, 1)
	assert.Equal(t, "DELETE FROM users", runs[0].SQL)
	assert.Equal(t, 1, runs[0].ErrorCount)

	out, err := execute(t, "history", "--history-url", url)
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].ID)
	assert.Contains(t, out, "DELETE FROM users")
}

func TestHistoryCommandValidation(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, "history")
	assert.ErrorIs(t, err, errNoHistoryURL)

	for _, limit := range []string{"0", "-1"} {
		_, err = execute(t, "history", "--history-url", url, "--limit="+limit)
		assert.ErrorIs(t, err, history.ErrInvalidLimit, "limit %s", limit)
	}
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)

	for _, id := range []string{"delete-without-where", "update-without-where", "order-by-without-limit"} {
		assert.Contains(t, out, id)
	}
}
