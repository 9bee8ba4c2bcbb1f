package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/tordrt/sqlaudit/internal/report"
)

// postgresStore stores runs in PostgreSQL through pgx
type postgresStore struct {
	conn *pgx.Conn
	log  logrus.FieldLogger
}

func newPostgresStore(ctx context.Context, connString string, log logrus.FieldLogger) (*postgresStore, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		sql_text TEXT NOT NULL,
		error_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		compliance_count INTEGER NOT NULL,
		report JSONB NOT NULL
	)`
	if _, err := conn.Exec(ctx, createTable); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to create %s table: %w", tableName, err)
	}

	return &postgresStore{conn: conn, log: log.WithField("backend", "postgres")}, nil
}

func (s *postgresStore) Record(ctx context.Context, sqlText string, r *report.Report) (*Run, error) {
	run, err := newRun(sqlText, r, time.Now())
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO ` + tableName + ` (id, created_at, sql_text, error_count, warning_count, compliance_count, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.conn.Exec(ctx, query,
		run.ID, run.CreatedAt, run.SQL,
		run.ErrorCount, run.WarningCount, run.ComplianceCount, string(run.ReportJSON)); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	s.log.WithField("run", run.ID).Debug("recorded analysis run")
	return run, nil
}

func (s *postgresStore) List(ctx context.Context, limit int) ([]Run, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	query := `SELECT id::text, created_at, sql_text, error_count, warning_count, compliance_count, report::text
		FROM ` + tableName + `
		ORDER BY created_at DESC, id
		LIMIT $1`

	rows, err := s.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run  Run
			data string
		)
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.SQL,
			&run.ErrorCount, &run.WarningCount, &run.ComplianceCount, &data); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = run.CreatedAt.UTC()
		run.ReportJSON = []byte(data)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *postgresStore) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}
