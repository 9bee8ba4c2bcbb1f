package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/tordrt/sqlaudit/internal/report"
)

// dialect holds the driver-specific parts of a database/sql backed store
type dialect struct {
	name        string
	driver      string
	createTable string
}

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite3",
	createTable: `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		sql_text TEXT NOT NULL,
		error_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		compliance_count INTEGER NOT NULL,
		report TEXT NOT NULL
	)`,
}

var mysqlDialect = dialect{
	name:   "mysql",
	driver: "mysql",
	createTable: `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		id VARCHAR(36) PRIMARY KEY,
		created_at BIGINT NOT NULL,
		sql_text LONGTEXT NOT NULL,
		error_count INT NOT NULL,
		warning_count INT NOT NULL,
		compliance_count INT NOT NULL,
		report LONGTEXT NOT NULL
	)`,
}

// sqlStore stores runs through database/sql (SQLite and MySQL)
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	log     logrus.FieldLogger
}

func newSQLStore(ctx context.Context, d dialect, connStr string, log logrus.FieldLogger) (*sqlStore, error) {
	db, err := sql.Open(d.driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.name, err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", d.name, err)
	}

	if _, err := db.ExecContext(ctx, d.createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s table: %w", tableName, err)
	}

	return &sqlStore{db: db, dialect: d, log: log.WithField("backend", d.name)}, nil
}

func (s *sqlStore) Record(ctx context.Context, sqlText string, r *report.Report) (*Run, error) {
	run, err := newRun(sqlText, r, time.Now())
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO ` + tableName + ` (id, created_at, sql_text, error_count, warning_count, compliance_count, report)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query,
		run.ID, run.CreatedAt.UnixMilli(), run.SQL,
		run.ErrorCount, run.WarningCount, run.ComplianceCount, string(run.ReportJSON)); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	s.log.WithField("run", run.ID).Debug("recorded analysis run")
	return run, nil
}

func (s *sqlStore) List(ctx context.Context, limit int) ([]Run, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	query := `SELECT id, created_at, sql_text, error_count, warning_count, compliance_count, report
		FROM ` + tableName + `
		ORDER BY created_at DESC, id
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			createdAt int64
			data      string
		)
		if err := rows.Scan(&run.ID, &createdAt, &run.SQL,
			&run.ErrorCount, &run.WarningCount, &run.ComplianceCount, &data); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = time.UnixMilli(createdAt).UTC()
		run.ReportJSON = []byte(data)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *sqlStore) Close(context.Context) error {
	return s.db.Close()
}
