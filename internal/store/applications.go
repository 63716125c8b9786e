// Package store persists submitted application records in Postgres.
// Records are append-only: the core never updates or deletes them.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS applications (
	id         UUID PRIMARY KEY,
	job_id     TEXT,
	job_title  TEXT NOT NULL,
	company    TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	notes      TEXT
)`

// Application is a persisted record of a submitted application.
type Application struct {
	ID        string
	JobID     *string
	JobTitle  string
	Company   string
	AppliedAt time.Time
	Notes     *string
}

type Applications struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open creates and verifies the connection pool and makes sure the
// applications table exists.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (*Applications, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create applications table: %w", err)
	}

	return &Applications{pool: pool, logger: logger}, nil
}

func (a *Applications) Close() {
	if a != nil && a.pool != nil {
		a.pool.Close()
	}
}

// Add records a submitted application and returns its ID.
func (a *Applications) Add(ctx context.Context, jobID *string, jobTitle, company string, notes *string) (string, error) {
	id := uuid.NewString()

	_, err := a.pool.Exec(ctx,
		`INSERT INTO applications (id, job_id, job_title, company, notes) VALUES ($1, $2, $3, $4, $5)`,
		id, jobID, jobTitle, company, notes,
	)
	if err != nil {
		return "", fmt.Errorf("insert application: %w", err)
	}

	a.logger.Info("application recorded",
		zap.String("application_id", id),
		zap.String("job_title", jobTitle),
		zap.String("company", company),
	)
	return id, nil
}

// List returns all recorded applications, newest first.
func (a *Applications) List(ctx context.Context) ([]Application, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT id, job_id, job_title, company, applied_at, notes
		 FROM applications
		 ORDER BY applied_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		var app Application
		if err := rows.Scan(&app.ID, &app.JobID, &app.JobTitle, &app.Company, &app.AppliedAt, &app.Notes); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}
