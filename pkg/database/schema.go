package database

import (
	"context"
	"fmt"
)

func (db *PostgresDB) InitSchema(ctx context.Context) error {
	// 1. Report Sessions Table
	sessionsQuery := `
		CREATE TABLE IF NOT EXISTS report_sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			company_url TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			state JSONB NOT NULL,
			error TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := db.Pool.Exec(ctx, sessionsQuery); err != nil {
		return fmt.Errorf("failed to create report_sessions table: %w", err)
	}

	// 2. Report Logs Table
	logsQuery := `
		CREATE TABLE IF NOT EXISTS report_logs (
			id SERIAL PRIMARY KEY,
			session_id UUID NOT NULL REFERENCES report_sessions(id) ON DELETE CASCADE,
			timestamp TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata JSONB
		);
	`
	if _, err := db.Pool.Exec(ctx, logsQuery); err != nil {
		return fmt.Errorf("failed to create report_logs table: %w", err)
	}

	// Indexes for faster querying
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_report_logs_session_id ON report_logs(session_id)"); err != nil {
		return fmt.Errorf("failed to create index on report_logs: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_report_sessions_created_at ON report_sessions(created_at DESC)"); err != nil {
		return fmt.Errorf("failed to create index on report_sessions: %w", err)
	}

	return nil
}
