package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Tekunalogy/company-researcher/pkg/research"
)

var (
	ErrSessionNotFound = errors.New("report session not found")
	ErrSessionBusy     = errors.New("report session is already running")
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Session is a persisted research state and the status of its latest run.
type Session struct {
	ID         uuid.UUID              `json:"id"`
	CompanyURL string                 `json:"company_url"`
	Status     Status                 `json:"status"`
	State      research.ResearchState `json:"state"`
	Error      *string                `json:"error,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

type LogEntry struct {
	ID        int             `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

const sessionColumns = `id, company_url, status, state, error, created_at, updated_at`

func scanSession(row pgx.Row) (*Session, error) {
	var (
		s        Session
		rawState []byte
	)
	if err := row.Scan(&s.ID, &s.CompanyURL, &s.Status, &rawState, &s.Error, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawState, &s.State); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &s, nil
}

// CreateSession stores state as a new session that is already running.
func (db *PostgresDB) CreateSession(ctx context.Context, state research.ResearchState) (*Session, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}

	query := `
		INSERT INTO report_sessions (id, company_url, status, state)
		VALUES ($1, $2, 'running', $3)
		RETURNING ` + sessionColumns

	s, err := scanSession(db.Pool.QueryRow(ctx, query, uuid.New(), state.UserURL, stateJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

func (db *PostgresDB) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM report_sessions WHERE id = $1`

	s, err := scanSession(db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (db *PostgresDB) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM report_sessions ORDER BY created_at DESC LIMIT $1`

	rows, err := db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// ClaimSession marks a session as running unless a run is already in flight.
func (db *PostgresDB) ClaimSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `
		UPDATE report_sessions
		SET status = 'running', error = NULL, updated_at = NOW()
		WHERE id = $1 AND status <> 'running'
		RETURNING ` + sessionColumns

	s, err := scanSession(db.Pool.QueryRow(ctx, query, id))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to claim session: %w", err)
	}

	if _, err := db.GetSession(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrSessionBusy
}

// CompleteSession replaces the stored state with the result of a successful run.
func (db *PostgresDB) CompleteSession(ctx context.Context, id uuid.UUID, state research.ResearchState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		"UPDATE report_sessions SET status = 'completed', state = $2, error = NULL, updated_at = NOW() WHERE id = $1",
		id, stateJSON)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// FailSession records the failure reason and keeps the stored state as it was.
func (db *PostgresDB) FailSession(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := db.Pool.Exec(ctx,
		"UPDATE report_sessions SET status = 'failed', error = $2, updated_at = NOW() WHERE id = $1",
		id, reason)
	if err != nil {
		return fmt.Errorf("failed to mark session failed: %w", err)
	}
	return nil
}

func (db *PostgresDB) InsertLog(ctx context.Context, entry LogEntry) error {
	query := `
		INSERT INTO report_logs (session_id, timestamp, level, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.Pool.Exec(ctx, query, entry.SessionID, entry.Timestamp, entry.Level, entry.Message, []byte(entry.Metadata))
	return err
}

func (db *PostgresDB) GetSessionLogs(ctx context.Context, sessionID uuid.UUID) ([]LogEntry, error) {
	query := `
		SELECT id, session_id, timestamp, level, message, metadata
		FROM report_logs
		WHERE session_id = $1
		ORDER BY id ASC
	`
	rows, err := db.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var l LogEntry
		var meta []byte
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Timestamp, &l.Level, &l.Message, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		l.Metadata = meta
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
