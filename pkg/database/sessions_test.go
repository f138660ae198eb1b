package database

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tekunalogy/company-researcher/pkg/research"
)

// Runs against a real database only when TEST_DATABASE_URL is set.
func testDB(t *testing.T) *PostgresDB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewPostgresDB(ctx, url, 4)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.InitSchema(ctx))
	return db
}

func TestSessionLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	state := research.ResearchState{
		UserURL:     "https://acme.example",
		CrawledData: json.RawMessage(`{"name":"Acme"}`),
	}

	s, err := db.CreateSession(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, s.Status)
	assert.Equal(t, "https://acme.example", s.CompanyURL)

	_, err = db.ClaimSession(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionBusy)

	next := state.Apply(research.StateUpdate{
		FinalReport:     "r1",
		ReportRevisions: []string{"r1"},
	})
	require.NoError(t, db.CompleteSession(ctx, s.ID, next))

	got, err := db.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, []string{"r1"}, got.State.ReportRevisions)

	claimed, err := db.ClaimSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, claimed.Status)

	require.NoError(t, db.FailSession(ctx, s.ID, "boom"))
	got, err = db.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Equal(t, "boom", *got.Error)
	assert.Equal(t, []string{"r1"}, got.State.ReportRevisions)

	require.NoError(t, db.InsertLog(ctx, LogEntry{
		SessionID: s.ID,
		Timestamp: time.Now(),
		Level:     "INFO",
		Message:   "hello",
		Metadata:  json.RawMessage(`{"k":"v"}`),
	}))
	logs, err := db.GetSessionLogs(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "hello", logs[0].Message)
}

func TestGetSessionNotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = db.ClaimSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
