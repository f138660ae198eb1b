package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Tekunalogy/company-researcher/pkg/database"
	"github.com/Tekunalogy/company-researcher/pkg/research"
)

const listLimit = 50

// SessionStore is the persistence the service needs; *database.PostgresDB
// implements it.
type SessionStore interface {
	LogWriter
	CreateSession(ctx context.Context, state research.ResearchState) (*database.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*database.Session, error)
	ListSessions(ctx context.Context, limit int) ([]database.Session, error)
	ClaimSession(ctx context.Context, id uuid.UUID) (*database.Session, error)
	CompleteSession(ctx context.Context, id uuid.UUID, state research.ResearchState) error
	FailSession(ctx context.Context, id uuid.UUID, reason string) error
	GetSessionLogs(ctx context.Context, id uuid.UUID) ([]database.LogEntry, error)
}

type Service struct {
	Store    SessionStore
	Composer *research.Composer
	LogLevel slog.Level

	workers sync.WaitGroup
}

func NewService(store SessionStore, composer *research.Composer, level slog.Level) *Service {
	return &Service{
		Store:    store,
		Composer: composer,
		LogLevel: level,
	}
}

type CreateReportRequest struct {
	CompanyURL               string            `json:"company_url"`
	CrawledData              json.RawMessage   `json:"crawled_data"`
	FallbackSearchKeyPersons []json.RawMessage `json:"fallback_search_key_persons,omitempty"`
}

type ReviseReportRequest struct {
	Prompt string `json:"prompt"`
}

// CreateSession stores a new research state and generates its first report in
// the background.
func (s *Service) CreateSession(ctx context.Context, req CreateReportRequest) (*database.Session, error) {
	if strings.TrimSpace(req.CompanyURL) == "" {
		return nil, fmt.Errorf("%w: company_url is required", research.ErrInvalidState)
	}
	if len(req.CrawledData) == 0 || string(req.CrawledData) == "null" {
		return nil, fmt.Errorf("%w: crawled_data is required", research.ErrInvalidState)
	}

	state := research.ResearchState{
		UserURL:                  req.CompanyURL,
		CrawledData:              req.CrawledData,
		FallbackSearchKeyPersons: req.FallbackSearchKeyPersons,
	}

	session, err := s.Store.CreateSession(ctx, state)
	if err != nil {
		return nil, err
	}

	s.startWorker(session.ID, state)
	return session, nil
}

// ReviseSession applies prompt to the session's current report in the
// background. Only one run per session may be in flight.
func (s *Service) ReviseSession(ctx context.Context, id uuid.UUID, prompt string) (*database.Session, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", research.ErrInvalidState)
	}

	current, err := s.Store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(current.State.FinalReport) == "" {
		return nil, fmt.Errorf("%w: session has no report to revise yet", research.ErrInvalidState)
	}

	session, err := s.Store.ClaimSession(ctx, id)
	if err != nil {
		return nil, err
	}

	state := session.State
	state.UserPrompt = prompt
	s.startWorker(session.ID, state)
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*database.Session, error) {
	return s.Store.GetSession(ctx, id)
}

func (s *Service) ListSessions(ctx context.Context) ([]database.Session, error) {
	return s.Store.ListSessions(ctx, listLimit)
}

func (s *Service) GetSessionLogs(ctx context.Context, id uuid.UUID) ([]database.LogEntry, error) {
	return s.Store.GetSessionLogs(ctx, id)
}

// Wait blocks until every background run has finished.
func (s *Service) Wait() {
	s.workers.Wait()
}

func (s *Service) startWorker(id uuid.UUID, state research.ResearchState) {
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		s.runWorker(id, state)
	}()
}

func (s *Service) runWorker(id uuid.UUID, state research.ResearchState) {
	ctx := context.Background()

	// Configure composer with DB logger
	dbLogger := slog.New(NewDBLogHandler(s.Store, id, s.LogLevel))
	composer := *s.Composer
	composer.Logger = dbLogger

	update, err := composer.Compose(ctx, state)
	if err != nil {
		s.failSession(ctx, dbLogger, id, fmt.Sprintf("Report generation failed: %v", err))
		return
	}

	if err := s.Store.CompleteSession(ctx, id, state.Apply(update)); err != nil {
		dbLogger.Error("Failed to save report to DB", "error", err)
		s.failSession(ctx, dbLogger, id, fmt.Sprintf("Failed to save report: %v", err))
	}
}

func (s *Service) failSession(ctx context.Context, logger *slog.Logger, id uuid.UUID, reason string) {
	logger.Error(reason)
	if err := s.Store.FailSession(ctx, id, reason); err != nil {
		slog.Error("Failed to mark session failed", "session_id", id, "error", err)
	}
}
