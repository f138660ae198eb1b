package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Tekunalogy/company-researcher/pkg/report"
)

// ErrInvalidState is returned when the state lacks what the chosen branch needs.
var ErrInvalidState = errors.New("invalid research state")

// ReportModel is a language model bound to the report schema. Implementations
// send prompt as a single user message and return a report that has already
// passed schema validation, or an error.
type ReportModel interface {
	GenerateReport(ctx context.Context, prompt string) (*report.Report, error)
}

// Composer generates and revises company reports.
type Composer struct {
	Model  ReportModel
	Logger *slog.Logger
}

func NewComposer(model ReportModel) *Composer {
	return &Composer{
		Model:  model,
		Logger: slog.Default(),
	}
}

// Compose runs the report stage for state. A non-blank user prompt revises
// the current report, anything else generates a fresh one. state is not
// modified; the caller merges the returned update.
func (c *Composer) Compose(ctx context.Context, state ResearchState) (StateUpdate, error) {
	return c.Generate(ctx, RequestFromState(state))
}

// Generate runs an explicit InitialRequest or RevisionRequest.
func (c *Composer) Generate(ctx context.Context, req Request) (StateUpdate, error) {
	switch r := req.(type) {
	case InitialRequest:
		return c.generateInitial(ctx, r)
	case RevisionRequest:
		return c.generateRevision(ctx, r)
	default:
		return StateUpdate{}, fmt.Errorf("%w: unsupported request %T", ErrInvalidState, req)
	}
}

func (c *Composer) generateInitial(ctx context.Context, r InitialRequest) (StateUpdate, error) {
	if strings.TrimSpace(r.CompanyURL) == "" {
		return StateUpdate{}, fmt.Errorf("%w: company url is required", ErrInvalidState)
	}
	if len(r.CrawledData) == 0 {
		return StateUpdate{}, fmt.Errorf("%w: crawled data is required", ErrInvalidState)
	}

	data, err := BuildDataBlock(r.CrawledData, r.SearchResults)
	if err != nil {
		return StateUpdate{}, err
	}

	c.logger().Info("Generating initial report", "url", r.CompanyURL, "search_results", len(r.SearchResults))
	text, err := c.invoke(ctx, InitialPrompt(r.CompanyURL, data))
	if err != nil {
		return StateUpdate{}, err
	}

	// A restart discards any earlier history.
	return StateUpdate{
		FinalReport:              text,
		ReportRevisions:          []string{text},
		ReportRevisionsIncrement: 0,
	}, nil
}

func (c *Composer) generateRevision(ctx context.Context, r RevisionRequest) (StateUpdate, error) {
	instructions := strings.TrimSpace(r.Instructions)
	if instructions == "" {
		return StateUpdate{}, fmt.Errorf("%w: revision instructions are required", ErrInvalidState)
	}
	if strings.TrimSpace(r.PriorReport) == "" {
		return StateUpdate{}, fmt.Errorf("%w: a prior report is required to revise", ErrInvalidState)
	}

	data, err := BuildDataBlock(r.CrawledData, r.SearchResults)
	if err != nil {
		return StateUpdate{}, err
	}

	c.logger().Info("Revising report", "url", r.CompanyURL, "prior_revisions", len(r.PriorHistory))
	text, err := c.invoke(ctx, RevisionPrompt(instructions, r.PriorReport, data))
	if err != nil {
		return StateUpdate{}, err
	}

	revisions := make([]string, 0, len(r.PriorHistory)+1)
	revisions = append(revisions, r.PriorHistory...)
	revisions = append(revisions, text)

	return StateUpdate{
		FinalReport:              text,
		ReportRevisions:          revisions,
		ReportRevisionsIncrement: 1,
	}, nil
}

// invoke makes the single model call and serializes the validated report.
// Model errors are returned as they are.
func (c *Composer) invoke(ctx context.Context, prompt string) (string, error) {
	if c.Model == nil {
		return "", errors.New("composer has no report model")
	}

	log := c.logger()
	log.Debug("Report prompt", "length", len(prompt), "prompt", prompt)

	generated, err := c.Model.GenerateReport(ctx, prompt)
	if err != nil {
		log.Error("Report generation failed", "error", err)
		return "", err
	}
	if generated == nil {
		return "", report.ErrEmptyResponse
	}

	text, err := report.Format(generated)
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	log.Info("Report generated", "company", generated.CompanyName, "length", len(text))
	return text, nil
}

func (c *Composer) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
