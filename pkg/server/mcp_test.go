package server

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tekunalogy/company-researcher/pkg/research"
)

func newTestTools() (*ReportTools, *stubModel) {
	model := &stubModel{}
	composer := research.NewComposer(model)
	composer.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return &ReportTools{Composer: composer}, model
}

func TestGenerateReportTool(t *testing.T) {
	tools, model := newTestTools()

	_, update, err := tools.GenerateReport(context.Background(), nil, GenerateReportArgs{
		CompanyURL:               "https://acme.example",
		CrawledData:              map[string]any{"name": "Acme"},
		FallbackSearchKeyPersons: []any{map[string]any{"person": "Road Runner"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, update.ReportRevisionsIncrement)
	assert.Equal(t, []string{update.FinalReport}, update.ReportRevisions)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], `"name": "Acme"`)
	assert.Contains(t, model.prompts[0], `"person": "Road Runner"`)
}

func TestReviseReportTool(t *testing.T) {
	tools, model := newTestTools()

	_, update, err := tools.ReviseReport(context.Background(), nil, ReviseReportArgs{
		CrawledData:     map[string]any{"name": "Acme"},
		Instructions:    "add competitors",
		PriorReport:     "prior report",
		ReportRevisions: []string{"prior report"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, update.ReportRevisionsIncrement)
	require.Len(t, update.ReportRevisions, 2)
	assert.Equal(t, "prior report", update.ReportRevisions[0])
	assert.Contains(t, model.prompts[0], "add competitors")
}

func TestGenerateReportToolRequiresData(t *testing.T) {
	tools, model := newTestTools()

	_, _, err := tools.GenerateReport(context.Background(), nil, GenerateReportArgs{
		CompanyURL: "https://acme.example",
	})
	assert.ErrorIs(t, err, research.ErrInvalidState)
	assert.Zero(t, model.calls)
}

func TestNewMCPServer(t *testing.T) {
	tools, _ := newTestTools()
	assert.NotNil(t, NewMCPServer(tools.Composer))
	assert.NotNil(t, NewMCPHandler(tools.Composer))
}
