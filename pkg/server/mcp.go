package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Tekunalogy/company-researcher/pkg/research"
)

type GenerateReportArgs struct {
	CompanyURL               string `json:"company_url" jsonschema:"URL of the company being researched"`
	CrawledData              any    `json:"crawled_data" jsonschema:"structured data extracted from the company website"`
	FallbackSearchKeyPersons []any  `json:"fallback_search_key_persons,omitempty" jsonschema:"supplementary web search results about key persons"`
}

type ReviseReportArgs struct {
	CompanyURL               string   `json:"company_url,omitempty" jsonschema:"URL of the company being researched"`
	CrawledData              any      `json:"crawled_data" jsonschema:"structured data extracted from the company website"`
	FallbackSearchKeyPersons []any    `json:"fallback_search_key_persons,omitempty" jsonschema:"supplementary web search results about key persons"`
	Instructions             string   `json:"instructions" jsonschema:"free-text revision instructions"`
	PriorReport              string   `json:"prior_report" jsonschema:"the report to revise, as returned by a previous call"`
	ReportRevisions          []string `json:"report_revisions,omitempty" jsonschema:"every report version produced so far, oldest first"`
}

// ReportTools exposes the composer as stateless MCP tools.
type ReportTools struct {
	Composer *research.Composer
}

func (t *ReportTools) GenerateReport(ctx context.Context, _ *mcp.CallToolRequest, args GenerateReportArgs) (*mcp.CallToolResult, research.StateUpdate, error) {
	crawled, results, err := rawData(args.CrawledData, args.FallbackSearchKeyPersons)
	if err != nil {
		return nil, research.StateUpdate{}, err
	}

	update, err := t.Composer.Generate(ctx, research.InitialRequest{
		CompanyURL:    args.CompanyURL,
		CrawledData:   crawled,
		SearchResults: results,
	})
	return nil, update, err
}

func (t *ReportTools) ReviseReport(ctx context.Context, _ *mcp.CallToolRequest, args ReviseReportArgs) (*mcp.CallToolResult, research.StateUpdate, error) {
	crawled, results, err := rawData(args.CrawledData, args.FallbackSearchKeyPersons)
	if err != nil {
		return nil, research.StateUpdate{}, err
	}

	update, err := t.Composer.Generate(ctx, research.RevisionRequest{
		CompanyURL:    args.CompanyURL,
		CrawledData:   crawled,
		SearchResults: results,
		Instructions:  args.Instructions,
		PriorReport:   args.PriorReport,
		PriorHistory:  args.ReportRevisions,
	})
	return nil, update, err
}

func rawData(crawled any, results []any) (json.RawMessage, []json.RawMessage, error) {
	var crawledRaw json.RawMessage
	if crawled != nil {
		b, err := json.Marshal(crawled)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid crawled_data: %w", err)
		}
		crawledRaw = b
	}

	resultsRaw := make([]json.RawMessage, 0, len(results))
	for i, r := range results {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid fallback_search_key_persons[%d]: %w", i, err)
		}
		resultsRaw = append(resultsRaw, b)
	}
	return crawledRaw, resultsRaw, nil
}

// NewMCPServer registers the report tools on a new MCP server.
func NewMCPServer(composer *research.Composer) *mcp.Server {
	tools := &ReportTools{Composer: composer}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "company-research-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_report",
		Description: "Generate a structured market-research report for a company from its crawled website data.",
	}, tools.GenerateReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "revise_report",
		Description: "Revise a previously generated company report according to free-text instructions.",
	}, tools.ReviseReport)

	return server
}

// NewMCPHandler serves the report tools over streamable HTTP.
func NewMCPHandler(composer *research.Composer) http.Handler {
	server := NewMCPServer(composer)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
