package research

import (
	"encoding/json"
	"strings"
)

// ResearchState is the workflow state threaded through the company research
// stages. The report stage reads it and answers with a StateUpdate.
type ResearchState struct {
	UserURL                  string            `json:"userUrl"`
	CrawledData              json.RawMessage   `json:"crawledData,omitempty"`
	FallbackSearchKeyPersons []json.RawMessage `json:"fallbackSearchKeyPersons,omitempty"`
	UserPrompt               string            `json:"userPrompt,omitempty"`
	FinalReport              string            `json:"finalReport,omitempty"`
	ReportRevisions          []string          `json:"reportRevisions,omitempty"`
	ReportRevisionsIncrement int               `json:"reportRevisionsIncrement"`
}

// StateUpdate holds the fields the report stage writes back.
type StateUpdate struct {
	FinalReport              string   `json:"finalReport"`
	ReportRevisions          []string `json:"reportRevisions"`
	ReportRevisionsIncrement int      `json:"reportRevisionsIncrement"`
}

// Apply returns a copy of s with u merged in. The consumed revision prompt is
// cleared so the next run does not replay it.
func (s ResearchState) Apply(u StateUpdate) ResearchState {
	s.FinalReport = u.FinalReport
	s.ReportRevisions = append([]string(nil), u.ReportRevisions...)
	s.ReportRevisionsIncrement = u.ReportRevisionsIncrement
	s.UserPrompt = ""
	return s
}

// Request is either an InitialRequest or a RevisionRequest.
type Request interface {
	isRequest()
}

// InitialRequest asks for a brand new report.
type InitialRequest struct {
	CompanyURL    string
	CrawledData   json.RawMessage
	SearchResults []json.RawMessage
}

// RevisionRequest asks for the previous report to be revised.
type RevisionRequest struct {
	CompanyURL    string
	CrawledData   json.RawMessage
	SearchResults []json.RawMessage
	Instructions  string
	PriorReport   string
	PriorHistory  []string
}

func (InitialRequest) isRequest()  {}
func (RevisionRequest) isRequest() {}

// RequestFromState picks the branch for s. A blank or whitespace-only user
// prompt means no revision was asked for.
func RequestFromState(s ResearchState) Request {
	instructions := strings.TrimSpace(s.UserPrompt)
	if instructions == "" {
		return InitialRequest{
			CompanyURL:    s.UserURL,
			CrawledData:   s.CrawledData,
			SearchResults: s.FallbackSearchKeyPersons,
		}
	}
	return RevisionRequest{
		CompanyURL:    s.UserURL,
		CrawledData:   s.CrawledData,
		SearchResults: s.FallbackSearchKeyPersons,
		Instructions:  instructions,
		PriorReport:   s.FinalReport,
		PriorHistory:  s.ReportRevisions,
	}
}
