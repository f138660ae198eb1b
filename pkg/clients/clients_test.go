package clients

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"

	"github.com/Tekunalogy/company-researcher/pkg/config"
	"github.com/Tekunalogy/company-researcher/pkg/report"
)

const validReport = `{"companyName":"Acme","overview":"Anvils.","marketPositionSummary":"Leader.","mermaidDiagram":"graph TD; A --> B"}`

type scriptedLLM struct {
	content  string
	err      error
	messages []llms.MessageContent
}

func (s *scriptedLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	s.messages = messages
	if s.err != nil {
		return nil, s.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s.content}}}, nil
}

func (s *scriptedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s, prompt, options...)
}

func TestLangchainReportModel(t *testing.T) {
	llm := &scriptedLLM{content: "```json\n" + validReport + "\n```"}
	m := &LangchainReportModel{LLM: llm, Temperature: 0.2}

	r, err := m.GenerateReport(context.Background(), "describe acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", r.CompanyName)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, llm.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, llm.messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "describe acme"}, llm.messages[1].Parts[0])
}

func TestLangchainReportModelErrors(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		m := &LangchainReportModel{LLM: &scriptedLLM{err: boom}}
		_, err := m.GenerateReport(context.Background(), "p")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("schema violation", func(t *testing.T) {
		m := &LangchainReportModel{LLM: &scriptedLLM{content: `{"companyName":"Acme"}`}}
		_, err := m.GenerateReport(context.Background(), "p")
		var ve *report.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("empty content", func(t *testing.T) {
		m := &LangchainReportModel{LLM: &scriptedLLM{content: "  "}}
		_, err := m.GenerateReport(context.Background(), "p")
		assert.ErrorIs(t, err, report.ErrEmptyResponse)
	})
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: `{"companyName":`},
				{Text: `"Acme"}`},
			}},
		}},
	}
	assert.Equal(t, `{"companyName":"Acme"}`, responseText(resp))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", responseText(nil))
}

func TestNewReportModel(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewReportModel(context.Background(), &config.Config{GoogleApiKey: "k", Provider: "openai"})
		assert.ErrorContains(t, err, "unknown llm provider")
	})

	for _, provider := range []config.Provider{config.ProviderGenAI, config.ProviderLangchain} {
		t.Run("blank key "+string(provider), func(t *testing.T) {
			m, err := NewReportModel(context.Background(), &config.Config{GoogleApiKey: " ", Provider: provider})
			assert.ErrorIs(t, err, config.ErrMissingAPIKey)
			assert.Nil(t, m)
		})
	}
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock(` {"a":1} `))
}
