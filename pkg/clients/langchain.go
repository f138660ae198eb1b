package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/Tekunalogy/company-researcher/pkg/config"
	"github.com/Tekunalogy/company-researcher/pkg/report"
)

const schemaInstruction = "Return the JSON object directly without any formatting or additional text. " +
	"The JSON object must follow this schema and include all required properties:\n"

// LangchainReportModel drives any langchaingo model in JSON mode and enforces
// the report schema on the response.
type LangchainReportModel struct {
	LLM         llms.Model
	Temperature float64
}

func NewLangchainReportModel(ctx context.Context, apiKey, model string, temperature float64) (*LangchainReportModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, config.ErrMissingAPIKey
	}

	// See https://ai.google.dev/gemini-api/docs/models/gemini for possible models
	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to init langchain googleai: %w", err)
	}

	return &LangchainReportModel{LLM: llm, Temperature: temperature}, nil
}

func (m *LangchainReportModel) GenerateReport(ctx context.Context, prompt string) (*report.Report, error) {
	resp, err := m.LLM.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, schemaInstruction+report.JSONSchema),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithJSONMode(), llms.WithTemperature(m.Temperature))
	if err != nil {
		return nil, fmt.Errorf("llm generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, report.ErrEmptyResponse
	}

	return report.Decode(cleanJSONBlock(resp.Choices[0].Content))
}

// cleanJSONBlock removes markdown code block wrappers from JSON
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
