package clients

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Tekunalogy/company-researcher/pkg/config"
	"github.com/Tekunalogy/company-researcher/pkg/report"
)

// GeminiReportModel calls Gemini with the report response schema attached, so
// the service itself constrains the output shape.
type GeminiReportModel struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiReportModel(ctx context.Context, apiKey, model string, temperature float64) (*GeminiReportModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, config.ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiReportModel{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

func (m *GeminiReportModel) GenerateReport(ctx context.Context, prompt string) (*report.Report, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(m.temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   report.GenAISchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	return report.Decode(responseText(resp))
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
