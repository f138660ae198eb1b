package clients

import (
	"context"
	"fmt"

	"github.com/Tekunalogy/company-researcher/pkg/config"
	"github.com/Tekunalogy/company-researcher/pkg/research"
)

// NewReportModel builds the report model for the configured provider.
func NewReportModel(ctx context.Context, cfg *config.Config) (research.ReportModel, error) {
	var (
		model research.ReportModel
		err   error
	)

	switch cfg.Provider {
	case config.ProviderGenAI, "":
		model, err = NewGeminiReportModel(ctx, cfg.GoogleApiKey, cfg.ReportModel, cfg.Temperature)
	case config.ProviderLangchain:
		model, err = NewLangchainReportModel(ctx, cfg.GoogleApiKey, cfg.ReportModel, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return model, nil
}
