package content

import (
	"context"
	"log/slog"

	"github.com/altafino/report-courier/internal/models"
	"github.com/altafino/report-courier/internal/types"
)

// Request carries everything the generator needs for one recipient.
type Request struct {
	Name        string
	Sigla       string
	PrimaryFile string
	Services    []string
}

// Generator produces the outbound email content for a recipient. It
// must not fail: implementations degrade to a deterministic template,
// the orchestrator relies on always getting usable content back.
type Generator interface {
	Generate(ctx context.Context, req Request) models.EmailContent
}

// NewGenerator builds the generator selected by the configuration.
// Unknown or unconfigured backends fall back to the deterministic
// template.
func NewGenerator(cfg *types.Config, logger *slog.Logger) Generator {
	switch cfg.Content.Generator {
	case "openai":
		if cfg.Content.OpenAI.APIKey == "" {
			logger.Warn("openai generator selected without api key, using template")
			return NewTemplateGenerator()
		}
		return NewOpenAIGenerator(cfg, logger)
	default:
		return NewTemplateGenerator()
	}
}
