package llm

import (
	"context"
	"fmt"

	"github.com/jobworker/engine/internal/common"
	"github.com/jobworker/engine/internal/storeapi"
	"github.com/ternarybob/arbor"
)

// Factory routes Analyze calls to the backend that serves each tier: Claude
// for expensive, Gemini (cheap/medium model variants) for the rest, keyed
// on tier instead of on a model-name prefix since tiers here are cost
// classes, not caller-specified model strings.
type Factory struct {
	claude *ClaudeProvider
	gemini *GeminiProvider
	cfg    *common.GeminiConfig
	logger arbor.ILogger
}

func NewFactory(ctx context.Context, cfg *common.Config, logger arbor.ILogger, rps float64) (*Factory, error) {
	claude, err := NewClaudeProvider(&cfg.Claude, cfg.ResolveClaudeAPIKey(), logger, rps)
	if err != nil {
		return nil, fmt.Errorf("init claude provider: %w", err)
	}
	gemini, err := NewGeminiProvider(ctx, &cfg.Gemini, cfg.ResolveGeminiAPIKey(), logger, rps)
	if err != nil {
		return nil, fmt.Errorf("init gemini provider: %w", err)
	}
	return &Factory{claude: claude, gemini: gemini, cfg: &cfg.Gemini, logger: logger}, nil
}

var _ storeapi.AIProvider = (*Factory)(nil)

// Analyze implements storeapi.AIProvider, dispatching by tier.
func (f *Factory) Analyze(ctx context.Context, tier storeapi.AITier, prompt string, schemaHint string) (string, error) {
	switch tier {
	case storeapi.TierExpensive:
		return f.claude.Analyze(ctx, prompt, schemaHint)
	case storeapi.TierMedium:
		return f.gemini.AnalyzeWithModel(ctx, f.cfg.MediumModel, prompt, schemaHint)
	case storeapi.TierCheap:
		return f.gemini.AnalyzeWithModel(ctx, f.cfg.CheapModel, prompt, schemaHint)
	default:
		return "", fmt.Errorf("llm factory: unknown tier %q", tier)
	}
}
