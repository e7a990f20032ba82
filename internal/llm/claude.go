package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jobworker/engine/internal/common"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// ClaudeProvider serves the expensive AI tier.
type ClaudeProvider struct {
	client  anthropic.Client
	cfg     *common.ClaudeConfig
	limiter *rate.Limiter
	retry   RetryConfig
	logger  arbor.ILogger
}

func NewClaudeProvider(cfg *common.ClaudeConfig, apiKey string, logger arbor.ILogger, rps float64) (*ClaudeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("claude: no API key configured")
	}
	if rps <= 0 {
		rps = 1
	}
	return &ClaudeProvider{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   DefaultRetryConfig(),
		logger:  logger,
	}, nil
}

// Analyze implements storeapi.AIProvider. schemaHint, if non-empty, is
// appended as a structural instruction; Claude has no native JSON-schema
// enforcement in this SDK surface so callers must tolerate a post-parse step.
func (p *ClaudeProvider) Analyze(ctx context.Context, prompt string, schemaHint string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	fullPrompt := prompt
	if schemaHint != "" {
		fullPrompt = prompt + "\n\nRespond with JSON matching this shape:\n" + schemaHint
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: int64(p.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fullPrompt)),
		},
	}

	var resp *anthropic.Message
	var apiErr error
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		resp, apiErr = p.client.Messages.New(callCtx, params)
		cancel()
		if apiErr == nil {
			break
		}
		if attempt == p.retry.MaxRetries {
			break
		}
		backoff := 2 * time.Second * time.Duration(attempt+1)
		if IsRateLimitError(apiErr) {
			backoff = p.retry.Backoff(attempt, ExtractRetryDelay(apiErr))
		}
		p.logger.Warn().Int("attempt", attempt+1).Dur("backoff", backoff).Err(apiErr).Msg("retrying claude call")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return "", fmt.Errorf("claude call failed after %d retries: %w", p.retry.MaxRetries, apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("claude: empty response")
	}
	return text.String(), nil
}
