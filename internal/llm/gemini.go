package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/jobworker/engine/internal/common"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiProvider serves the cheap and medium AI tiers.
type GeminiProvider struct {
	client  *genai.Client
	cfg     *common.GeminiConfig
	limiter *rate.Limiter
	retry   RetryConfig
	logger  arbor.ILogger
}

func NewGeminiProvider(ctx context.Context, cfg *common.GeminiConfig, apiKey string, logger arbor.ILogger, rps float64) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: no API key configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if rps <= 0 {
		rps = 2
	}
	return &GeminiProvider{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   DefaultRetryConfig(),
		logger:  logger,
	}, nil
}

// AnalyzeWithModel runs one generation call against the given model, used by
// the factory to route the cheap vs. medium tier to different Gemini models.
func (p *GeminiProvider) AnalyzeWithModel(ctx context.Context, model, prompt, schemaHint string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	config := &genai.GenerateContentConfig{}
	if schemaHint != "" {
		config.SystemInstruction = genai.NewContentFromText(
			"Respond with JSON matching this shape:\n"+schemaHint, genai.RoleUser)
		config.ResponseMIMEType = "application/json"
	}

	var resp *genai.GenerateContentResponse
	var apiErr error
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		resp, apiErr = p.client.Models.GenerateContent(ctx, model, contents, config)
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
		p.logger.Warn().Int("attempt", attempt+1).Dur("backoff", backoff).Err(apiErr).Msg("retrying gemini call")
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return "", fmt.Errorf("gemini call failed after %d retries: %w", p.retry.MaxRetries, apiErr)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty text in response")
	}
	return text, nil
}
