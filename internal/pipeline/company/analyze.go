package company

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jobworker/engine/internal/errkind"
	"github.com/jobworker/engine/internal/models"
	"github.com/jobworker/engine/internal/storeapi"
)

const analysisSchemaHint = `{"about":"string","culture":"string","mission":"string","size":"string","industry":"string","founded":"string","hq_location":"string","tech_stack":["string"],"job_board_hint_url":"string"}`

// analysis is the emitted pipeline_state["analysis"] payload.
type analysis struct {
	About           string   `json:"about"`
	Culture         string   `json:"culture"`
	Mission         string   `json:"mission"`
	Size            string   `json:"size"`
	Industry        string   `json:"industry"`
	Founded         string   `json:"founded"`
	HQLocation      string   `json:"hq_location"`
	TechStack       []string `json:"tech_stack"`
	JobBoardHintURL string   `json:"job_board_hint_url"`
	Heuristic       bool     `json:"heuristic"`
}

var knownTech = []string{
	"go", "golang", "python", "java", "kotlin", "rust", "typescript", "javascript",
	"react", "kubernetes", "docker", "aws", "gcp", "azure", "postgres", "mysql",
	"terraform", "graphql", "node.js",
}

var boardHintPattern = regexp.MustCompile(`(?i)(https?://(?:boards\.greenhouse\.io|[a-z0-9_-]+\.myworkdayjobs\.com)[^\s"']*)`)

var hqLocationPattern = regexp.MustCompile(`(?i)(?:headquartered|based|located) in ([A-Z][A-Za-z.\-]*(?:,? [A-Z][A-Za-z.\-]*){0,3})`)

// Analyze extracts structured company signal from the cleaned text via the
// AI provider, falling back to a keyword heuristic when the provider errors
// or is unavailable.
func (d *Deps) Analyze(ctx context.Context, item *models.WorkItem) error {
	var text string
	if err := item.PipelineState.Get(models.KeyExtracted, &text); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("read extracted: %w", err))
	}

	result, err := d.analyzeWithAI(ctx, text)
	if err != nil {
		d.Logger.Warn().Err(err).Str("item_id", item.ID).Msg("company AI analysis unavailable, falling back to heuristic")
		result = heuristicAnalyze(text)
	}

	if err := item.PipelineState.Set(models.KeyAnalysis, result); err != nil {
		return errkind.Wrap(errkind.InvariantViolation, fmt.Errorf("store analysis: %w", err))
	}
	return nil
}

func (d *Deps) analyzeWithAI(ctx context.Context, text string) (analysis, error) {
	prompt := "Extract company facts from this text:\n\n" + text
	raw, err := d.AI.Analyze(ctx, storeapi.TierCheap, prompt, analysisSchemaHint)
	if err != nil {
		return analysis{}, err
	}
	var result analysis
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return analysis{}, fmt.Errorf("parse analysis response: %w", err)
	}
	return result, nil
}

func heuristicAnalyze(text string) analysis {
	lower := strings.ToLower(text)

	var tech []string
	for _, t := range knownTech {
		if strings.Contains(lower, t) {
			tech = append(tech, t)
		}
	}

	hint := boardHintPattern.FindString(text)

	hq := ""
	if m := hqLocationPattern.FindStringSubmatch(text); m != nil {
		hq = strings.TrimSpace(m[1])
	}

	return analysis{
		About:           firstSentence(text),
		TechStack:       tech,
		HQLocation:      hq,
		JobBoardHintURL: hint,
		Heuristic:       true,
	}
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, ".\n"); idx > 0 {
		return text[:idx]
	}
	if len(text) > 280 {
		return text[:280]
	}
	return text
}
