package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"snapshop-be/internal/constant"
	"snapshop-be/internal/model"
	"snapshop-be/internal/pkg/logger"
	"snapshop-be/pkg/llm"
)

// mergedPoolCap bounds the hit listing sent to the model.
const mergedPoolCap = 30

// rankMaxTokens caps the model's output. The expected payload is a short JSON
// object of at most 5 links; anything longer is the model rambling.
const rankMaxTokens = 512

// Ranker issues the per-candidate LLM ranking call and enforces that every
// returned link came from the submitted pool.
type Ranker struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   logger.ILogger
}

func NewRanker(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Ranker {
	return &Ranker{
		provider: provider,
		timeout:  timeout,
		logger:   log,
	}
}

type rankSelection struct {
	Links []string `json:"links"`
}

type fallbackSelection struct {
	Category string   `json:"category"`
	Links    []string `json:"links"`
}

// Rank sends the merged pool plus item context to the model and returns the
// ordered picks, restricted to the submitted pool. A parse failure or an
// empty pick list is an error; the caller falls back to raw hits.
func (r *Ranker) Rank(ctx context.Context, item *ItemContext, validator *Validator) ([]string, error) {
	if len(item.Merged) == 0 {
		return nil, fmt.Errorf("empty pool for item %s", item.Candidate.ItemKey)
	}

	subtypeLine := ""
	if item.Subtype != nil {
		subtypeLine = fmt.Sprintf("\n- Sub-type: %s", item.Subtype.Name)
	}
	descriptionLine := ""
	if item.Candidate.Description != "" {
		descriptionLine = fmt.Sprintf("\n- Description: %s", item.Candidate.Description)
	}

	prompt := fmt.Sprintf(
		constant.RankPromptTemplate,
		item.Candidate.MappedCategory,
		subtypeLine,
		descriptionLine,
		formatHitListing(item.Merged),
		strings.Join(validator.BlockedDomains, ", "),
		strings.Join(validator.DomesticDomains, ", "),
	)

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.provider.Generate(callCtx, prompt, llm.WithTemperature(0.1), llm.WithMaxTokens(rankMaxTokens))
	if err != nil {
		return nil, fmt.Errorf("rank call failed: %w", err)
	}

	var selection rankSelection
	if err := parseStructuredResponse(raw, &selection); err != nil {
		return nil, fmt.Errorf("rank response not parseable: %w", err)
	}

	picks := make([]string, 0, len(selection.Links))
	for _, link := range selection.Links {
		if !item.PoolContains(link) {
			r.logger.Warn("rank", "model returned link outside submitted pool", map[string]interface{}{
				"item_key": item.Candidate.ItemKey,
				"link":     link,
			})
			continue
		}
		picks = append(picks, link)
	}

	if len(picks) == 0 {
		return nil, fmt.Errorf("rank returned zero usable links")
	}
	return picks, nil
}

// RankFallback runs the single whole-photo call that both infers a category
// and picks links. Used only when the scorer produced zero candidates.
func (r *Ranker) RankFallback(ctx context.Context, pool []model.RetrievalHit, validator *Validator) (string, []string, error) {
	if len(pool) == 0 {
		return "", nil, fmt.Errorf("empty whole-photo pool")
	}

	prompt := fmt.Sprintf(
		constant.FallbackPromptTemplate,
		formatHitListing(pool),
		strings.Join(validator.BlockedDomains, ", "),
	)

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.provider.Generate(callCtx, prompt, llm.WithTemperature(0.1), llm.WithMaxTokens(rankMaxTokens))
	if err != nil {
		return "", nil, fmt.Errorf("fallback call failed: %w", err)
	}

	var selection fallbackSelection
	if err := parseStructuredResponse(raw, &selection); err != nil {
		return "", nil, fmt.Errorf("fallback response not parseable: %w", err)
	}

	allowed := make(map[string]bool, len(pool))
	for _, hit := range pool {
		allowed[hit.Link] = true
	}
	picks := make([]string, 0, len(selection.Links))
	for _, link := range selection.Links {
		if !allowed[link] {
			continue
		}
		picks = append(picks, link)
	}

	if len(picks) == 0 {
		return "", nil, fmt.Errorf("fallback returned zero usable links")
	}
	return selection.Category, picks, nil
}

// formatHitListing renders the pool as a numbered listing for the prompt.
func formatHitListing(pool []model.RetrievalHit) string {
	var sb strings.Builder
	for i, hit := range pool {
		title := hit.Title
		if title == "" {
			title = "(no title)"
		}
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, title, hit.Link)
	}
	return sb.String()
}

// parseStructuredResponse extracts the JSON payload from a model response,
// tolerating markdown fences and prose around the object. An unparseable
// response is never trusted as success.
func parseStructuredResponse(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	// The model may wrap the object in prose; take the outermost braces.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in response: %q", truncateForLog(raw, 200))
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err != nil {
		return fmt.Errorf("parse error: %w | raw: %s", err, truncateForLog(raw, 200))
	}
	return nil
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
