package selector

import (
	"context"
	"fmt"
	"strings"

	"ai-sqlagent-be/internal/pkg/logger"
	"ai-sqlagent-be/pkg/catalog"
	"ai-sqlagent-be/pkg/llm"
)

const rankingPrompt = `Below is the list of tables in the database, one per line as "name: description".

%s

Which tables are needed to answer the question? Reply with the table names only, most relevant first, separated by commas. Use the names exactly as listed. Return at most %d names and nothing else.

Question: %s`

// Ranking asks the model to pick the tables from the full listing.
type Ranking struct {
	llm    llm.LLMProvider
	logger logger.ILogger
}

func NewRanking(provider llm.LLMProvider, log logger.ILogger) *Ranking {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Ranking{llm: provider, logger: log}
}

func (r *Ranking) Select(ctx context.Context, question string, cat *catalog.Catalog, topK int) ([]string, error) {
	topK = clamp(topK)
	if cat == nil {
		return nil, catalog.ErrEmptyCatalog
	}

	prompt := fmt.Sprintf(rankingPrompt, cat.Summary(), topK, question)
	reply, err := r.llm.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("rank tables: %w", err)
	}
	return r.parse(reply, cat, topK), nil
}

// parse keeps known names in reply order, without duplicates, up to topK.
func (r *Ranking) parse(reply string, cat *catalog.Catalog, topK int) []string {
	seen := make(map[string]bool)
	names := make([]string, 0, topK)
	for _, tok := range strings.Split(reply, ",") {
		name := strings.TrimSpace(tok)
		if !cat.Has(name) {
			if unquoted := strings.Trim(name, "`'\""); cat.Has(unquoted) {
				name = unquoted
			}
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if !cat.Has(name) {
			r.logger.Warn("SELECTOR", "Model suggested a table that is not in the catalog", map[string]interface{}{
				"table": name,
			})
			continue
		}
		if len(names) == topK {
			continue
		}
		names = append(names, name)
	}
	return names
}
