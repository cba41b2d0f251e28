// Package enrich derives the auxiliary keywords and combined_text fields
// that are not present in raw source data.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"KBSync/internal/domain"
	"KBSync/internal/ports"
)

// Keywords runs the keyword generator over each record and returns new
// records with the derived list populated. A failed generation is logged and
// leaves that record's keywords empty; the batch always completes.
func Keywords(ctx context.Context, gen ports.KeywordGenerator, records []domain.VectorRecord, logger *slog.Logger) []domain.VectorRecord {
	out := make([]domain.VectorRecord, 0, len(records))
	for _, rec := range records {
		keywords, err := gen.Keywords(ctx, rec.Answer)
		if err != nil {
			if logger != nil {
				logger.Warn("keyword generation failed", "title", rec.Title, "error", err)
			}
			keywords = nil
		}
		rec.Keywords = domain.KeywordList(keywords)
		out = append(out, rec)
	}
	return out
}

// CombinedText populates combined_text on each record from its title and
// keywords. Pure and deterministic.
func CombinedText(records []domain.VectorRecord) []domain.VectorRecord {
	out := make([]domain.VectorRecord, 0, len(records))
	for _, rec := range records {
		rec.CombinedText = combinedText(rec.Title, rec.Keywords)
		out = append(out, rec)
	}
	return out
}

// combinedText lower-cases and space-joins title plus keywords, keeping each
// token's first occurrence only.
func combinedText(title string, keywords []string) string {
	elements := append([]string{title}, keywords...)
	tokens := strings.Fields(strings.ToLower(strings.Join(elements, " ")))

	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		unique = append(unique, token)
	}

	return strings.Join(unique, " ")
}
