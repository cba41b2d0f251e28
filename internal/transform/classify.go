package transform

import (
	"strings"

	"KBSync/internal/domain"
)

// Buckets holds the four disjoint partitions of a snapshot by enrichment
// state. Every input record lands in exactly one bucket; relative input
// order is preserved within each.
type Buckets struct {
	WithBoth     []domain.VectorRecord
	KeywordsOnly []domain.VectorRecord
	CombinedOnly []domain.VectorRecord
	Neither      []domain.VectorRecord
}

// Total reports the summed size of all four buckets.
func (b Buckets) Total() int {
	return len(b.WithBoth) + len(b.KeywordsOnly) + len(b.CombinedOnly) + len(b.Neither)
}

// Split partitions records by presence of keywords and combined text.
func Split(records []domain.VectorRecord) Buckets {
	var buckets Buckets
	for _, rec := range records {
		hasKeywords := HasKeywords(rec.Keywords)
		hasCombined := strings.TrimSpace(rec.CombinedText) != ""

		switch {
		case hasKeywords && hasCombined:
			buckets.WithBoth = append(buckets.WithBoth, rec)
		case hasKeywords:
			buckets.KeywordsOnly = append(buckets.KeywordsOnly, rec)
		case hasCombined:
			buckets.CombinedOnly = append(buckets.CombinedOnly, rec)
		default:
			buckets.Neither = append(buckets.Neither, rec)
		}
	}
	return buckets
}

// HasKeywords reports whether the list contains at least one non-blank
// keyword.
func HasKeywords(keywords domain.KeywordList) bool {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}
