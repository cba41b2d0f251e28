package enrich

import (
	"context"
	"errors"
	"testing"

	"KBSync/internal/domain"
)

type fakeGenerator struct {
	keywords map[string][]string
	err      error
	calls    int
}

func (f *fakeGenerator) Keywords(_ context.Context, content string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.keywords[content], nil
}

func TestCombinedTextDeterminismAndDedup(t *testing.T) {
	t.Parallel()

	records := []domain.VectorRecord{{
		Title:    "Reset Password",
		Keywords: domain.KeywordList{"password", "reset", "account"},
	}}

	got := CombinedText(records)
	if got[0].CombinedText != "reset password account" {
		t.Fatalf("expected %q, got %q", "reset password account", got[0].CombinedText)
	}

	again := CombinedText(records)
	if again[0].CombinedText != got[0].CombinedText {
		t.Fatal("combined text not deterministic")
	}
}

func TestCombinedTextKeepsUnrelatedFields(t *testing.T) {
	t.Parallel()

	records := []domain.VectorRecord{{
		ID:       "7",
		Title:    "FAQ",
		Answer:   "body",
		Keywords: domain.KeywordList{"faq"},
	}}

	got := CombinedText(records)
	if got[0].ID != "7" || got[0].Answer != "body" {
		t.Fatalf("unrelated fields changed: %+v", got[0])
	}
	// Input slice is not mutated.
	if records[0].CombinedText != "" {
		t.Fatal("input record was mutated")
	}
}

func TestKeywordsPopulatesFromGenerator(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{keywords: map[string][]string{
		"How to reset.": {"reset", "password"},
	}}

	records := []domain.VectorRecord{{Title: "Reset", Answer: "How to reset."}}
	got := Keywords(context.Background(), gen, records, nil)

	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if len(got[0].Keywords) != 2 || got[0].Keywords[0] != "reset" {
		t.Fatalf("unexpected keywords: %v", got[0].Keywords)
	}
}

func TestKeywordsFailureKeepsRecordWithEmptyKeywords(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("model unavailable")}
	records := []domain.VectorRecord{
		{Title: "A", Answer: "a"},
		{Title: "B", Answer: "b"},
	}

	got := Keywords(context.Background(), gen, records, nil)
	if len(got) != 2 {
		t.Fatalf("expected both records kept, got %d", len(got))
	}
	for _, rec := range got {
		if len(rec.Keywords) != 0 {
			t.Fatalf("expected empty keywords, got %v", rec.Keywords)
		}
	}
	if gen.calls != 2 {
		t.Fatalf("expected 2 generator calls, got %d", gen.calls)
	}
}

func TestKeywordsThenCombinedTextChain(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{keywords: map[string][]string{
		"body": {"password", "reset", "account"},
	}}

	records := []domain.VectorRecord{{Title: "Reset Password", Answer: "body"}}
	got := CombinedText(Keywords(context.Background(), gen, records, nil))

	// Combined text must reflect the freshly derived keywords.
	if got[0].CombinedText != "reset password account" {
		t.Fatalf("unexpected combined text: %q", got[0].CombinedText)
	}
}
