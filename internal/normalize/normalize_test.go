package normalize

import (
	"reflect"
	"testing"
)

func TestValueNormalizesStrings(t *testing.T) {
	t.Parallel()

	// U+FB01 LATIN SMALL LIGATURE FI and a fullwidth capital A.
	if got := Value("ﬁle"); got != "file" {
		t.Fatalf("expected %q, got %q", "file", got)
	}
	if got := Value("ＡBC"); got != "ABC" {
		t.Fatalf("expected %q, got %q", "ABC", got)
	}
}

func TestValueRecursesToDepth(t *testing.T) {
	t.Parallel()

	nested := map[string]any{
		"a": []any{
			map[string]any{
				"b": []any{
					map[string]any{
						"c": []any{"ﬁve", float64(5), true, nil},
					},
				},
			},
		},
	}

	got := Value(nested)
	want := map[string]any{
		"a": []any{
			map[string]any{
				"b": []any{
					map[string]any{
						"c": []any{"five", float64(5), true, nil},
					},
				},
			},
		},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestValueIdempotent(t *testing.T) {
	t.Parallel()

	input := []any{"ﬁle", map[string]any{"k": "Ａ"}, float64(1)}
	once := Value(input)
	twice := Value(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalization is not idempotent: %v vs %v", once, twice)
	}
}

func TestValueDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := map[string]any{"k": []any{"ﬁ"}}
	Value(input)
	if input["k"].([]any)[0] != "ﬁ" {
		t.Fatalf("input was mutated: %v", input)
	}
}

func TestMarshalJSONNormalizesRecordFields(t *testing.T) {
	t.Parallel()

	data, err := MarshalJSON(map[string]any{"title": "ﬁrst"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := "{\n    \"title\": \"first\"\n}"
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}
}
