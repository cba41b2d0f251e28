package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestKeywordListUnmarshalArray(t *testing.T) {
	t.Parallel()

	var k KeywordList
	if err := json.Unmarshal([]byte(`["password","reset"]`), &k); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if !reflect.DeepEqual(k, KeywordList{"password", "reset"}) {
		t.Fatalf("unexpected keywords: %v", k)
	}
}

func TestKeywordListUnmarshalString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want KeywordList
	}{
		{`"password, reset, account"`, KeywordList{"password", "reset", "account"}},
		{`"password reset"`, KeywordList{"password", "reset"}},
		{`""`, nil},
		{`"  "`, nil},
		{`null`, nil},
	}

	for _, tc := range cases {
		var k KeywordList
		if err := json.Unmarshal([]byte(tc.in), &k); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if !reflect.DeepEqual(k, tc.want) {
			t.Fatalf("input %s: expected %v, got %v", tc.in, tc.want, k)
		}
	}
}

func TestKeywordListMarshalNilAsEmptyArray(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(VectorRecord{Title: "T"})
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}

	keywords, ok := decoded["keywords"].([]any)
	if !ok {
		t.Fatalf("expected keywords to be an array, got %T", decoded["keywords"])
	}
	if len(keywords) != 0 {
		t.Fatalf("expected empty keywords, got %v", keywords)
	}
}
