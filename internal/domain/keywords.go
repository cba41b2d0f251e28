package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// KeywordList is a list of keyword strings. Historical snapshots carried
// keywords either as a JSON array or as a comma/space-joined string; the
// string form is accepted on input and converted, but the list form is the
// only representation written back out.
type KeywordList []string

// UnmarshalJSON accepts null, a JSON string, or a JSON array of strings.
func (k *KeywordList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*k = nil
		return nil
	}

	if trimmed[0] == '"' {
		var joined string
		if err := json.Unmarshal(trimmed, &joined); err != nil {
			return err
		}
		*k = SplitKeywords(joined)
		return nil
	}

	var list []string
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}
	*k = KeywordList(list)
	return nil
}

// MarshalJSON always emits an array; a nil list becomes [].
func (k KeywordList) MarshalJSON() ([]byte, error) {
	if k == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(k))
}

// SplitKeywords tokenizes the delimited-string keyword encoding on commas
// and whitespace, dropping empty tokens.
func SplitKeywords(joined string) KeywordList {
	fields := strings.FieldsFunc(joined, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil
	}
	return KeywordList(fields)
}
