package snapshot

import (
	"reflect"
	"testing"
	"time"
)

func TestKeyFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got := Key("acme/zohodesk-data", at)
	want := "acme/zohodesk-data/synced/vectordata_20240501_120000.json"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestTimeRejectsForeignKeys(t *testing.T) {
	t.Parallel()

	if _, ok := Time("acme/zohodesk-data/synced/vectordata_20240501_120000.json"); !ok {
		t.Fatal("expected snapshot key to parse")
	}
	for _, key := range []string{
		"acme/zohodesk-data/synced/other.json",
		"acme/zohodesk-data/synced/vectordata_2024.json",
		"acme/zohodesk-data/02_converted_zohodata.json",
	} {
		if _, ok := Time(key); ok {
			t.Fatalf("expected %s to be rejected", key)
		}
	}
}

func TestLatest(t *testing.T) {
	t.Parallel()

	keys := []string{
		"p/synced/vectordata_20240101_000000.json",
		"p/synced/vectordata_20240601_000000.json",
		"p/synced/unrelated.txt",
		"p/synced/vectordata_20240301_000000.json",
	}

	latest, ok := Latest(keys)
	if !ok || latest != "p/synced/vectordata_20240601_000000.json" {
		t.Fatalf("unexpected latest: %s (ok=%v)", latest, ok)
	}

	if _, ok := Latest([]string{"p/synced/unrelated.txt"}); ok {
		t.Fatal("expected no latest among foreign keys")
	}
}

func TestStaleKeepsThreeNewest(t *testing.T) {
	t.Parallel()

	keys := []string{
		"p/synced/vectordata_20240101_000000.json",
		"p/synced/vectordata_20240201_000000.json",
		"p/synced/vectordata_20240301_000000.json",
		"p/synced/vectordata_20240401_000000.json",
		"p/synced/unrelated.txt",
	}

	got := Stale(keys, 3)
	want := []string{"p/synced/vectordata_20240101_000000.json"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := Stale(keys[:3], 3); got != nil {
		t.Fatalf("expected nothing stale, got %v", got)
	}
}
