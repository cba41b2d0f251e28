// Package snapshot names and orders the timestamped synced-snapshot objects.
package snapshot

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"time"
)

const timeLayout = "20060102_150405"

var keyExpr = regexp.MustCompile(`^vectordata_(\d{8}_\d{6})\.json$`)

// Key builds the object key for a snapshot written at t, e.g.
// tenant/zohodesk-data/synced/vectordata_20240501_120000.json.
func Key(prefix string, t time.Time) string {
	return fmt.Sprintf("%s/synced/vectordata_%s.json", prefix, t.UTC().Format(timeLayout))
}

// Time extracts the timestamp embedded in a snapshot key. The second return
// is false for keys that are not snapshot files.
func Time(key string) (time.Time, bool) {
	match := keyExpr.FindStringSubmatch(path.Base(key))
	if match == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(timeLayout, match[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Latest returns the most recently dated snapshot key, ignoring keys that do
// not follow the snapshot naming scheme.
func Latest(keys []string) (string, bool) {
	var (
		latestKey  string
		latestTime time.Time
		found      bool
	)
	for _, key := range keys {
		t, ok := Time(key)
		if !ok {
			continue
		}
		if !found || t.After(latestTime) {
			latestKey, latestTime, found = key, t, true
		}
	}
	return latestKey, found
}

// Stale returns the snapshot keys beyond the keep most recent ones, oldest
// last. These are the keys the retention pass deletes.
func Stale(keys []string, keep int) []string {
	dated := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := Time(key); ok {
			dated = append(dated, key)
		}
	}

	sort.Slice(dated, func(i, j int) bool {
		ti, _ := Time(dated[i])
		tj, _ := Time(dated[j])
		return ti.After(tj)
	})

	if keep < 0 {
		keep = 0
	}
	if len(dated) <= keep {
		return nil
	}
	return dated[keep:]
}
