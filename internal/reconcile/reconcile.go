// Package reconcile merges a freshly fetched knowledge-base snapshot with
// the previously synced vector snapshot, keyed by title.
package reconcile

import (
	"strings"
	"time"

	"KBSync/internal/domain"
)

// publishedStatus is the only latestVersionStatus admitted into a synced
// snapshot.
const publishedStatus = "Published"

// Records with a missing or unparsable modification time sort before
// everything real.
var epoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Merge reconciles fresh source records against the previous synced
// snapshot. Fresh records failing the publish/trash/permission filter are
// dropped. For a title present on both sides the record with the later
// zd modification time survives; ties keep the previously synced record.
// Previous records without a fresh counterpart are dropped: the source
// system is authoritative and deletions propagate by omission.
func Merge(fresh, previous []domain.VectorRecord, requiredPermission string) []domain.VectorRecord {
	prevByTitle := make(map[string]domain.VectorRecord, len(previous))
	for _, rec := range previous {
		// Duplicate titles: last write wins, a documented ambiguity of
		// the title key.
		prevByTitle[rec.Title] = rec
	}

	out := make([]domain.VectorRecord, 0, len(fresh))
	for _, rec := range fresh {
		if !Publishable(rec, requiredPermission) {
			continue
		}

		prev, ok := prevByTitle[rec.Title]
		if !ok {
			out = append(out, rec)
			continue
		}

		if ModifiedTime(rec).After(ModifiedTime(prev)) {
			out = append(out, rec)
		} else {
			out = append(out, prev)
		}
	}
	return out
}

// Publishable reports whether a record may enter the synced snapshot: its
// latest version is published, it is not trashed, and its permission matches
// the configured requirement.
func Publishable(rec domain.VectorRecord, requiredPermission string) bool {
	zd := rec.Metadata.ZDMetadata
	return zd.LatestVersionStatus == publishedStatus &&
		!zd.IsTrashed &&
		zd.Permission == requiredPermission
}

// ModifiedTime parses the record's zd modification timestamp (ISO-8601 with
// a trailing Z that is stripped before parsing). Missing or malformed values
// fall back to 1900-01-01.
func ModifiedTime(rec domain.VectorRecord) time.Time {
	raw := strings.TrimSuffix(rec.Metadata.ZDMetadata.ModifiedTime, "Z")
	if raw == "" {
		return epoch
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return epoch
}
