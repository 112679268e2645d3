package objectstore

import (
	"fmt"
	"strings"
	"time"

	"logvault/pkg/models"
)

// Records with no project are grouped under this path segment so the key
// layout stays uniform.
const defaultProjectSegment = "default"

// objectKey lays records out as
// prefix/project/YYYY/MM/DD/HH/YYYYMMDDHHMMSS_service_LEVEL.json so that
// a project plus a day narrows the listing to one subtree.
func objectKey(prefix string, record *models.LogRecord) string {
	project := record.ProjectID
	if project == "" {
		project = defaultProjectSegment
	}

	ts := record.Timestamp.UTC()
	return fmt.Sprintf("%s/%s/%s/%s_%s_%s.json",
		prefix,
		sanitizeSegment(project),
		ts.Format("2006/01/02/15"),
		ts.Format("20060102150405"),
		sanitizeSegment(record.Service),
		record.Level,
	)
}

// sanitizeSegment keeps caller-supplied values from injecting extra path
// levels into the key.
func sanitizeSegment(s string) string {
	return strings.ReplaceAll(s, "/", "-")
}

// listPrefix picks the narrowest listing prefix the filter allows: project
// plus calendar day when the time range stays within one day, project
// alone otherwise, and the bare root when no project is given.
func (s *Store) listPrefix(filter models.QueryFilter) string {
	base := s.prefix + "/"

	project, ok := projectSegment(filter)
	if !ok {
		return base
	}
	base += sanitizeSegment(project) + "/"

	if !filter.From.IsZero() && !filter.To.IsZero() {
		from := filter.From.UTC()
		to := filter.To.UTC()
		if from.Format("2006/01/02") == to.Format("2006/01/02") {
			base += from.Format("2006/01/02") + "/"
		}
	}
	return base
}

func projectSegment(filter models.QueryFilter) (string, bool) {
	if filter.ProjectID == "" {
		return "", false
	}
	return filter.ProjectID, true
}

// timestampFromKey recovers the record timestamp from the object name, so
// listings can be pre-filtered without fetching each object.
func timestampFromKey(key string) (time.Time, bool) {
	name := key
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if len(name) < 14 {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation("20060102150405", name[:14], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
