package objectstore

import (
	"strings"

	"logvault/pkg/models"
)

// Metadata sidecar keys. The object store canonicalizes user metadata
// header names, so lookups go through metaValue rather than direct map
// access.
const (
	metaLevel   = "level"
	metaService = "service"
	metaProject = "project_id"
)

func metaValue(meta map[string]string, key string) string {
	for k, v := range meta {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// metadataMatches applies the exact predicates against the sidecar
// metadata, deciding whether the object body is worth fetching.
func metadataMatches(meta map[string]string, filter models.QueryFilter) bool {
	if lvl, ok := filter.LevelFilter(); ok && metaValue(meta, metaLevel) != lvl {
		return false
	}
	if svc, ok := filter.ServiceFilter(); ok && metaValue(meta, metaService) != svc {
		return false
	}
	if filter.ProjectID != "" && metaValue(meta, metaProject) != filter.ProjectID {
		return false
	}
	return true
}

// recordMatches applies the predicates that need the decoded record: the
// free-text search and the inclusive time range.
func recordMatches(rec models.LogRecord, filter models.QueryFilter) bool {
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(rec.Message), needle) &&
			!strings.Contains(strings.ToLower(rec.Service), needle) {
			return false
		}
	}
	if !filter.From.IsZero() && rec.Timestamp.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && rec.Timestamp.After(filter.To) {
		return false
	}
	return true
}
