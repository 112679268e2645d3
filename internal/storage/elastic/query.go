package elastic

import (
	"time"

	"logvault/internal/constants"
	"logvault/pkg/models"
)

// Metadata sub-fields included in the fuzzy multi-field search, mirroring
// the structured context the log client attaches to records.
var searchFields = []string{
	"message",
	"service",
	"metadata.logger_name",
	"metadata.pathname",
	"metadata.func_name",
	"metadata.file_name",
	"metadata.module",
}

// buildSearchBody renders the filter as a bool query: the free-text search
// is scored in the must clause, exact predicates go unscored into the
// filter clause. track_total_hits keeps the reported total exact even past
// the engine's default counting threshold.
func buildSearchBody(filter models.QueryFilter) map[string]interface{} {
	var must []interface{}
	var filters []interface{}

	if filter.Search != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     filter.Search,
				"fields":    searchFields,
				"fuzziness": "AUTO",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	if lvl, ok := filter.LevelFilter(); ok {
		filters = append(filters, term("level.keyword", lvl))
	}
	if svc, ok := filter.ServiceFilter(); ok {
		filters = append(filters, term("service.keyword", svc))
	}
	if filter.ProjectID != "" {
		filters = append(filters, term("project_id.keyword", filter.ProjectID))
	}

	if !filter.From.IsZero() || !filter.To.IsZero() {
		bounds := map[string]interface{}{}
		if !filter.From.IsZero() {
			bounds["gte"] = filter.From.UTC().Format(time.RFC3339Nano)
		}
		if !filter.To.IsZero() {
			bounds["lte"] = filter.To.UTC().Format(time.RFC3339Nano)
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"timestamp": bounds},
		})
	}

	query := map[string]interface{}{
		"bool": map[string]interface{}{
			"must":   must,
			"filter": filters,
		},
	}

	return map[string]interface{}{
		"query": query,
		"sort": []interface{}{
			map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}},
		},
		"from":             filter.Offset(),
		"size":             filter.Size,
		"track_total_hits": true,
	}
}

func term(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}

// buildServicesAggBody is a zero-size search carrying only the terms
// aggregation over the raw service field, so no documents are fetched just
// to be discarded.
func buildServicesAggBody() map[string]interface{} {
	return map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			"services": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "service.keyword",
					"size":  constants.UniqueServicesLimit,
				},
			},
		},
	}
}
