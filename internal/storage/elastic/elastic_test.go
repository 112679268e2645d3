package elastic

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logvault/pkg/models"
)

func TestBuildSearchBodyMatchAll(t *testing.T) {
	f := models.QueryFilter{Page: 1, Size: 50}
	body := buildSearchBody(f)

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "match_all")
	assert.Empty(t, boolQuery["filter"])

	assert.Equal(t, 0, body["from"])
	assert.Equal(t, 50, body["size"])
	assert.Equal(t, true, body["track_total_hits"])
}

func TestBuildSearchBodyFuzzySearch(t *testing.T) {
	body := buildSearchBody(models.QueryFilter{Search: "timeout", Page: 1, Size: 10})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)

	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "timeout", multiMatch["query"])
	assert.Equal(t, "AUTO", multiMatch["fuzziness"])
	assert.Contains(t, multiMatch["fields"], "message")
	assert.Contains(t, multiMatch["fields"], "service")
	assert.Contains(t, multiMatch["fields"], "metadata.logger_name")
}

func TestBuildSearchBodyExactFiltersUnscored(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	body := buildSearchBody(models.QueryFilter{
		Level:     "error",
		Service:   "auth",
		ProjectID: "p1",
		From:      from,
		Page:      1,
		Size:      10,
	})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 4)

	terms := map[string]interface{}{}
	var rangeBounds map[string]interface{}
	for _, f := range filters {
		clause := f.(map[string]interface{})
		if term, ok := clause["term"]; ok {
			for field, value := range term.(map[string]interface{}) {
				terms[field] = value
			}
		}
		if rng, ok := clause["range"]; ok {
			rangeBounds = rng.(map[string]interface{})["timestamp"].(map[string]interface{})
		}
	}

	assert.Equal(t, "ERROR", terms["level.keyword"])
	assert.Equal(t, "auth", terms["service.keyword"])
	assert.Equal(t, "p1", terms["project_id.keyword"])
	require.NotNil(t, rangeBounds)
	assert.Equal(t, "2024-03-01T00:00:00Z", rangeBounds["gte"])
	_, hasLte := rangeBounds["lte"]
	assert.False(t, hasLte)
}

func TestBuildSearchBodyAllSentinel(t *testing.T) {
	body := buildSearchBody(models.QueryFilter{Level: "ALL", Service: "ALL", Page: 1, Size: 10})
	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Empty(t, boolQuery["filter"])
}

func TestBuildSearchBodyPagination(t *testing.T) {
	body := buildSearchBody(models.QueryFilter{Page: 3, Size: 25})
	assert.Equal(t, 50, body["from"])
	assert.Equal(t, 25, body["size"])
}

func TestBuildServicesAggBody(t *testing.T) {
	body := buildServicesAggBody()
	assert.Equal(t, 0, body["size"], "no documents should be fetched for the aggregation")

	terms := body["aggs"].(map[string]interface{})["services"].(map[string]interface{})["terms"].(map[string]interface{})
	assert.Equal(t, "service.keyword", terms["field"])
	assert.Equal(t, 1000, terms["size"])
}

func TestParseSearchResponse(t *testing.T) {
	payload := `{
		"hits": {
			"total": {"value": 42, "relation": "eq"},
			"hits": [
				{
					"_id": "abc123",
					"_source": {
						"timestamp": "2024-03-01T10:00:00Z",
						"@timestamp": "2024-03-01T10:00:00Z",
						"level": "ERROR",
						"service": "auth",
						"message": "login failed",
						"metadata": {"host": "node-1"},
						"project_id": "p1"
					}
				}
			]
		}
	}`

	logs, total, err := parseSearchResponse(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.Len(t, logs, 1)

	rec := logs[0]
	assert.Equal(t, "abc123", rec.ID)
	assert.Equal(t, models.LevelError, rec.Level)
	assert.Equal(t, "auth", rec.Service)
	assert.Equal(t, "login failed", rec.Message)
	assert.Equal(t, "p1", rec.ProjectID)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), rec.Timestamp)
	assert.Equal(t, "node-1", rec.Metadata["host"])
}

func TestParseServicesResponse(t *testing.T) {
	payload := `{
		"aggregations": {
			"services": {
				"buckets": [
					{"key": "billing", "doc_count": 10},
					{"key": "auth", "doc_count": 5}
				]
			}
		}
	}`

	services, err := parseServicesResponse(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, []string{"billing", "auth"}, services)
}
