package elastic

import (
	"encoding/json"
	"fmt"
	"io"

	"logvault/pkg/models"
)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value    int    `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		Hits []struct {
			ID     string   `json:"_id"`
			Source document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func parseSearchResponse(body io.Reader) ([]models.LogRecord, int, error) {
	var resp searchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	logs := make([]models.LogRecord, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		rec := models.LogRecord{
			ID:        hit.ID,
			Level:     models.Level(hit.Source.Level),
			Service:   hit.Source.Service,
			Message:   hit.Source.Message,
			Metadata:  hit.Source.Metadata,
			ProjectID: hit.Source.ProjectID,
		}
		if hit.Source.Timestamp != "" {
			ts, err := models.ParseTimestamp(hit.Source.Timestamp)
			if err != nil {
				return nil, 0, fmt.Errorf("document %s carries invalid timestamp: %w", hit.ID, err)
			}
			rec.Timestamp = ts
		}
		logs = append(logs, rec)
	}

	return logs, resp.Hits.Total.Value, nil
}

type servicesResponse struct {
	Aggregations struct {
		Services struct {
			Buckets []struct {
				Key string `json:"key"`
			} `json:"buckets"`
		} `json:"services"`
	} `json:"aggregations"`
}

func parseServicesResponse(body io.Reader) ([]string, error) {
	var resp servicesResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation response: %w", err)
	}

	services := make([]string, 0, len(resp.Aggregations.Services.Buckets))
	for _, bucket := range resp.Aggregations.Services.Buckets {
		services = append(services, bucket.Key)
	}
	return services, nil
}
