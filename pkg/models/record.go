package models

import (
	"fmt"
	"strings"
	"time"
)

// Level is the severity of a log record. Input is case-insensitive;
// records are stored with the upper-cased form.
type Level string

const (
	LevelDebug    Level = "DEBUG"
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

// LevelAll is the filter sentinel that matches every level.
const LevelAll = "ALL"

var validLevels = map[Level]struct{}{
	LevelDebug:    {},
	LevelInfo:     {},
	LevelWarning:  {},
	LevelError:    {},
	LevelCritical: {},
}

func ParseLevel(s string) (Level, error) {
	lvl := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := validLevels[lvl]; !ok {
		return "", fmt.Errorf("invalid level %q, must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL", s)
	}
	return lvl, nil
}

// LogRecord is the unit flowing through the whole pipeline: produced at the
// ingest boundary, carried through Kafka and persisted by a storage backend.
// ID is assigned by the backend at write time, never by the client.
type LogRecord struct {
	ID        string         `json:"id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Service   string         `json:"service"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ProjectID string         `json:"project_id"`
}

const maxServiceLen = 100

// Validate reports whether the record is acceptable at the ingest boundary.
// It does not mutate the record; call Normalize before persisting.
func (r *LogRecord) Validate() error {
	if r.Message == "" {
		return fmt.Errorf("message is required")
	}
	if r.Service == "" {
		return fmt.Errorf("service is required")
	}
	if len(r.Service) > maxServiceLen {
		return fmt.Errorf("service exceeds %d characters", maxServiceLen)
	}
	if r.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if r.Level != "" {
		if _, err := ParseLevel(string(r.Level)); err != nil {
			return err
		}
	}
	return nil
}

// Normalize upper-cases the level (defaulting to INFO), fills a missing
// timestamp with the current UTC time and converts a present one to UTC.
func (r *LogRecord) Normalize() {
	if r.Level == "" {
		r.Level = LevelInfo
	} else {
		r.Level = Level(strings.ToUpper(string(r.Level)))
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	} else {
		r.Timestamp = r.Timestamp.UTC()
	}
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
}

// timestamp layouts accepted on the wire, tried in order. The bare layout
// (no zone) is interpreted as UTC, matching the 'Z'-suffix convention.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses an ISO-8601 instant. A trailing 'Z' is treated as
// the UTC offset; a timestamp without zone information is assumed UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected ISO 8601", s)
}
