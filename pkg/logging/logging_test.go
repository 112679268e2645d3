package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextFieldRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRecordID(ctx))
	assert.Empty(t, GetBackend(ctx))
	assert.Empty(t, GetServiceName(ctx))

	ctx = WithRecordID(ctx, "rec-1")
	ctx = WithBackend(ctx, "postgres")
	ctx = WithServiceName(ctx, "storage-consumer")

	assert.Equal(t, "rec-1", GetRecordID(ctx))
	assert.Equal(t, "postgres", GetBackend(ctx))
	assert.Equal(t, "storage-consumer", GetServiceName(ctx))
}

func TestGetLogFieldsSkipsUnsetKeys(t *testing.T) {
	ctx := WithRecordID(context.Background(), "rec-1")

	fields := GetLogFields(ctx)
	assert.Equal(t, []interface{}{"record_id", "rec-1"}, fields)

	assert.Empty(t, GetLogFields(context.Background()))
}

func TestEarlyLogRoutesByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	l := &EarlyLog{out: &out, err: &errOut}

	l.Info("loaded %s", "config.yaml")
	l.Warn("slow start")
	l.Error("bad config: %d errors", 2)

	assert.Equal(t, "INFO: loaded config.yaml\n", out.String())
	assert.Contains(t, errOut.String(), "WARN: slow start\n")
	assert.Contains(t, errOut.String(), "ERROR: bad config: 2 errors\n")
}
