package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"logvault/pkg/models"
)

func TestBuildWhereEmptyFilter(t *testing.T) {
	where, args := buildWhere(models.QueryFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhereSearch(t *testing.T) {
	where, args := buildWhere(models.QueryFilter{Search: "timeout"})
	assert.Equal(t, " WHERE (message LIKE $1 OR service LIKE $1)", where)
	assert.Equal(t, []interface{}{"%timeout%"}, args)
}

func TestBuildWhereAllPredicates(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	where, args := buildWhere(models.QueryFilter{
		Search:    "disk",
		Level:     "error",
		Service:   "auth",
		ProjectID: "p1",
		From:      from,
		To:        to,
	})

	assert.Equal(t,
		" WHERE (message LIKE $1 OR service LIKE $1) AND level = $2 AND service = $3 AND project_id = $4 AND timestamp >= $5 AND timestamp <= $6",
		where)
	assert.Equal(t, []interface{}{"%disk%", "ERROR", "auth", "p1", from, to}, args)
}

func TestBuildWhereAllSentinelSkipsPredicate(t *testing.T) {
	where, args := buildWhere(models.QueryFilter{Level: "ALL", Service: "ALL"})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhereLevelUpperCased(t *testing.T) {
	_, args := buildWhere(models.QueryFilter{Level: "critical"})
	assert.Equal(t, []interface{}{"CRITICAL"}, args)
}
