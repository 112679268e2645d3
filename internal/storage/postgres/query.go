package postgres

import (
	"fmt"
	"strings"

	"logvault/pkg/models"
)

// buildWhere renders the filter as a conjunctive WHERE clause with
// positional arguments. The returned clause is empty when no predicate
// applies.
func buildWhere(filter models.QueryFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf("(message LIKE %s OR service LIKE %s)", p, p))
	}

	if lvl, ok := filter.LevelFilter(); ok {
		conditions = append(conditions, fmt.Sprintf("level = %s", arg(lvl)))
	}

	if svc, ok := filter.ServiceFilter(); ok {
		conditions = append(conditions, fmt.Sprintf("service = %s", arg(svc)))
	}

	if filter.ProjectID != "" {
		conditions = append(conditions, fmt.Sprintf("project_id = %s", arg(filter.ProjectID)))
	}

	if !filter.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("timestamp >= %s", arg(filter.From)))
	}

	if !filter.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("timestamp <= %s", arg(filter.To)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
