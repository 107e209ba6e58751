package querytree

import (
	"fmt"
	"strings"

	models "steptree/internal/domain/models/querytree"
)

// taskColumns maps task wire names to table columns
var taskColumns = map[string]string{
	"Step":      "step_id",
	"Substep":   "substep_id",
	"Task":      "id",
	"TaskDescr": "description",
	"WiText":    "wi_text",
	"WiId":      "wi_id",
	"WiCd":      "wi_cd",
	"WiCt":      "wi_ct",
	"WiPrio":    "wi_prio",
	"WiStat":    "wi_stat",
	"WiAed":     "wi_aed",
	"WiForwBy":  "wi_forw_by",
	"Screen":    "screen",
	"Magms":     "magms",
	"Mancc":     "mancc",
}

// buildTaskWhere renders the WHERE clause and arguments for a task query.
// Column names only ever come from taskColumns; values are always bound.
func buildTaskWhere(query *models.TaskQuery) (string, []interface{}, error) {
	clauses := []string{"step_id = $1", "substep_id = $2"}
	args := []interface{}{query.StepID, query.SubstepID}

	for _, p := range query.Predicates {
		column, ok := taskColumns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("unknown task field %q", p.Field)
		}
		if len(p.Values) == 0 {
			continue
		}

		switch p.Operator {
		case models.OpEQ:
			args = append(args, p.Values[0])
			clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
		case models.OpContains:
			args = append(args, "%"+escapeLike(p.Values[0])+"%")
			clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
		case models.OpIn:
			args = append(args, p.Values)
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", column, len(args)))
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", p.Operator)
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
