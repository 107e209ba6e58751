package querytree

import (
	"context"
	"fmt"
	"log/slog"

	"steptree/internal/domain"
	"steptree/internal/domain/repositories"
	models "steptree/internal/domain/models/querytree"
	repo "steptree/internal/domain/repositories/querytree"
	"steptree/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sourceName = "postgres"

// PostgresStepRepository implements StepSource and StepWriter
type PostgresStepRepository struct {
	pool   *pgxpool.Pool
	txm    *postgres.TransactionManager
	tables *postgres.TableNames
	logger *slog.Logger
}

var (
	_ repo.StepSource = (*PostgresStepRepository)(nil)
	_ repo.StepWriter = (*PostgresStepRepository)(nil)
)

// NewStepRepository creates a new step repository
func NewStepRepository(config *postgres.RepositoryConfig) *PostgresStepRepository {
	return &PostgresStepRepository{
		pool:   config.Pool,
		txm:    postgres.NewTransactionManager(config),
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Name identifies the source
func (r *PostgresStepRepository) Name() string {
	return sourceName
}

// ListStepsExpanded reads steps, substeps and tasks inside one read-only
// repeatable-read transaction so the three result sets are consistent
func (r *PostgresStepRepository) ListStepsExpanded(ctx context.Context) ([]models.Step, error) {
	var steps []models.Step
	var substeps []models.Substep
	var tasks []models.Task

	err := r.txm.ExecSnapshot(ctx, func(ctx context.Context) error {
		executor := postgres.GetExecutor(ctx, r.pool)

		var err error
		if steps, err = r.listSteps(ctx, executor); err != nil {
			return err
		}
		if substeps, err = r.listSubsteps(ctx, executor); err != nil {
			return err
		}
		tasks, err = r.listAllTasks(ctx, executor)
		return err
	})
	if err != nil {
		return nil, r.fetchError("read steps", err)
	}

	result := assemble(steps, substeps, tasks)

	r.logger.Debug("steps read",
		"step_count", len(steps),
		"substep_count", len(substeps),
		"task_count", len(tasks),
	)

	return result, nil
}

// assemble nests substeps under steps and tasks under substeps, keeping row
// order. A child whose parent id occurs more than once attaches to the
// first parent with that id.
func assemble(steps []models.Step, substeps []models.Substep, tasks []models.Task) []models.Step {
	type subKey struct{ step, substep string }

	stepIndex := make(map[string]int, len(steps))
	for i := range steps {
		steps[i].Substeps = []models.Substep{}
		if _, exists := stepIndex[steps[i].ID]; !exists {
			stepIndex[steps[i].ID] = i
		}
	}

	// Substeps first, then tasks, so tasks can be appended in place
	type subPos struct{ step, sub int }
	subIndex := make(map[subKey]subPos, len(substeps))
	for _, sub := range substeps {
		i, ok := stepIndex[sub.StepID]
		if !ok {
			continue // orphan row
		}
		sub.Tasks = []models.Task{}
		steps[i].Substeps = append(steps[i].Substeps, sub)
		key := subKey{sub.StepID, sub.ID}
		if _, exists := subIndex[key]; !exists {
			subIndex[key] = subPos{i, len(steps[i].Substeps) - 1}
		}
	}

	for _, task := range tasks {
		pos, ok := subIndex[subKey{task.Step, task.Substep}]
		if !ok {
			continue
		}
		sub := &steps[pos.step].Substeps[pos.sub]
		sub.Tasks = append(sub.Tasks, task)
	}

	return steps
}

func (r *PostgresStepRepository) listSteps(ctx context.Context, q repositories.DBTX) ([]models.Step, error) {
	query := fmt.Sprintf(`
		SELECT id, description
		FROM %s
		ORDER BY seq
	`, r.tables.Steps)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	steps := []models.Step{}
	for rows.Next() {
		var step models.Step
		if err := rows.Scan(&step.ID, &step.Description); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}

	return steps, nil
}

func (r *PostgresStepRepository) listSubsteps(ctx context.Context, q repositories.DBTX) ([]models.Substep, error) {
	query := fmt.Sprintf(`
		SELECT step_id, id, description
		FROM %s
		ORDER BY seq
	`, r.tables.Substeps)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list substeps: %w", err)
	}
	defer rows.Close()

	substeps := []models.Substep{}
	for rows.Next() {
		var sub models.Substep
		if err := rows.Scan(&sub.StepID, &sub.ID, &sub.Description); err != nil {
			return nil, fmt.Errorf("scan substep: %w", err)
		}
		substeps = append(substeps, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate substeps: %w", err)
	}

	return substeps, nil
}

func (r *PostgresStepRepository) listAllTasks(ctx context.Context, q repositories.DBTX) ([]models.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY seq
	`, taskSelectColumns, r.tables.Tasks)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return scanTasks(rows)
}

// ListTasks reads one substep's tasks with the filter-bar predicates applied
func (r *PostgresStepRepository) ListTasks(ctx context.Context, q *models.TaskQuery) ([]models.Task, error) {
	where, args, err := buildTaskWhere(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY seq
	`, taskSelectColumns, r.tables.Tasks, where)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, r.fetchError("read tasks", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, r.fetchError("read tasks", err)
	}
	return tasks, nil
}

const taskSelectColumns = `step_id, substep_id, id, description, wi_text, wi_id, wi_cd, wi_ct,
		wi_prio, wi_stat, wi_aed, wi_forw_by, screen, magms, mancc, extra`

// scanTasks scans and closes rows
func scanTasks(rows pgx.Rows) ([]models.Task, error) {
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		err := rows.Scan(
			&t.Step,
			&t.Substep,
			&t.Task,
			&t.TaskDescr,
			&t.WiText,
			&t.WiID,
			&t.WiCd,
			&t.WiCt,
			&t.WiPrio,
			&t.WiStat,
			&t.WiAed,
			&t.WiForwBy,
			&t.Screen,
			&t.Magms,
			&t.Mancc,
			&t.Extra,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// ReplaceAll deletes the stored hierarchy and inserts steps in order.
// Run it inside TransactionManager.ExecTx for an all-or-nothing swap.
func (r *PostgresStepRepository) ReplaceAll(ctx context.Context, steps []models.Step) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	for _, table := range []string{r.tables.Tasks, r.tables.Substeps, r.tables.Steps} {
		if _, err := executor.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertStep := fmt.Sprintf(`INSERT INTO %s (id, description) VALUES ($1, $2)`, r.tables.Steps)
	insertSub := fmt.Sprintf(`INSERT INTO %s (step_id, id, description) VALUES ($1, $2, $3)`, r.tables.Substeps)
	insertTask := fmt.Sprintf(`
		INSERT INTO %s (step_id, substep_id, id, description, wi_text, wi_id, wi_cd, wi_ct,
			wi_prio, wi_stat, wi_aed, wi_forw_by, screen, magms, mancc, extra)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, r.tables.Tasks)

	taskCount := 0
	for _, step := range steps {
		if _, err := executor.Exec(ctx, insertStep, step.ID, step.Description); err != nil {
			return fmt.Errorf("insert step %s: %w", step.ID, err)
		}
		for _, sub := range step.Substeps {
			if _, err := executor.Exec(ctx, insertSub, step.ID, sub.ID, sub.Description); err != nil {
				return fmt.Errorf("insert substep %s/%s: %w", step.ID, sub.ID, err)
			}
			for _, t := range sub.Tasks {
				_, err := executor.Exec(ctx, insertTask,
					step.ID, sub.ID, t.Task, t.TaskDescr, t.WiText, t.WiID, t.WiCd, t.WiCt,
					t.WiPrio, t.WiStat, t.WiAed, t.WiForwBy, t.Screen, t.Magms, t.Mancc, t.Extra,
				)
				if err != nil {
					return fmt.Errorf("insert task %s/%s/%s: %w", step.ID, sub.ID, t.Task, err)
				}
				taskCount++
			}
		}
	}

	r.logger.Info("step hierarchy replaced",
		"step_count", len(steps),
		"task_count", taskCount,
	)

	return nil
}

func (r *PostgresStepRepository) fetchError(op string, err error) error {
	if postgres.IsPgUndefinedTableError(err) {
		err = fmt.Errorf("%w (run the seed tool to create the schema)", err)
	}
	return &domain.FetchError{Source: sourceName, Operation: op, Err: err}
}
