package querytree

import (
	"context"
	"fmt"

	"steptree/internal/repository/postgres"
)

// EnsureSchema creates the step, substep and task tables if they are missing.
// seq columns keep rows in insertion order; ids are not unique because the
// upstream system does not guarantee it.
func EnsureSchema(ctx context.Context, config *postgres.RepositoryConfig) error {
	t := config.Tables
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq         BIGSERIAL PRIMARY KEY,
				id          TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT ''
			)`, t.Steps),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq         BIGSERIAL PRIMARY KEY,
				step_id     TEXT NOT NULL,
				id          TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT ''
			)`, t.Substeps),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_step_idx ON %s (step_id, seq)`, t.Substeps, t.Substeps),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				seq         BIGSERIAL PRIMARY KEY,
				step_id     TEXT NOT NULL,
				substep_id  TEXT NOT NULL,
				id          TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				wi_text     TEXT NOT NULL DEFAULT '',
				wi_id       TEXT NOT NULL DEFAULT '',
				wi_cd       TEXT NOT NULL DEFAULT '',
				wi_ct       TEXT NOT NULL DEFAULT '',
				wi_prio     TEXT NOT NULL DEFAULT '',
				wi_stat     TEXT NOT NULL DEFAULT '',
				wi_aed      TEXT NOT NULL DEFAULT '',
				wi_forw_by  TEXT NOT NULL DEFAULT '',
				screen      TEXT NOT NULL DEFAULT '',
				magms       TEXT NOT NULL DEFAULT '',
				mancc       TEXT NOT NULL DEFAULT '',
				extra       JSONB
			)`, t.Tasks),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_substep_idx ON %s (step_id, substep_id, seq)`, t.Tasks, t.Tasks),
	}

	executor := postgres.GetExecutor(ctx, config.Pool)
	for _, stmt := range stmts {
		if _, err := executor.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the tables. Used by the seed tool's --drop-tables flag.
func DropSchema(ctx context.Context, config *postgres.RepositoryConfig) error {
	t := config.Tables
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s, %s, %s`, t.Tasks, t.Substeps, t.Steps)

	executor := postgres.GetExecutor(ctx, config.Pool)
	if _, err := executor.Exec(ctx, query); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}
