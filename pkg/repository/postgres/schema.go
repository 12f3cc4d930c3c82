package postgres

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Migrate creates the schema, tables and indexes when they do not exist
func (p *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements(p.schema) {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to apply schema", goerr.V("schema", p.schema))
		}
	}
	return nil
}

// SchemaStatements returns the DDL applied by Migrate, for previews
func (p *Postgres) SchemaStatements() []string {
	return schemaStatements(p.schema)
}

func schemaStatements(schema string) []string {
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.directory_users (
			id text PRIMARY KEY,
			first_name text NOT NULL DEFAULT '',
			last_name text NOT NULL DEFAULT '',
			email text NOT NULL DEFAULT '',
			has_access boolean NOT NULL DEFAULT false,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.access_changes (
			id uuid PRIMARY KEY,
			user_id text NOT NULL,
			field text NOT NULL,
			new_value text NOT NULL,
			changed_at timestamptz NOT NULL
		)`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.login_audit (
			id uuid PRIMARY KEY,
			user_id text NOT NULL,
			at timestamptz NOT NULL,
			status text NOT NULL
		)`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.roles (
			id text PRIMARY KEY,
			name text NOT NULL DEFAULT '',
			center_type text NOT NULL DEFAULT ''
		)`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.role_permissions (
			role_id text NOT NULL,
			permission text NOT NULL,
			level integer NOT NULL,
			PRIMARY KEY (role_id, permission)
		)`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.user_roles (
			user_id text NOT NULL,
			role_id text NOT NULL,
			PRIMARY KEY (user_id, role_id)
		)`, schema),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.report_runs (
			id uuid PRIMARY KEY,
			run_id text NOT NULL UNIQUE,
			generated_date date NOT NULL,
			artifact_id text NOT NULL,
			summary jsonb NOT NULL,
			created_at timestamptz NOT NULL
		)`, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_access_changes_user_idx ON %s.access_changes (user_id, field, new_value, changed_at DESC)`, schema, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_login_audit_user_idx ON %s.login_audit (user_id, status, at DESC)`, schema, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_report_runs_created_idx ON %s.report_runs (created_at DESC)`, schema, schema),
	}
}
