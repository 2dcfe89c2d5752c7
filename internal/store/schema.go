package store

// CoreSchema is the fixed core migration set (spec.md §3/§4), applied
// by MigrationRunner.Run before any application-specific migration. Go
// map iteration order is irrelevant here since MigrationRunner sorts
// names before applying.
var CoreSchema = map[string]string{
	"0001_users": `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			first_name TEXT,
			last_name TEXT,
			contact_email TEXT,
			contact_phone TEXT,
			oauth_uid TEXT,
			preferences JSONB,
			expiration_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`,
	"0002_tokens": `
		CREATE TABLE IF NOT EXISTS tokens (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			created_by_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (created_by_id, name)
		)
	`,
	"0003_acls_roles": `
		CREATE TABLE IF NOT EXISTS acls (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`,
	"0004_join_tables": `
		CREATE TABLE IF NOT EXISTS role_acls (
			role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			acl_id TEXT NOT NULL REFERENCES acls(id) ON DELETE CASCADE,
			PRIMARY KEY (role_id, acl_id)
		);
		CREATE INDEX IF NOT EXISTS role_acls_reverse ON role_acls (acl_id, role_id);

		CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role_id UUID NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, role_id)
		);
		CREATE INDEX IF NOT EXISTS user_roles_reverse ON user_roles (role_id, user_id);

		CREATE TABLE IF NOT EXISTS user_acls (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			acl_id TEXT NOT NULL REFERENCES acls(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, acl_id)
		);
		CREATE INDEX IF NOT EXISTS user_acls_reverse ON user_acls (acl_id, user_id);

		CREATE TABLE IF NOT EXISTS token_acls (
			token_id UUID NOT NULL REFERENCES tokens(id) ON DELETE CASCADE,
			acl_id TEXT NOT NULL REFERENCES acls(id) ON DELETE CASCADE,
			PRIMARY KEY (token_id, acl_id)
		);
		CREATE INDEX IF NOT EXISTS token_acls_reverse ON token_acls (acl_id, token_id);
	`,
	"0005_groups": `
		CREATE TABLE IF NOT EXISTS groups (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS group_users (
			group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (group_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS group_users_reverse ON group_users (user_id, group_id);
	`,
	"0006_cron_job_runs": `
		CREATE TABLE IF NOT EXISTS cron_job_runs (
			id UUID PRIMARY KEY,
			script_name TEXT NOT NULL,
			exit_status INT NOT NULL,
			stdout TEXT,
			duration_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`,
}
