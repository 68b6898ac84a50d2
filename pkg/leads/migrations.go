package leads

import (
	"context"
	"database/sql"

	"github.com/leadflow/leadflow/pkg/observability"
	"github.com/leadflow/leadflow/pkg/storage"
)

// migrations returns the lead service schema. The todos table needs an
// auto-increment primary key, which postgres and sqlite spell differently;
// everything else is portable.
func migrations(driver string) []storage.Migration {
	todoPK := "BIGSERIAL PRIMARY KEY"
	if driver == "sqlite3" {
		todoPK = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	return []storage.Migration{
		{
			Version:     1,
			Description: "Create lead_stages table",
			SQL: `
				CREATE TABLE IF NOT EXISTS lead_stages (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL UNIQUE
				);
			`,
		},
		{
			Version:     2,
			Description: "Create leads table",
			SQL: `
				CREATE TABLE IF NOT EXISTS leads (
					id TEXT PRIMARY KEY,
					user_name TEXT NOT NULL,
					company_name TEXT NOT NULL,
					contact_number TEXT NOT NULL,
					email TEXT NOT NULL,
					first_contacted_at TIMESTAMP NOT NULL,
					last_contacted_at TIMESTAMP NOT NULL,
					comments TEXT,
					stage_id TEXT NOT NULL REFERENCES lead_stages(id),
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_leads_stage_id ON leads(stage_id);
				CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
			`,
		},
		{
			Version:     3,
			Description: "Create todos table",
			SQL: `
				CREATE TABLE IF NOT EXISTS todos (
					id ` + todoPK + `,
					text TEXT NOT NULL,
					done BOOLEAN NOT NULL DEFAULT FALSE,
					user_id TEXT,
					created_at TIMESTAMP NOT NULL,
					updated_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_todos_user_id ON todos(user_id);
			`,
		},
		{
			Version:     4,
			Description: "Create lead_notifications table",
			SQL: `
				CREATE TABLE IF NOT EXISTS lead_notifications (
					id TEXT PRIMARY KEY,
					lead_id TEXT NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
					message TEXT NOT NULL,
					read BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_lead_notifications_read ON lead_notifications(read);
			`,
		},
	}
}

// Migrate creates the lead service schema: stages, leads, todos, and
// notifications all live in this service's database.
func Migrate(ctx context.Context, db *sql.DB, driver string, logger *observability.Logger) error {
	return storage.RunMigrations(ctx, db, "lead_migrations", migrations(driver), logger)
}
