package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Roster service (PostgreSQL).
var Migrations = migrate.NewGroup("roster")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_assignments",
			Version: "20260101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS roster_assignments (
    id              TEXT PRIMARY KEY,
    user_id         BIGINT NOT NULL,
    role_id         BIGINT NOT NULL,
    store_id        TEXT NOT NULL,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    granted_by      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(user_id, role_id, store_id)
);

CREATE INDEX IF NOT EXISTS idx_roster_assignments_store ON roster_assignments (store_id);
CREATE INDEX IF NOT EXISTS idx_roster_assignments_user ON roster_assignments (user_id);
CREATE INDEX IF NOT EXISTS idx_roster_assignments_active ON roster_assignments (store_id, is_active);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS roster_assignments`)
				return err
			},
		},
	)
}
