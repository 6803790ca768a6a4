package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreatePushTokens, downCreatePushTokens)
}

func upCreatePushTokens(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS push_tokens (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expo_push_token TEXT NOT NULL,
			device_info JSONB,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, expo_push_token)
		);
	`)
	return err
}

func downCreatePushTokens(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS push_tokens;`)
	return err
}
