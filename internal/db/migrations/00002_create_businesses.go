package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateBusinesses, downCreateBusinesses)
}

func upCreateBusinesses(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS businesses (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(200) NOT NULL,
			category VARCHAR(20) NOT NULL CHECK (category IN (
				'restaurant', 'retail', 'service', 'entertainment', 'health', 'professional', 'other'
			)),
			description TEXT NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(15) NOT NULL DEFAULT '',
			website TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			city VARCHAR(100) NOT NULL DEFAULT '',
			state VARCHAR(100) NOT NULL DEFAULT '',
			zip_code VARCHAR(10) NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION CHECK (latitude BETWEEN -90 AND 90),
			longitude DOUBLE PRECISION CHECK (longitude BETWEEN -180 AND 180),
			hours_of_operation JSONB NOT NULL DEFAULT '{}'::jsonb,
			logo_url TEXT,
			average_rating NUMERIC(3,2) NOT NULL DEFAULT 0.00
				CHECK (average_rating >= 0 AND average_rating <= 5),
			review_count INT NOT NULL DEFAULT 0 CHECK (review_count >= 0),
			is_verified BOOLEAN NOT NULL DEFAULT false,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT businesses_owner_id_name_key UNIQUE (owner_id, name)
		);

		CREATE INDEX IF NOT EXISTS idx_businesses_category ON businesses(category);
		CREATE INDEX IF NOT EXISTS idx_businesses_city ON businesses(city);
		CREATE INDEX IF NOT EXISTS idx_businesses_lat_lon ON businesses(latitude, longitude)
			WHERE latitude IS NOT NULL AND longitude IS NOT NULL;

		CREATE TABLE IF NOT EXISTS business_images (
			id BIGSERIAL PRIMARY KEY,
			business_id BIGINT NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
			image_url TEXT NOT NULL,
			caption VARCHAR(200) NOT NULL DEFAULT '',
			is_primary BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_business_images_business_id ON business_images(business_id);
		CREATE UNIQUE INDEX IF NOT EXISTS business_images_one_primary
			ON business_images(business_id) WHERE is_primary;
	`)
	return err
}

func downCreateBusinesses(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS business_images;
		DROP TABLE IF EXISTS businesses;
	`)
	return err
}
