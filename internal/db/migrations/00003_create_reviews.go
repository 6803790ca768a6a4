package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateReviews, downCreateReviews)
}

func upCreateReviews(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reviews (
			id BIGSERIAL PRIMARY KEY,
			business_id BIGINT NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rating SMALLINT NOT NULL CHECK (rating >= 1 AND rating <= 5),
			title VARCHAR(200) NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			is_published BOOLEAN NOT NULL DEFAULT true,
			is_edited BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT reviews_user_id_business_id_key UNIQUE (user_id, business_id)
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_business_published
			ON reviews(business_id) WHERE is_published;

		CREATE TABLE IF NOT EXISTS review_images (
			id BIGSERIAL PRIMARY KEY,
			review_id BIGINT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
			image_url TEXT NOT NULL,
			caption VARCHAR(200) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_review_images_review_id ON review_images(review_id);
	`)
	return err
}

func downCreateReviews(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE IF EXISTS review_images;
		DROP TABLE IF EXISTS reviews;
	`)
	return err
}
