package businesses

import (
	"context"
	"errors"
	"fmt"

	"vicinity/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

// AddImages appends images to a business. If the business has no primary
// image yet, the first new one takes the flag.
func (r *Repository) AddImages(ctx context.Context, businessID int64, images []Image) ([]Image, error) {
	err := dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockBusiness(ctx, tx, businessID); err != nil {
			return err
		}

		var hasPrimary bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM business_images WHERE business_id = $1 AND is_primary)`,
			businessID).Scan(&hasPrimary)
		if err != nil {
			return err
		}

		for i := range images {
			images[i].BusinessID = businessID
			images[i].IsPrimary = !hasPrimary && i == 0
			if err := insertImage(ctx, tx, &images[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *Repository) ListImages(ctx context.Context, businessID int64) ([]Image, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, business_id, image_url, caption, is_primary, created_at
		FROM business_images
		WHERE business_id = $1
		ORDER BY is_primary DESC, created_at, id
	`, businessID)
	if err != nil {
		return nil, fmt.Errorf("error querying business images: %w", err)
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.BusinessID, &img.ImageURL, &img.Caption, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// SetPrimaryImage clears the flag on every sibling before setting it on
// imageID, inside one transaction holding the business row lock.
func (r *Repository) SetPrimaryImage(ctx context.Context, businessID, imageID int64) error {
	return dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockBusiness(ctx, tx, businessID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE business_images SET is_primary = false WHERE business_id = $1 AND id <> $2 AND is_primary`,
			businessID, imageID); err != nil {
			return fmt.Errorf("clear primary image: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE business_images SET is_primary = true WHERE business_id = $1 AND id = $2`,
			businessID, imageID)
		if err != nil {
			return fmt.Errorf("set primary image: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrImageNotFound
		}
		return nil
	})
}

// DeleteImage removes one image and returns it so the caller can drop the
// stored asset.
func (r *Repository) DeleteImage(ctx context.Context, businessID, imageID int64) (*Image, error) {
	var img Image
	err := r.db.QueryRow(ctx, `
		DELETE FROM business_images
		WHERE business_id = $1 AND id = $2
		RETURNING id, business_id, image_url, caption, is_primary, created_at
	`, businessID, imageID).Scan(&img.ID, &img.BusinessID, &img.ImageURL, &img.Caption, &img.IsPrimary, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("delete business image: %w", err)
	}
	return &img, nil
}

func lockBusiness(ctx context.Context, tx pgx.Tx, businessID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM businesses WHERE id = $1 FOR UPDATE`, businessID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
