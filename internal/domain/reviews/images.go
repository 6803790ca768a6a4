package reviews

import (
	"context"
	"errors"
	"fmt"

	"vicinity/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

func (r *Repository) AddImages(ctx context.Context, reviewID int64, images []Image) ([]Image, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var saved []Image
	err := dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		saved, err = insertImages(ctx, tx, reviewID, images)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func insertImages(ctx context.Context, q dbx.Querier, reviewID int64, images []Image) ([]Image, error) {
	saved := make([]Image, 0, len(images))
	for _, img := range images {
		img.ReviewID = reviewID
		err := q.QueryRow(ctx, `
			INSERT INTO review_images (review_id, image_url, caption)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, img.ReviewID, img.ImageURL, img.Caption).Scan(&img.ID, &img.CreatedAt)
		if err != nil {
			if dbx.IsFKViolation(err) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("insert review image: %w", err)
		}
		saved = append(saved, img)
	}
	return saved, nil
}

func (r *Repository) ListImages(ctx context.Context, reviewID int64) ([]Image, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()
	return r.listImages(ctx, reviewID)
}

func (r *Repository) listImages(ctx context.Context, reviewID int64) ([]Image, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, review_id, image_url, caption, created_at
		FROM review_images
		WHERE review_id = $1
		ORDER BY created_at, id
	`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("error querying review images: %w", err)
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ReviewID, &img.ImageURL, &img.Caption, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// DeleteImage removes the image and returns it so the caller can drop the
// stored asset.
func (r *Repository) DeleteImage(ctx context.Context, reviewID, imageID int64) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	img := &Image{}
	err := r.db.QueryRow(ctx, `
		DELETE FROM review_images
		WHERE id = $1 AND review_id = $2
		RETURNING id, review_id, image_url, caption, created_at
	`, imageID, reviewID).Scan(&img.ID, &img.ReviewID, &img.ImageURL, &img.Caption, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("delete review image: %w", err)
	}
	return img, nil
}

func (r *Repository) attachImages(ctx context.Context, list []Review) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]int64, len(list))
	index := make(map[int64]int, len(list))
	for i, rv := range list {
		ids[i] = rv.ID
		index[rv.ID] = i
		list[i].Images = []Image{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, review_id, image_url, caption, created_at
		FROM review_images
		WHERE review_id = ANY($1)
		ORDER BY created_at, id
	`, ids)
	if err != nil {
		return fmt.Errorf("error querying review images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.ReviewID, &img.ImageURL, &img.Caption, &img.CreatedAt); err != nil {
			return err
		}
		i := index[img.ReviewID]
		list[i].Images = append(list[i].Images, img)
	}
	return rows.Err()
}
