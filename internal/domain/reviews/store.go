package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vicinity/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(context.Context, *Review) error
	GetByID(context.Context, int64) (*Review, error)
	Update(ctx context.Context, reviewID int64, upd ReviewUpdate) (*Review, error)
	// Delete removes the review and returns the business it belonged to.
	Delete(ctx context.Context, reviewID int64) (businessID int64, err error)
	List(ctx context.Context, filter Filter) ([]Review, int, error)
	ListPublished(ctx context.Context, businessID int64) ([]Review, error)
	HasReview(ctx context.Context, businessID, userID int64) (bool, error)
	AddImages(ctx context.Context, reviewID int64, images []Image) ([]Image, error)
	ListImages(ctx context.Context, reviewID int64) ([]Image, error)
	DeleteImage(ctx context.Context, reviewID, imageID int64) (*Image, error)
}

type Repository struct {
	db dbx.TxBeginner
}

func NewRepository(db dbx.TxBeginner) Store {
	return &Repository{db: db}
}

const reviewColumns = `
	r.id, r.business_id, r.user_id, COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username),
	r.rating, r.title, r.content, r.is_published, r.is_edited, r.created_at, r.updated_at
`

const reviewFrom = ` FROM reviews r JOIN users u ON u.id = r.user_id`

func scanReview(row pgx.Row, extra ...any) (*Review, error) {
	rv := &Review{}
	dest := append([]any{
		&rv.ID,
		&rv.BusinessID,
		&rv.UserID,
		&rv.UserName,
		&rv.Rating,
		&rv.Title,
		&rv.Content,
		&rv.IsPublished,
		&rv.IsEdited,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rv, nil
}

// Create inserts the review together with any images already set on it, in
// one transaction.
func (r *Repository) Create(ctx context.Context, rv *Review) error {
	query := `
        INSERT INTO reviews (business_id, user_id, rating, title, content, is_published)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, is_edited, created_at, updated_at
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			rv.BusinessID,
			rv.UserID,
			rv.Rating,
			rv.Title,
			rv.Content,
			rv.IsPublished,
		).Scan(&rv.ID, &rv.IsEdited, &rv.CreatedAt, &rv.UpdatedAt)
		if err != nil {
			switch {
			case dbx.IsUniqueViolation(err, "reviews_user_id_business_id_key"):
				return ErrDuplicateReview
			case dbx.IsFKViolation(err):
				return ErrBusinessNotFound
			default:
				return fmt.Errorf("insert review: %w", err)
			}
		}

		images, err := insertImages(ctx, tx, rv.ID, rv.Images)
		if err != nil {
			return err
		}
		rv.Images = images
		return nil
	})
}

func (r *Repository) GetByID(ctx context.Context, reviewID int64) (*Review, error) {
	query := `SELECT ` + reviewColumns + reviewFrom + ` WHERE r.id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rv, err := scanReview(r.db.QueryRow(ctx, query, reviewID))
	if err != nil {
		return nil, err
	}

	rv.Images, err = r.listImages(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// Update applies upd and always marks the review edited.
func (r *Repository) Update(ctx context.Context, reviewID int64, upd ReviewUpdate) (*Review, error) {
	if upd.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	setClauses := []string{"is_edited = true", "updated_at = NOW()"}
	args := []any{}
	set := func(column string, v any) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Rating != nil {
		set("rating", *upd.Rating)
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Content != nil {
		set("content", *upd.Content)
	}
	if upd.IsPublished != nil {
		set("is_published", *upd.IsPublished)
	}
	args = append(args, reviewID)

	query := fmt.Sprintf(`
		WITH r AS (
			UPDATE reviews SET %s WHERE id = $%d
			RETURNING *
		)
		SELECT %s FROM r JOIN users u ON u.id = r.user_id
	`, strings.Join(setClauses, ", "), len(args), reviewColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rv, err := scanReview(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update review: %w", err)
	}

	rv.Images, err = r.listImages(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (r *Repository) Delete(ctx context.Context, reviewID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var businessID int64
	err := r.db.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING business_id`, reviewID).Scan(&businessID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("delete review: %w", err)
	}
	return businessID, nil
}

var orderColumns = map[string]string{
	"created_at": "r.created_at",
	"rating":     "r.rating",
}

func (r *Repository) List(ctx context.Context, filter Filter) ([]Review, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.BusinessID != nil {
		where = append(where, "r.business_id = "+arg(*filter.BusinessID))
	}
	if filter.Rating != nil {
		where = append(where, "r.rating = "+arg(*filter.Rating))
	}
	if filter.IsPublished != nil {
		where = append(where, "r.is_published = "+arg(*filter.IsPublished))
	}

	orderCol, ok := orderColumns[filter.Ordering.Field]
	if !ok {
		orderCol = orderColumns[DefaultOrdering.Field]
	}
	direction := "ASC"
	if filter.Ordering.Desc {
		direction = "DESC"
	}

	query := `SELECT ` + reviewColumns + `, COUNT(*) OVER() AS total` + reviewFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s, r.id %s", orderCol, direction, direction)
	query += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(filter.Limit), arg(filter.Offset))

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying reviews: %w", err)
	}
	defer rows.Close()

	var (
		list  = []Review{}
		total int
	)
	for rows.Next() {
		rv, err := scanReview(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning review row: %w", err)
		}
		list = append(list, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachImages(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListPublished returns the visible reviews of a business, newest first.
func (r *Repository) ListPublished(ctx context.Context, businessID int64) ([]Review, error) {
	query := `SELECT ` + reviewColumns + reviewFrom + `
		WHERE r.business_id = $1 AND r.is_published = true
		ORDER BY r.created_at DESC, r.id DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("error querying published reviews: %w", err)
	}
	defer rows.Close()

	list := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, r.attachImages(ctx, list)
}

// HasReview returns true if this user already reviewed this business.
func (r *Repository) HasReview(ctx context.Context, businessID, userID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
          SELECT 1 FROM reviews
          WHERE business_id = $1 AND user_id = $2
        )
    `

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := r.db.QueryRow(ctx, query, businessID, userID).Scan(&exists)
	return exists, err
}
