package businesses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vicinity/internal/geo"
	"vicinity/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, b *Business, imageURLs []string) error
	GetByID(ctx context.Context, businessID int64) (*Business, error)
	GetOwnerID(ctx context.Context, businessID int64) (int64, error)
	Update(ctx context.Context, businessID int64, upd BusinessUpdate) (*Business, error)
	Delete(ctx context.Context, businessID int64) error
	SetVerified(ctx context.Context, businessID int64, verified bool) error
	List(ctx context.Context, filter Filter) ([]Business, int, error)
	// ListWithCoordinates returns businesses that have both coordinates and
	// fall inside box, excluding excludeID.
	ListWithCoordinates(ctx context.Context, box geo.BoundingBox, excludeID int64) ([]Business, error)
	// AttachImages fills in the images of every business in list.
	AttachImages(ctx context.Context, list []Business) error

	AddImages(ctx context.Context, businessID int64, images []Image) ([]Image, error)
	ListImages(ctx context.Context, businessID int64) ([]Image, error)
	SetPrimaryImage(ctx context.Context, businessID, imageID int64) error
	DeleteImage(ctx context.Context, businessID, imageID int64) (*Image, error)
}

type Repository struct {
	db dbx.TxBeginner
}

func NewRepository(db dbx.TxBeginner) Store {
	return &Repository{db: db}
}

const businessColumns = `
	b.id, b.owner_id,
	COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username) AS owner_name,
	b.name, b.category, b.description, b.email, b.phone, b.website,
	b.address, b.city, b.state, b.zip_code, b.latitude, b.longitude,
	b.hours_of_operation, b.logo_url, b.average_rating, b.review_count,
	b.is_verified, b.is_active, b.created_at, b.updated_at
`

const businessFrom = ` FROM businesses b JOIN users u ON u.id = b.owner_id `

func scanBusiness(row pgx.Row, extra ...any) (*Business, error) {
	var b Business
	dest := []any{
		&b.ID, &b.OwnerID, &b.OwnerName,
		&b.Name, &b.Category, &b.Description, &b.Email, &b.Phone, &b.Website,
		&b.Address, &b.City, &b.State, &b.ZipCode, &b.Latitude, &b.Longitude,
		&b.HoursOfOperation, &b.LogoURL, &b.AverageRating, &b.ReviewCount,
		&b.IsVerified, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if b.HoursOfOperation == nil {
		b.HoursOfOperation = map[string]any{}
	}
	b.Images = []Image{}
	return &b, nil
}

// Create inserts the business and its initial images in one transaction.
// The first image becomes the primary one.
func (r *Repository) Create(ctx context.Context, b *Business, imageURLs []string) error {
	if b.HoursOfOperation == nil {
		b.HoursOfOperation = map[string]any{}
	}

	return dbx.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
		INSERT INTO businesses (
		  owner_id, name, category, description, email, phone, website,
		  address, city, state, zip_code, latitude, longitude, hours_of_operation, logo_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, average_rating, review_count, is_verified, is_active, created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			b.OwnerID, b.Name, b.Category, b.Description, b.Email, b.Phone, b.Website,
			b.Address, b.City, b.State, b.ZipCode, b.Latitude, b.Longitude, b.HoursOfOperation, b.LogoURL,
		).Scan(&b.ID, &b.AverageRating, &b.ReviewCount, &b.IsVerified, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			if dbx.IsUniqueViolation(err, "businesses_owner_id_name_key") {
				return ErrDuplicateBusiness
			}
			return fmt.Errorf("insert business: %w", err)
		}

		b.Images = make([]Image, 0, len(imageURLs))
		for i, url := range imageURLs {
			img := Image{BusinessID: b.ID, ImageURL: url, IsPrimary: i == 0}
			if err := insertImage(ctx, tx, &img); err != nil {
				return err
			}
			b.Images = append(b.Images, img)
		}
		return nil
	})
}

func insertImage(ctx context.Context, q dbx.Querier, img *Image) error {
	query := `
		INSERT INTO business_images (business_id, image_url, caption, is_primary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := q.QueryRow(ctx, query, img.BusinessID, img.ImageURL, img.Caption, img.IsPrimary).
		Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		if dbx.IsFKViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("insert business image: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, businessID int64) (*Business, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + businessColumns + businessFrom + ` WHERE b.id = $1`
	b, err := scanBusiness(r.db.QueryRow(ctx, query, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get business: %w", err)
	}

	images, err := r.ListImages(ctx, businessID)
	if err != nil {
		return nil, err
	}
	b.Images = images
	return b, nil
}

func (r *Repository) GetOwnerID(ctx context.Context, businessID int64) (int64, error) {
	var ownerID int64
	err := r.db.QueryRow(ctx, `SELECT owner_id FROM businesses WHERE id = $1`, businessID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

// Update applies the non-nil fields of upd.
func (r *Repository) Update(ctx context.Context, businessID int64, upd BusinessUpdate) (*Business, error) {
	setClauses := []string{}
	args := []any{}

	set := func(column string, v any) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Category != nil {
		set("category", *upd.Category)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Email != nil {
		set("email", *upd.Email)
	}
	if upd.Phone != nil {
		set("phone", *upd.Phone)
	}
	if upd.Website != nil {
		set("website", *upd.Website)
	}
	if upd.Address != nil {
		set("address", *upd.Address)
	}
	if upd.City != nil {
		set("city", *upd.City)
	}
	if upd.State != nil {
		set("state", *upd.State)
	}
	if upd.ZipCode != nil {
		set("zip_code", *upd.ZipCode)
	}
	if upd.Latitude != nil {
		set("latitude", *upd.Latitude)
	}
	if upd.Longitude != nil {
		set("longitude", *upd.Longitude)
	}
	if upd.HoursOfOperation != nil {
		set("hours_of_operation", upd.HoursOfOperation)
	}
	if upd.IsActive != nil {
		set("is_active", *upd.IsActive)
	}

	if len(setClauses) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	args = append(args, businessID)

	query := fmt.Sprintf("UPDATE businesses SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args))

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, businessID)
}

// Delete removes the business; images, reviews and review images go with it
// through ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, businessID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, businessID)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetVerified(ctx context.Context, businessID int64, verified bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE businesses SET is_verified = $1, updated_at = NOW() WHERE id = $2`,
		verified, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// orderColumns maps ?ordering= keys onto SQL; only these reach the query.
var orderColumns = map[string]string{
	"name":           "b.name",
	"created_at":     "b.created_at",
	"average_rating": "b.average_rating",
	"review_count":   "b.review_count",
}

// List returns one page of businesses plus the total number of matches.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Business, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != nil {
		where = append(where, "b.category = "+arg(*filter.Category))
	}
	if filter.City != nil {
		where = append(where, "b.city ILIKE "+arg(escapeLike(*filter.City)))
	}
	if filter.State != nil {
		where = append(where, "b.state ILIKE "+arg(escapeLike(*filter.State)))
	}
	if filter.IsVerified != nil {
		where = append(where, "b.is_verified = "+arg(*filter.IsVerified))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg("%" + escapeLike(s) + "%")
		where = append(where, fmt.Sprintf("(b.name ILIKE %[1]s OR b.description ILIKE %[1]s OR b.address ILIKE %[1]s)", p))
	}

	orderCol, ok := orderColumns[filter.Ordering.Field]
	if !ok {
		orderCol = orderColumns[DefaultOrdering.Field]
	}
	direction := "ASC"
	if filter.Ordering.Desc {
		direction = "DESC"
	}

	query := `SELECT ` + businessColumns + `, COUNT(*) OVER() AS total` + businessFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s, b.id %s", orderCol, direction, direction)
	query += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(filter.Limit), arg(filter.Offset))

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying businesses: %w", err)
	}
	defer rows.Close()

	var (
		list  = []Business{}
		total int
	)
	for rows.Next() {
		b, err := scanBusiness(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning business row: %w", err)
		}
		list = append(list, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachImages(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *Repository) ListWithCoordinates(ctx context.Context, box geo.BoundingBox, excludeID int64) ([]Business, error) {
	query := `SELECT ` + businessColumns + businessFrom + `
		WHERE b.latitude IS NOT NULL
		  AND b.longitude IS NOT NULL
		  AND b.id <> $1
		  AND b.latitude BETWEEN $2 AND $3
		  AND b.longitude BETWEEN $4 AND $5
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, query, excludeID, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("error querying nearby candidates: %w", err)
	}
	defer rows.Close()

	var list []Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning candidate row: %w", err)
		}
		list = append(list, *b)
	}
	return list, rows.Err()
}

// AttachImages loads the images of list. ListWithCoordinates leaves them
// empty so they are only fetched for the businesses a caller keeps.
func (r *Repository) AttachImages(ctx context.Context, list []Business) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()
	return r.attachImages(ctx, list)
}

// attachImages loads the images of every listed business in one query.
func (r *Repository) attachImages(ctx context.Context, list []Business) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]int64, len(list))
	index := make(map[int64]int, len(list))
	for i, b := range list {
		ids[i] = b.ID
		index[b.ID] = i
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, business_id, image_url, caption, is_primary, created_at
		FROM business_images
		WHERE business_id = ANY($1)
		ORDER BY is_primary DESC, created_at, id
	`, ids)
	if err != nil {
		return fmt.Errorf("error querying business images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.BusinessID, &img.ImageURL, &img.Caption, &img.IsPrimary, &img.CreatedAt); err != nil {
			return err
		}
		i := index[img.BusinessID]
		list[i].Images = append(list[i].Images, img)
	}
	return rows.Err()
}
