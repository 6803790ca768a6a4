package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vicinity/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	GetByID(context.Context, int64) (*User, error)
	GetByEmail(context.Context, string) (*User, error)
	Create(context.Context, *User) error
	Update(ctx context.Context, userID int64, upd UserUpdate) (*User, error)
	SetProfilePicture(ctx context.Context, userID int64, url string) (previous *string, err error)
	Delete(context.Context, int64) error
	SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error
	DeleteRefreshToken(ctx context.Context, userID int64) error
	GetRefreshToken(ctx context.Context, userID int64) (string, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) Store {
	return &Repository{db: db}
}

const userColumns = `
	id, username, email, first_name, last_name, user_type, phone_number, bio,
	password, profile_picture_url, is_active, created_at, updated_at
`

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.UserType,
		&user.PhoneNumber,
		&user.Bio,
		&user.Password.hash,
		&user.ProfilePictureURL,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *Repository) Create(ctx context.Context, user *User) error {
	query := `
	  INSERT INTO users (username, email, password, first_name, last_name, user_type, phone_number, bio)
	  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	  RETURNING id, is_active, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := r.db.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.Password.hash,
		user.FirstName,
		user.LastName,
		user.UserType,
		user.PhoneNumber,
		user.Bio,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		case dbx.IsUniqueViolation(err, "users_username_key"):
			return ErrDuplicateUsername
		default:
			return fmt.Errorf("insert user: %w", err)
		}
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, query, userID))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *Repository) Update(ctx context.Context, userID int64, upd UserUpdate) (*User, error) {
	setClauses := []string{}
	args := []any{}

	add := func(column string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("first_name", upd.FirstName)
	add("last_name", upd.LastName)
	add("phone_number", upd.PhoneNumber)
	add("bio", upd.Bio)

	if len(setClauses) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE users SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args), userColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, query, args...))
}

// SetProfilePicture stores url and hands back the previous one so the caller
// can remove the old asset.
func (r *Repository) SetProfilePicture(ctx context.Context, userID int64, url string) (*string, error) {
	query := `
		UPDATE users u
		SET profile_picture_url = $1, updated_at = NOW()
		FROM (SELECT id, profile_picture_url FROM users WHERE id = $2 FOR UPDATE) old
		WHERE u.id = old.id
		RETURNING old.profile_picture_url
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var previous *string
	if err := r.db.QueryRow(ctx, query, url, userID).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set profile picture: %w", err)
	}
	return previous, nil
}

func (r *Repository) Delete(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE users SET refresh_token = $1 WHERE id = $2`, refreshToken, userID)
	return err
}

func (r *Repository) DeleteRefreshToken(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := r.db.Exec(ctx, `UPDATE users SET refresh_token = NULL WHERE id = $1`, userID)
	return err
}

func (r *Repository) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var token *string
	err := r.db.QueryRow(ctx, `SELECT refresh_token FROM users WHERE id = $1`, userID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if token == nil {
		return "", ErrNotFound
	}
	return *token, nil
}
