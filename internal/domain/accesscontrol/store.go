package accesscontrol

import (
	"context"
	"fmt"

	"vicinity/internal/infra/dbx"
)

type Store interface {
	AssignRole(ctx context.Context, userID int64, role RoleName) error
	RemoveRole(ctx context.Context, userID int64, role RoleName) error
	GetUserRoles(ctx context.Context, userID int64) ([]Role, error)
	UserHasRole(ctx context.Context, userID int64, role RoleName) (bool, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) Store {
	return &Repository{db: db}
}

func (r *Repository) AssignRole(ctx context.Context, userID int64, role RoleName) error {
	query := `
        INSERT INTO user_roles (user_id, role_id)
        SELECT $1, id FROM roles WHERE name = $2
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("assign role %s: %w", role, err)
	}
	return nil
}

func (r *Repository) RemoveRole(ctx context.Context, userID int64, role RoleName) error {
	query := `
        DELETE FROM user_roles
        WHERE user_id = $1 AND role_id = (SELECT id FROM roles WHERE name = $2)
    `
	result, err := r.db.Exec(ctx, query, userID, role)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: user_id=%d role=%s", ErrRoleNotAssigned, userID, role)
	}
	return nil
}

func (r *Repository) GetUserRoles(ctx context.Context, userID int64) ([]Role, error) {
	query := `
        SELECT r.id, r.name, r.description, r.created_at
        FROM roles r
        JOIN user_roles ur ON ur.role_id = r.id
        WHERE ur.user_id = $1
        ORDER BY r.name
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *Repository) UserHasRole(ctx context.Context, userID int64, role RoleName) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM user_roles ur
            JOIN roles r ON ur.role_id = r.id
            WHERE ur.user_id = $1 AND r.name = $2
        )
    `
	err := r.db.QueryRow(ctx, query, userID, role).Scan(&exists)
	return exists, err
}
