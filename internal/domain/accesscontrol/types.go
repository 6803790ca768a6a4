package accesscontrol

import (
	"errors"
	"time"
)

var ErrRoleNotAssigned = errors.New("role not assigned to user")

type RoleName string

const (
	// RoleAdmin may delete any business or review and manage verification.
	RoleAdmin RoleName = "admin"
)

type Role struct {
	ID          int64     `json:"id"`
	Name        RoleName  `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
