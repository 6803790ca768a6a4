package users

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	ErrDuplicateUsername = errors.New("a user with that username already exists")
	ErrInvalidUserType   = errors.New("invalid user type")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	QueryTimeoutDuration = time.Second * 5
)

// UserType is a closed set; values outside it are rejected by ParseUserType.
type UserType string

const (
	UserTypeRegular  UserType = "regular"
	UserTypeBusiness UserType = "business"
)

func ParseUserType(s string) (UserType, error) {
	switch t := UserType(s); t {
	case UserTypeRegular, UserTypeBusiness:
		return t, nil
	case "":
		return UserTypeRegular, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUserType, s)
	}
}

type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	UserType          UserType  `json:"user_type"`
	PhoneNumber       string    `json:"phone_number"`
	Bio               string    `json:"bio"`
	Password          password  `json:"-"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	RefreshToken      string    `json:"-"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FullName mirrors what the listing endpoints show as owner_name/user_name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Username
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

// UserUpdate carries the profile fields a user may change about themselves.
// Nil fields are left untouched.
type UserUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Bio         *string
}

// Password struct to store plain text and hash
type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}
