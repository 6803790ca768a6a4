package businesses

import (
	"errors"
	"fmt"
	"time"

	"vicinity/internal/geo"
	"vicinity/internal/params"
)

var (
	ErrNotFound          = errors.New("business not found")
	ErrImageNotFound     = errors.New("business image not found")
	ErrInvalidCategory   = errors.New("invalid business category")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	ErrDuplicateBusiness = errors.New("a business with this name already exists for this owner")
	QueryTimeoutDuration = time.Second * 5
)

// Category is a closed set; ParseCategory rejects anything else.
type Category string

const (
	CategoryRestaurant    Category = "restaurant"
	CategoryRetail        Category = "retail"
	CategoryService       Category = "service"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryProfessional  Category = "professional"
	CategoryOther         Category = "other"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryRestaurant, CategoryRetail, CategoryService, CategoryEntertainment,
		CategoryHealth, CategoryProfessional, CategoryOther:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

// Label is the human readable name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryRestaurant:
		return "Restaurant"
	case CategoryRetail:
		return "Retail"
	case CategoryService:
		return "Service"
	case CategoryEntertainment:
		return "Entertainment"
	case CategoryHealth:
		return "Health & Wellness"
	case CategoryProfessional:
		return "Professional Services"
	case CategoryOther:
		return "Other"
	}
	return string(c)
}

type Business struct {
	ID               int64          `json:"id"`
	OwnerID          int64          `json:"owner"`
	OwnerName        string         `json:"owner_name"`
	Name             string         `json:"name"`
	Category         Category       `json:"category"`
	Description      string         `json:"description"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone"`
	Website          string         `json:"website"`
	Address          string         `json:"address"`
	City             string         `json:"city"`
	State            string         `json:"state"`
	ZipCode          string         `json:"zip_code"`
	Latitude         *float64       `json:"latitude"`
	Longitude        *float64       `json:"longitude"`
	HoursOfOperation map[string]any `json:"hours_of_operation"`
	LogoURL          *string        `json:"logo"`
	AverageRating    float64        `json:"average_rating"`
	ReviewCount      int            `json:"review_count"`
	IsVerified       bool           `json:"is_verified"`
	IsActive         bool           `json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Images           []Image        `json:"images"`
}

// Location reports the business coordinates, if it has both.
func (b *Business) Location() (geo.Point, bool) {
	if b.Latitude == nil || b.Longitude == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *b.Latitude, Lon: *b.Longitude}, true
}

type Image struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	ImageURL   string    `json:"image"`
	Caption    string    `json:"caption"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

// BusinessUpdate holds the owner-writable fields. Nil means unchanged.
// Aggregates, owner and verification are deliberately absent.
type BusinessUpdate struct {
	Name             *string
	Category         *Category
	Description      *string
	Email            *string
	Phone            *string
	Website          *string
	Address          *string
	City             *string
	State            *string
	ZipCode          *string
	Latitude         *float64
	Longitude        *float64
	HoursOfOperation map[string]any
	IsActive         *bool
}

// Filter mirrors the listing query string.
type Filter struct {
	Category   *Category
	City       *string
	State      *string
	IsVerified *bool
	Search     string
	Ordering   params.Ordering
	Limit      int
	Offset     int
}

// OrderingFields are the accepted ?ordering= keys.
var OrderingFields = []string{"name", "created_at", "average_rating", "review_count"}

// DefaultOrdering is newest first.
var DefaultOrdering = params.Ordering{Field: "created_at", Desc: true}
