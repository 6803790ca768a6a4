package reviews

import (
	"errors"
	"time"

	"vicinity/internal/params"
)

var (
	ErrNotFound          = errors.New("review not found")
	ErrImageNotFound     = errors.New("review image not found")
	ErrBusinessNotFound  = errors.New("business not found")
	ErrDuplicateReview   = errors.New("you have already reviewed this business")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrForbidden         = errors.New("not allowed to modify this review")
	ErrNoFieldsToUpdate  = errors.New("no fields to update")
	QueryTimeoutDuration = time.Second * 5
)

const (
	MinRating = 1
	MaxRating = 5
)

func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

type Review struct {
	ID          int64     `json:"id"`
	BusinessID  int64     `json:"business"`
	UserID      int64     `json:"user"`
	UserName    string    `json:"user_name"`
	Rating      int       `json:"rating"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	IsPublished bool      `json:"is_published"`
	IsEdited    bool      `json:"is_edited"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Images      []Image   `json:"images"`
}

type Image struct {
	ID        int64     `json:"id"`
	ReviewID  int64     `json:"review_id"`
	ImageURL  string    `json:"image"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewUpdate holds the author-writable fields; nil means unchanged.
// The business of a review never changes.
type ReviewUpdate struct {
	Rating      *int
	Title       *string
	Content     *string
	IsPublished *bool
}

func (u ReviewUpdate) Empty() bool {
	return u.Rating == nil && u.Title == nil && u.Content == nil && u.IsPublished == nil
}

// AffectsAggregate reports whether the update writes a field the business
// aggregates depend on.
func (u ReviewUpdate) AffectsAggregate() bool {
	return u.Rating != nil || u.IsPublished != nil
}

type Filter struct {
	BusinessID  *int64
	Rating      *int
	IsPublished *bool
	Ordering    params.Ordering
	Limit       int
	Offset      int
}

var OrderingFields = []string{"created_at", "rating"}

var DefaultOrdering = params.Ordering{Field: "created_at", Desc: true}
