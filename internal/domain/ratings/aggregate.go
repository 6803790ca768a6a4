// Package ratings keeps a business's average_rating and review_count in step
// with its published reviews.
package ratings

import (
	"errors"
	"fmt"
)

var ErrBusinessNotFound = errors.New("business not found")

// Aggregate is the derived pair stored on a business row.
type Aggregate struct {
	BusinessID    int64   `json:"business_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// FromTotals builds the aggregate for count published reviews whose ratings
// add up to sum. The mean is rounded half-up to two decimals with integer
// arithmetic; no reviews means 0.00.
func FromTotals(businessID int64, count, sum int64) Aggregate {
	agg := Aggregate{BusinessID: businessID, ReviewCount: int(count)}
	if count <= 0 {
		return agg
	}

	// round(sum/count * 100) half-up == floor((200*sum + count) / (2*count))
	cents := (200*sum + count) / (2 * count)
	agg.AverageRating = float64(cents) / 100
	return agg
}

// Summarize is FromTotals over an explicit list of published ratings.
func Summarize(businessID int64, published []int) Aggregate {
	var sum int64
	for _, r := range published {
		sum += int64(r)
	}
	return FromTotals(businessID, int64(len(published)), sum)
}

// AggregateError reports that a review write committed but the business
// aggregates could not be refreshed; they stay stale until the next
// recompute or reconciliation pass.
type AggregateError struct {
	BusinessID int64
	Err        error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("recompute aggregates for business %d: %v", e.BusinessID, e.Err)
}

func (e *AggregateError) Unwrap() error {
	return e.Err
}
