// Package proximity finds the businesses closest to a given one.
package proximity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"vicinity/internal/domain/businesses"
	"vicinity/internal/geo"
)

const (
	DefaultRadiusKm = 5.0
	MaxResults      = 10
)

var (
	ErrInvalidRadius = errors.New("radius must be a positive number of kilometres")
	ErrNoCoordinates = errors.New("business has no coordinates")
)

// Store is the slice of businesses.Store the search reads from.
type Store interface {
	GetByID(ctx context.Context, businessID int64) (*businesses.Business, error)
	ListWithCoordinates(ctx context.Context, box geo.BoundingBox, excludeID int64) ([]businesses.Business, error)
	AttachImages(ctx context.Context, list []businesses.Business) error
}

type Result struct {
	businesses.Business
	DistanceKm float64 `json:"distance_km"`
}

type Searcher struct {
	store Store
}

func NewSearcher(store Store) *Searcher {
	return &Searcher{store: store}
}

// ParseRadius reads the ?radius= value; empty means DefaultRadiusKm.
func ParseRadius(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultRadiusKm, nil
	}
	r, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRadius, raw)
	}
	if err := validateRadius(r); err != nil {
		return 0, err
	}
	return r, nil
}

func validateRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, r)
	}
	return nil
}

// Nearby returns up to MaxResults businesses strictly closer than radiusKm to
// the origin, nearest first. The origin itself and businesses without
// coordinates are never returned.
func (s *Searcher) Nearby(ctx context.Context, originID int64, radiusKm float64) ([]Result, error) {
	if err := validateRadius(radiusKm); err != nil {
		return nil, err
	}

	origin, err := s.store.GetByID(ctx, originID)
	if err != nil {
		return nil, err
	}
	center, ok := origin.Location()
	if !ok {
		return nil, ErrNoCoordinates
	}

	candidates, err := s.store.ListWithCoordinates(ctx, geo.BoundingBoxAround(center, radiusKm), originID)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(candidates))
	for _, b := range candidates {
		if b.ID == originID {
			continue
		}
		p, ok := b.Location()
		if !ok {
			continue
		}
		d := geo.DistanceKm(center, p)
		if d < radiusKm {
			results = append(results, Result{Business: b, DistanceKm: d})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}

	list := make([]businesses.Business, len(results))
	for i := range results {
		list[i] = results[i].Business
	}
	if err := s.store.AttachImages(ctx, list); err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Images = list[i].Images
	}
	return results, nil
}
