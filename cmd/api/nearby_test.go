package main

import (
	"net/http"
	"testing"

	"vicinity/internal/domain/businesses"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNearby(ta *testApp) {
	add := func(id int64, lat, lon *float64) {
		ta.businesses.byID[id] = businesses.Business{ID: id, OwnerID: aliceID, Name: "b", Latitude: lat, Longitude: lon}
	}
	add(1, ptr(0.0), ptr(0.0))
	add(2, ptr(0.0), ptr(0.045)) // 5.004 km
	add(3, ptr(0.0), ptr(0.01))  // 1.112 km
	add(4, nil, nil)
	add(5, ptr(0.0), ptr(0.02)) // 2.224 km
}

type nearbyRow struct {
	ID         int64   `json:"id"`
	DistanceKm float64 `json:"distance_km"`
}

func ids(rows []nearbyRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestNearbyBusinessesHandler(t *testing.T) {
	ta := newTestApplication(t)
	seedNearby(ta)

	t.Run("default radius excludes the 5.004 km business", func(t *testing.T) {
		rr := ta.do(t, http.MethodGet, "/v1/businesses/1/nearby", 0, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var rows []nearbyRow
		decodeData(t, rr, &rows)
		assert.Equal(t, []int64{3, 5}, ids(rows))
		assert.InDelta(t, 1.112, rows[0].DistanceKm, 0.001)
	})

	t.Run("wider radius includes it", func(t *testing.T) {
		rr := ta.do(t, http.MethodGet, "/v1/businesses/1/nearby?radius=5.1", 0, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var rows []nearbyRow
		decodeData(t, rr, &rows)
		assert.Equal(t, []int64{3, 5, 2}, ids(rows))
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			path string
			want int
		}{
			{"/v1/businesses/1/nearby?radius=-1", http.StatusBadRequest},
			{"/v1/businesses/1/nearby?radius=abc", http.StatusBadRequest},
			{"/v1/businesses/4/nearby", http.StatusBadRequest},
			{"/v1/businesses/99/nearby", http.StatusNotFound},
			{"/v1/businesses/abc/nearby", http.StatusBadRequest},
		}
		for _, tt := range tests {
			rr := ta.do(t, http.MethodGet, tt.path, 0, nil)
			assert.Equal(t, tt.want, rr.Code, tt.path)
		}
	})
}
