package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vicinity/internal/domain/ratings"
	"vicinity/internal/ratelimiter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicAuthMiddleware(t *testing.T) {
	ta := newTestApplication(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/debug/vars", nil)
	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")

	req = httptest.NewRequest(http.MethodGet, "/v1/debug/vars", nil)
	req.SetBasicAuth("ops", "wrong")
	rr = httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/debug/vars", nil)
	req.SetBasicAuth("ops", "secret")
	rr = httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthTokenMiddleware(t *testing.T) {
	ta := newTestApplication(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Token abc"},
		{"garbage", "Bearer abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			ta.handler.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		rr := ta.do(t, http.MethodGet, "/v1/users/me", 42, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		ta.users.byID[bobID].IsActive = false
		defer func() { ta.users.byID[bobID].IsActive = true }()

		rr := ta.do(t, http.MethodGet, "/v1/users/me", bobID, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid", func(t *testing.T) {
		rr := ta.do(t, http.MethodGet, "/v1/users/me", aliceID, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var me struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		}
		decodeData(t, rr, &me)
		assert.Equal(t, aliceID, me.ID)
		assert.Equal(t, "alice", me.Username)
	})
}

func TestRateLimiterMiddleware(t *testing.T) {
	ta := newTestApplication(t)
	limiter := ratelimiter.NewFixedWindowLimiter(2, time.Minute)
	defer limiter.Close()

	ta.config.rateLimiter = ratelimiter.Config{RequestsPerTimeFrame: 2, TimeFrame: time.Minute, Enabled: true}
	ta.rateLimiter = limiter
	handler := ta.mount()

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/reviews/1", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
		if rr.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, codes)
}

func TestAdminRoutes(t *testing.T) {
	ta := newTestApplication(t)

	rr := ta.do(t, http.MethodPost, "/v1/admin/businesses/7/aggregates", aliceID, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ta.do(t, http.MethodPost, "/v1/admin/businesses/7/aggregates", adminID, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var agg ratings.Aggregate
	decodeData(t, rr, &agg)
	assert.Equal(t, ratings.Aggregate{BusinessID: 7, AverageRating: 4.5, ReviewCount: 2}, agg)

	ta.aggregates.err = ratings.ErrBusinessNotFound
	rr = ta.do(t, http.MethodPost, "/v1/admin/businesses/7/aggregates", adminID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ta.do(t, http.MethodPost, "/v1/admin/aggregates/reconcile", adminID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var fixed map[string]int
	decodeData(t, rr, &fixed)
	assert.Equal(t, 3, fixed["fixed"])
}

func TestExtractPublicIDFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345/businesses/abc123.jpg", "businesses/abc123", false},
		{"https://res.cloudinary.com/demo/image/upload/reviews/xyz.png", "reviews/xyz", false},
		{"https://res.cloudinary.com/demo/image/upload/v1/profiles/a.b.webp", "profiles/a.b", false},
		{"https://example.com/static/logo.png", "", true},
		{"https://res.cloudinary.com/demo/image/upload/", "", true},
	}

	for _, tt := range tests {
		got, err := extractPublicIDFromURL(tt.url)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}
}
