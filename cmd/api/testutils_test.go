package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"vicinity/internal/auth"
	"vicinity/internal/domain/accesscontrol"
	"vicinity/internal/domain/businesses"
	"vicinity/internal/domain/proximity"
	"vicinity/internal/domain/pushtokens"
	"vicinity/internal/domain/ratings"
	"vicinity/internal/domain/reviews"
	"vicinity/internal/domain/storage"
	"vicinity/internal/domain/users"
	"vicinity/internal/geo"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsers struct {
	users.Store
	byID map[int64]*users.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

type fakeRoles struct {
	accesscontrol.Store
	admins map[int64]bool
}

func (f *fakeRoles) UserHasRole(_ context.Context, userID int64, role accesscontrol.RoleName) (bool, error) {
	return role == accesscontrol.RoleAdmin && f.admins[userID], nil
}

type fakeBusinesses struct {
	businesses.Store
	byID       map[int64]businesses.Business
	lastFilter *businesses.Filter
}

func (f *fakeBusinesses) GetByID(_ context.Context, id int64) (*businesses.Business, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, businesses.ErrNotFound
	}
	return &b, nil
}

func (f *fakeBusinesses) GetOwnerID(_ context.Context, id int64) (int64, error) {
	b, ok := f.byID[id]
	if !ok {
		return 0, businesses.ErrNotFound
	}
	return b.OwnerID, nil
}

func (f *fakeBusinesses) ListWithCoordinates(_ context.Context, box geo.BoundingBox, excludeID int64) ([]businesses.Business, error) {
	var out []businesses.Business
	for id, b := range f.byID {
		p, ok := b.Location()
		if id == excludeID || !ok || !box.Contains(p) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// AttachImages is a no-op; stored businesses already carry their images.
func (f *fakeBusinesses) AttachImages(context.Context, []businesses.Business) error {
	return nil
}

func (f *fakeBusinesses) List(_ context.Context, filter businesses.Filter) ([]businesses.Business, int, error) {
	f.lastFilter = &filter
	return []businesses.Business{}, 0, nil
}

// fakeReviews keeps reviews in memory, enforcing one review per user and
// business like the unique constraint does.
type fakeReviews struct {
	reviews.Store
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*reviews.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{byID: map[int64]*reviews.Review{}}
}

func (f *fakeReviews) HasReview(_ context.Context, businessID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rv := range f.byID {
		if rv.BusinessID == businessID && rv.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviews) Create(_ context.Context, rv *reviews.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rv.ID = f.nextID
	rv.CreatedAt, rv.UpdatedAt = time.Now(), time.Now()
	for i := range rv.Images {
		rv.Images[i].ID = int64(i + 1)
		rv.Images[i].ReviewID = rv.ID
	}
	cp := *rv
	f.byID[rv.ID] = &cp
	return nil
}

func (f *fakeReviews) GetByID(_ context.Context, id int64) (*reviews.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.byID[id]
	if !ok {
		return nil, reviews.ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (f *fakeReviews) Update(_ context.Context, id int64, upd reviews.ReviewUpdate) (*reviews.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.byID[id]
	if !ok {
		return nil, reviews.ErrNotFound
	}
	if upd.Rating != nil {
		rv.Rating = *upd.Rating
	}
	if upd.Title != nil {
		rv.Title = *upd.Title
	}
	if upd.Content != nil {
		rv.Content = *upd.Content
	}
	if upd.IsPublished != nil {
		rv.IsPublished = *upd.IsPublished
	}
	rv.IsEdited = true
	cp := *rv
	return &cp, nil
}

func (f *fakeReviews) Delete(_ context.Context, id int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.byID[id]
	if !ok {
		return 0, reviews.ErrNotFound
	}
	delete(f.byID, id)
	return rv.BusinessID, nil
}

func (f *fakeReviews) ListImages(context.Context, int64) ([]reviews.Image, error) {
	return []reviews.Image{}, nil
}

type fakePushTokens struct {
	pushtokens.Store
}

// stubAggregates records recomputes and fails them when err is set.
type stubAggregates struct {
	mu       sync.Mutex
	err      error
	computed []int64
}

func (s *stubAggregates) Recompute(_ context.Context, businessID int64) (ratings.Aggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return ratings.Aggregate{}, s.err
	}
	s.computed = append(s.computed, businessID)
	return ratings.Aggregate{BusinessID: businessID, AverageRating: 4.5, ReviewCount: 2}, nil
}

func (s *stubAggregates) Reconcile(context.Context) (int, error) {
	return 3, nil
}

type countingFailures struct{ n int }

func (c *countingFailures) Inc() { c.n++ }

// fakeImages hands out predictable URLs and records what was destroyed.
type fakeImages struct {
	mu        sync.Mutex
	uploaded  []string
	destroyed chan string
}

func newFakeImages() *fakeImages {
	return &fakeImages{destroyed: make(chan string, 16)}
}

func (f *fakeImages) Upload(_ context.Context, _ io.Reader, folder string, ownerID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/v1/%s/%d-%d.jpg", folder, ownerID, len(f.uploaded)+1)
	f.uploaded = append(f.uploaded, u)
	return u, nil
}

func (f *fakeImages) Destroy(_ context.Context, u string) error {
	f.destroyed <- u
	return nil
}

type testApp struct {
	*application
	users      *fakeUsers
	roles      *fakeRoles
	businesses *fakeBusinesses
	reviews    *fakeReviews
	aggregates *stubAggregates
	failures   *countingFailures
	images     *fakeImages
	jwt        *auth.JWTAuthenticator
	handler    http.Handler
}

const (
	aliceID int64 = 1
	bobID   int64 = 2
	adminID int64 = 3
)

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	logger := zap.NewNop().Sugar()

	ta := &testApp{
		users: &fakeUsers{byID: map[int64]*users.User{
			aliceID: {ID: aliceID, Username: "alice", FirstName: "Alice", IsActive: true},
			bobID:   {ID: bobID, Username: "bob", IsActive: true},
			adminID: {ID: adminID, Username: "root", IsActive: true},
		}},
		roles:      &fakeRoles{admins: map[int64]bool{adminID: true}},
		businesses: &fakeBusinesses{byID: map[int64]businesses.Business{}},
		reviews:    newFakeReviews(),
		aggregates: &stubAggregates{},
		failures:   &countingFailures{},
		images:     newFakeImages(),
		jwt:        auth.NewJWTAuthenticator("access-secret", "refresh-secret", "Vicinity", "Vicinity", time.Hour, 2*time.Hour),
	}

	store := &storage.Container{
		Users:         ta.users,
		Businesses:    ta.businesses,
		Reviews:       ta.reviews,
		AccessControl: ta.roles,
		PushTokens:    &fakePushTokens{},
	}

	ta.application = &application{
		config: config{
			env: "test",
			auth: authConfig{
				basic: basicConfig{user: "ops", pass: "secret"},
			},
		},
		store:         store,
		logger:        logger,
		images:        ta.images,
		authenticator: ta.jwt,
		reviews:       reviews.NewService(ta.reviews, ta.aggregates, logger, ta.failures),
		nearby:        proximity.NewSearcher(ta.businesses),
		aggregates:    ta.aggregates,
	}
	ta.handler = ta.application.mount()
	return ta
}

func (ta *testApp) token(t *testing.T, userID int64) string {
	t.Helper()
	access, _, err := ta.jwt.GenerateTokens(userID, "user")
	require.NoError(t, err)
	return access
}

// do sends body (marshalled when not nil) as userID; userID 0 sends no token.
func (ta *testApp) do(t *testing.T, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(b))
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+ta.token(t, userID))
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

// doMultipart posts fields and one dummy file per name under "images".
func (ta *testApp) doMultipart(t *testing.T, path string, userID int64, fields map[string][]string, files ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(name, v))
		}
	}
	for _, name := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\xff\xd8\xff"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+ta.token(t, userID))
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

// decodeData unwraps the {"data": ...} envelope into v.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v), string(env.Data))
}

func ptr[T any](v T) *T { return &v }
