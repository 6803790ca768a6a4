package reviews

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"vicinity/internal/domain/ratings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, rv *Review) error {
	args := m.Called(ctx, rv)
	return args.Error(0)
}

func (m *mockStore) GetByID(ctx context.Context, id int64) (*Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, id int64, upd ReviewUpdate) (*Review, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, f Filter) ([]Review, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]Review), args.Int(1), args.Error(2)
}

func (m *mockStore) ListPublished(ctx context.Context, businessID int64) ([]Review, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).([]Review), args.Error(1)
}

func (m *mockStore) HasReview(ctx context.Context, businessID, userID int64) (bool, error) {
	args := m.Called(ctx, businessID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) AddImages(ctx context.Context, reviewID int64, images []Image) ([]Image, error) {
	args := m.Called(ctx, reviewID, images)
	return args.Get(0).([]Image), args.Error(1)
}

func (m *mockStore) ListImages(ctx context.Context, reviewID int64) ([]Image, error) {
	args := m.Called(ctx, reviewID)
	return args.Get(0).([]Image), args.Error(1)
}

func (m *mockStore) DeleteImage(ctx context.Context, reviewID, imageID int64) (*Image, error) {
	args := m.Called(ctx, reviewID, imageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Image), args.Error(1)
}

type mockAggregator struct {
	mock.Mock
}

func (m *mockAggregator) Recompute(ctx context.Context, businessID int64) (ratings.Aggregate, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).(ratings.Aggregate), args.Error(1)
}

type countingFailures struct{ n int }

func (c *countingFailures) Inc() { c.n++ }

type recordingListener struct {
	changes []Change
}

func (l *recordingListener) ReviewChanged(_ context.Context, c Change) {
	l.changes = append(l.changes, c)
}

func newTestService(store Store, agg Aggregator) (*Service, *countingFailures, *recordingListener) {
	failures := &countingFailures{}
	listener := &recordingListener{}
	return NewService(store, agg, zap.NewNop().Sugar(), failures, listener), failures, listener
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	agg := new(mockAggregator)
	svc, failures, listener := newTestService(store, agg)

	in := &Review{BusinessID: 3, UserID: 8, Rating: 4, Title: "Good", IsPublished: true}
	store.On("HasReview", ctx, int64(3), int64(8)).Return(false, nil)
	store.On("Create", ctx, in).Run(func(args mock.Arguments) {
		args.Get(1).(*Review).ID = 21
	}).Return(nil)
	agg.On("Recompute", mock.Anything, int64(3)).
		Return(ratings.Aggregate{BusinessID: 3, AverageRating: 4, ReviewCount: 1}, nil)

	got, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(21), got.ID)
	assert.Zero(t, failures.n)

	require.Len(t, listener.changes, 1)
	assert.Equal(t, ReviewCreated, listener.changes[0].Kind)
	require.NotNil(t, listener.changes[0].Aggregate)
	assert.Equal(t, 1, listener.changes[0].Aggregate.ReviewCount)

	store.AssertExpectations(t)
	agg.AssertExpectations(t)
}

func TestService_Create_InvalidRating(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		store := new(mockStore)
		agg := new(mockAggregator)
		svc, _, _ := newTestService(store, agg)

		_, err := svc.Create(context.Background(), &Review{BusinessID: 1, UserID: 1, Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestService_Create_Duplicate(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	agg := new(mockAggregator)
	svc, _, listener := newTestService(store, agg)

	store.On("HasReview", ctx, int64(3), int64(8)).Return(true, nil)

	_, err := svc.Create(ctx, &Review{BusinessID: 3, UserID: 8, Rating: 5})
	assert.ErrorIs(t, err, ErrDuplicateReview)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	agg.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
	assert.Empty(t, listener.changes)
}

func TestService_Create_StoreFailureSkipsAggregator(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	agg := new(mockAggregator)
	svc, _, _ := newTestService(store, agg)

	boom := errors.New("connection refused")
	store.On("HasReview", ctx, int64(3), int64(8)).Return(false, nil)
	store.On("Create", ctx, mock.Anything).Return(boom)

	_, err := svc.Create(ctx, &Review{BusinessID: 3, UserID: 8, Rating: 5})
	assert.ErrorIs(t, err, boom)
	agg.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
}

func TestService_Create_AggregateFailureKeepsReview(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	agg := new(mockAggregator)
	svc, failures, listener := newTestService(store, agg)

	cause := errors.New("lock timeout")
	store.On("HasReview", ctx, int64(3), int64(8)).Return(false, nil)
	store.On("Create", ctx, mock.Anything).Return(nil)
	agg.On("Recompute", mock.Anything, int64(3)).Return(ratings.Aggregate{}, cause)

	got, err := svc.Create(ctx, &Review{BusinessID: 3, UserID: 8, Rating: 5})
	require.NotNil(t, got)

	var aggErr *ratings.AggregateError
	require.ErrorAs(t, err, &aggErr)
	assert.Equal(t, int64(3), aggErr.BusinessID)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, failures.n)

	require.Len(t, listener.changes, 1)
	assert.Nil(t, listener.changes[0].Aggregate)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	author := Actor{UserID: 8}
	current := &Review{ID: 21, BusinessID: 3, UserID: 8, Rating: 4, Title: "Good", IsPublished: true}

	t.Run("text edit does not recompute", func(t *testing.T) {
		store := new(mockStore)
		agg := new(mockAggregator)
		svc, _, _ := newTestService(store, agg)

		title := "Great"
		upd := ReviewUpdate{Title: &title}
		edited := *current
		edited.Title, edited.IsEdited = title, true
		store.On("GetByID", ctx, int64(21)).Return(current, nil)
		store.On("Update", ctx, int64(21), upd).Return(&edited, nil)

		got, err := svc.Update(ctx, author, 21, upd)
		require.NoError(t, err)
		assert.True(t, got.IsEdited)
		agg.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
	})

	t.Run("unpublish recomputes", func(t *testing.T) {
		store := new(mockStore)
		agg := new(mockAggregator)
		svc, _, _ := newTestService(store, agg)

		off := false
		upd := ReviewUpdate{IsPublished: &off}
		hidden := *current
		hidden.IsPublished, hidden.IsEdited = false, true
		store.On("GetByID", ctx, int64(21)).Return(current, nil)
		store.On("Update", ctx, int64(21), upd).Return(&hidden, nil)
		agg.On("Recompute", mock.Anything, int64(3)).Return(ratings.Aggregate{BusinessID: 3}, nil)

		_, err := svc.Update(ctx, author, 21, upd)
		require.NoError(t, err)
		agg.AssertExpectations(t)
	})

	t.Run("rating write recomputes even when the read looked unchanged", func(t *testing.T) {
		store := new(mockStore)
		agg := new(mockAggregator)
		svc, _, listener := newTestService(store, agg)

		// the read sees 3; a concurrent edit stores 5 before this write puts 3 back
		stale := &Review{ID: 21, BusinessID: 3, UserID: 8, Rating: 3, IsPublished: true}
		rating := 3
		upd := ReviewUpdate{Rating: &rating}
		written := *stale
		written.IsEdited = true
		store.On("GetByID", ctx, int64(21)).Return(stale, nil)
		store.On("Update", ctx, int64(21), upd).Return(&written, nil)
		agg.On("Recompute", mock.Anything, int64(3)).
			Return(ratings.Aggregate{BusinessID: 3, AverageRating: 3, ReviewCount: 1}, nil).Once()

		_, err := svc.Update(ctx, author, 21, upd)
		require.NoError(t, err)
		agg.AssertNumberOfCalls(t, "Recompute", 1)
		require.Len(t, listener.changes, 1)
		require.NotNil(t, listener.changes[0].Aggregate)
		assert.Equal(t, 3.0, listener.changes[0].Aggregate.AverageRating)
	})

	t.Run("only the author may edit", func(t *testing.T) {
		store := new(mockStore)
		agg := new(mockAggregator)
		svc, _, _ := newTestService(store, agg)

		rating := 1
		store.On("GetByID", ctx, int64(21)).Return(current, nil)

		_, err := svc.Update(ctx, Actor{UserID: 9, IsAdmin: true}, 21, ReviewUpdate{Rating: &rating})
		assert.ErrorIs(t, err, ErrForbidden)
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty update", func(t *testing.T) {
		svc, _, _ := newTestService(new(mockStore), new(mockAggregator))
		_, err := svc.Update(ctx, author, 21, ReviewUpdate{})
		assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	})

	t.Run("rating out of range", func(t *testing.T) {
		svc, _, _ := newTestService(new(mockStore), new(mockAggregator))
		bad := 9
		_, err := svc.Update(ctx, author, 21, ReviewUpdate{Rating: &bad})
		assert.ErrorIs(t, err, ErrInvalidRating)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	current := &Review{ID: 21, BusinessID: 3, UserID: 8, Rating: 2, IsPublished: true}

	t.Run("admin may delete", func(t *testing.T) {
		store := new(mockStore)
		agg := new(mockAggregator)
		svc, _, listener := newTestService(store, agg)

		store.On("GetByID", ctx, int64(21)).Return(current, nil)
		store.On("Delete", ctx, int64(21)).Return(int64(3), nil)
		agg.On("Recompute", mock.Anything, int64(3)).Return(ratings.Aggregate{BusinessID: 3}, nil)

		require.NoError(t, svc.Delete(ctx, Actor{UserID: 1, IsAdmin: true}, 21))
		agg.AssertExpectations(t)
		require.Len(t, listener.changes, 1)
		assert.Equal(t, ReviewDeleted, listener.changes[0].Kind)
	})

	t.Run("stranger may not", func(t *testing.T) {
		store := new(mockStore)
		agg := new(mockAggregator)
		svc, _, _ := newTestService(store, agg)

		store.On("GetByID", ctx, int64(21)).Return(current, nil)

		err := svc.Delete(ctx, Actor{UserID: 99}, 21)
		assert.ErrorIs(t, err, ErrForbidden)
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing review", func(t *testing.T) {
		store := new(mockStore)
		svc, _, _ := newTestService(store, new(mockAggregator))

		store.On("GetByID", ctx, int64(5)).Return(nil, ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, Actor{UserID: 8}, 5), ErrNotFound)
	})
}

// memStore keeps reviews in memory; memAggregator derives aggregates from it
// the same way the SQL does.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	reviews map[int64]*Review
}

func newMemStore() *memStore {
	return &memStore{reviews: map[int64]*Review{}}
}

func (s *memStore) Create(_ context.Context, rv *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reviews {
		if existing.UserID == rv.UserID && existing.BusinessID == rv.BusinessID {
			return ErrDuplicateReview
		}
	}
	s.nextID++
	rv.ID = s.nextID
	rv.CreatedAt = time.Now()
	rv.UpdatedAt = rv.CreatedAt
	cp := *rv
	s.reviews[rv.ID] = &cp
	return nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (s *memStore) Update(_ context.Context, id int64, upd ReviewUpdate) (*Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.reviews[id]
	if !ok {
		return nil, ErrNotFound
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

func (s *memStore) Delete(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rv, ok := s.reviews[id]
	if !ok {
		return 0, ErrNotFound
	}
	delete(s.reviews, id)
	return rv.BusinessID, nil
}

func (s *memStore) List(context.Context, Filter) ([]Review, int, error) { return nil, 0, nil }

func (s *memStore) ListPublished(_ context.Context, businessID int64) ([]Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Review
	for _, rv := range s.reviews {
		if rv.BusinessID == businessID && rv.IsPublished {
			out = append(out, *rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) HasReview(_ context.Context, businessID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rv := range s.reviews {
		if rv.UserID == userID && rv.BusinessID == businessID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) AddImages(context.Context, int64, []Image) ([]Image, error) { return nil, nil }
func (s *memStore) ListImages(context.Context, int64) ([]Image, error)         { return nil, nil }
func (s *memStore) DeleteImage(context.Context, int64, int64) (*Image, error)  { return nil, nil }

type memAggregator struct {
	store  *memStore
	stored map[int64]ratings.Aggregate
}

func (a *memAggregator) Recompute(ctx context.Context, businessID int64) (ratings.Aggregate, error) {
	published, _ := a.store.ListPublished(ctx, businessID)
	list := make([]int, len(published))
	for i, rv := range published {
		list[i] = rv.Rating
	}
	agg := ratings.Summarize(businessID, list)
	a.stored[businessID] = agg
	return agg, nil
}

func TestService_AggregateLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	agg := &memAggregator{store: store, stored: map[int64]ratings.Aggregate{}}
	svc, _, _ := newTestService(store, agg)

	const business = int64(1)
	var ids []int64
	for i, rating := range []int{5, 4, 3} {
		rv, err := svc.Create(ctx, &Review{BusinessID: business, UserID: int64(i + 1), Rating: rating, IsPublished: true})
		require.NoError(t, err)
		ids = append(ids, rv.ID)
	}
	assert.Equal(t, ratings.Aggregate{BusinessID: business, AverageRating: 4.00, ReviewCount: 3}, agg.stored[business])

	// hiding the 3 leaves 5 and 4
	off := false
	_, err := svc.Update(ctx, Actor{UserID: 3}, ids[2], ReviewUpdate{IsPublished: &off})
	require.NoError(t, err)
	assert.Equal(t, 4.50, agg.stored[business].AverageRating)
	assert.Equal(t, 2, agg.stored[business].ReviewCount)

	// hidden reviews still block a second review by the same user
	_, err = svc.Create(ctx, &Review{BusinessID: business, UserID: 3, Rating: 1, IsPublished: true})
	assert.ErrorIs(t, err, ErrDuplicateReview)

	four := 4
	_, err = svc.Update(ctx, Actor{UserID: 1}, ids[0], ReviewUpdate{Rating: &four})
	require.NoError(t, err)
	assert.Equal(t, 4.00, agg.stored[business].AverageRating)

	require.NoError(t, svc.Delete(ctx, Actor{UserID: 1}, ids[0]))
	require.NoError(t, svc.Delete(ctx, Actor{UserID: 2}, ids[1]))
	assert.Equal(t, ratings.Aggregate{BusinessID: business}, agg.stored[business])
}

// interleavingStore runs afterRead once, right after the first GetByID, to
// land another write between an update's read and its write.
type interleavingStore struct {
	*memStore
	afterRead func()
}

func (s *interleavingStore) GetByID(ctx context.Context, id int64) (*Review, error) {
	rv, err := s.memStore.GetByID(ctx, id)
	if hook := s.afterRead; hook != nil {
		s.afterRead = nil
		hook()
	}
	return rv, err
}

func TestService_UpdateAfterConcurrentEdit(t *testing.T) {
	ctx := context.Background()
	mem := newMemStore()
	store := &interleavingStore{memStore: mem}
	agg := &memAggregator{store: mem, stored: map[int64]ratings.Aggregate{}}
	svc, _, _ := newTestService(store, agg)

	const business = int64(1)
	author := Actor{UserID: 1}
	rv, err := svc.Create(ctx, &Review{BusinessID: business, UserID: 1, Rating: 3, IsPublished: true})
	require.NoError(t, err)

	five, three := 5, 3
	store.afterRead = func() {
		_, err := svc.Update(ctx, author, rv.ID, ReviewUpdate{Rating: &five})
		require.NoError(t, err)
		require.Equal(t, 5.00, agg.stored[business].AverageRating)
	}

	_, err = svc.Update(ctx, author, rv.ID, ReviewUpdate{Rating: &three})
	require.NoError(t, err)

	stored, err := mem.GetByID(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Rating)
	assert.Equal(t, ratings.Aggregate{BusinessID: business, AverageRating: 3.00, ReviewCount: 1}, agg.stored[business])
}
