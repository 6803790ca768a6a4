package reviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestRepository_Create_MapsConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"second review by the same user", &pgconn.PgError{Code: "23505", ConstraintName: "reviews_user_id_business_id_key"}, ErrDuplicateReview},
		{"unknown business", &pgconn.PgError{Code: "23503", ConstraintName: "reviews_business_id_fkey"}, ErrBusinessNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO reviews`).
				WithArgs(int64(3), int64(8), 5, "t", "c", true).
				WillReturnError(tt.err)
			mock.ExpectRollback()

			err := repo.Create(context.Background(), &Review{BusinessID: 3, UserID: 8, Rating: 5, Title: "t", Content: "c", IsPublished: true})
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Create_WithImages(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(int64(3), int64(8), 4, "t", "c", true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_edited", "created_at", "updated_at"}).
			AddRow(int64(21), false, now, now))
	mock.ExpectQuery(`INSERT INTO review_images`).
		WithArgs(int64(21), "https://img/a.jpg", "front").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	mock.ExpectQuery(`INSERT INTO review_images`).
		WithArgs(int64(21), "https://img/b.jpg", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), now))
	mock.ExpectCommit()

	rv := &Review{
		BusinessID: 3, UserID: 8, Rating: 4, Title: "t", Content: "c", IsPublished: true,
		Images: []Image{{ImageURL: "https://img/a.jpg", Caption: "front"}, {ImageURL: "https://img/b.jpg"}},
	}
	require.NoError(t, repo.Create(context.Background(), rv))
	assert.Equal(t, int64(21), rv.ID)
	require.Len(t, rv.Images, 2)
	assert.Equal(t, int64(21), rv.Images[1].ReviewID)
	assert.Equal(t, int64(2), rv.Images[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_ImageFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reviews`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_edited", "created_at", "updated_at"}).
			AddRow(int64(21), false, now, now))
	mock.ExpectQuery(`INSERT INTO review_images`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &Review{
		BusinessID: 3, UserID: 8, Rating: 4, Title: "t", Content: "c", IsPublished: true,
		Images: []Image{{ImageURL: "https://img/a.jpg"}},
	})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_MarksEdited(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	rating := 2

	mock.ExpectQuery(`UPDATE reviews SET is_edited = true, updated_at = NOW\(\), rating = \$1 WHERE id = \$2`).
		WithArgs(2, int64(21)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "business_id", "user_id", "user_name", "rating", "title", "content",
			"is_published", "is_edited", "created_at", "updated_at",
		}).AddRow(int64(21), int64(3), int64(8), "Sita Rai", 2, "t", "c", true, true, now, now))
	mock.ExpectQuery(`FROM review_images`).
		WithArgs(int64(21)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "review_id", "image_url", "caption", "created_at"}))

	got, err := repo.Update(context.Background(), 21, ReviewUpdate{Rating: &rating})
	require.NoError(t, err)
	assert.True(t, got.IsEdited)
	assert.Equal(t, 2, got.Rating)
	assert.Empty(t, got.Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete_ReturnsBusiness(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`DELETE FROM reviews WHERE id = \$1 RETURNING business_id`).
		WithArgs(int64(21)).
		WillReturnRows(pgxmock.NewRows([]string{"business_id"}).AddRow(int64(3)))
	mock.ExpectQuery(`DELETE FROM reviews`).
		WithArgs(int64(22)).
		WillReturnError(pgx.ErrNoRows)

	businessID, err := repo.Delete(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, int64(3), businessID)

	_, err = repo.Delete(context.Background(), 22)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
