package pushtokens

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_TokensForUsers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM push_tokens WHERE user_id = ANY\(\$1\)`).
		WithArgs([]int64{1, 2}).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expo_push_token"}).
			AddRow(int64(1), "ExponentPushToken[a]").
			AddRow(int64(1), "ExponentPushToken[b]").
			AddRow(int64(2), "ExponentPushToken[c]"))

	got, err := NewRepository(mock).TokensForUsers(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[int64][]string{
		1: {"ExponentPushToken[a]", "ExponentPushToken[b]"},
		2: {"ExponentPushToken[c]"},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_NoQueryForEmptyInput(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	got, err := repo.TokensForUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_PruneStale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM push_tokens WHERE last_updated`).
		WithArgs("7776000 seconds").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := NewRepository(mock).PruneStale(context.Background(), 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
