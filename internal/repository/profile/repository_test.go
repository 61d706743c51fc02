package profile

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

var columns = []string{"user_id", "username", "display_name", "avatar_url", "updated_at"}

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, NewRepository(mock)
}

func TestRepository_Create_Duplicate(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("insert into user_profile")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), dto.UserProfile{UserID: "u-1", Username: "sokha"})
	assert.ErrorIs(t, err, dto.ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Upsert(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("on conflict (user_id) do update")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), dto.UserProfile{UserID: "u-1", Username: "sokha"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByUsername(t *testing.T) {
	mock, repo := newMock(t)

	name := "Sokha Chan"
	mock.ExpectQuery(regexp.QuoteMeta("where username = $1")).
		WithArgs("sokha").
		WillReturnRows(pgxmock.NewRows(columns).AddRow("u-1", "sokha", &name, (*string)(nil), "2024-01-01T00:00:00+00"))
	mock.ExpectQuery(regexp.QuoteMeta("where username = $1")).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByUsername(context.Background(), "sokha")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, &name, got.DisplayName)

	_, err = repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, dto.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetProfile(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("where user_id = $1")).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows(columns).AddRow("u-1", "sokha", (*string)(nil), (*string)(nil), ""))

	got, err := repo.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "sokha", got.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("delete from user_profile")).
		WithArgs("u-404").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "u-404"), dto.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListProfiles(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("from user_profile")).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("u-2", "dara", (*string)(nil), (*string)(nil), "").
			AddRow("u-1", "sokha", (*string)(nil), (*string)(nil), ""))

	got, err := repo.ListProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "dara", got[0].Username)
	require.NoError(t, mock.ExpectationsWereMet())
}
