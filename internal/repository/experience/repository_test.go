package experience

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

var columns = []string{
	"id", "user_id", "company_id", "company_name", "company_logo", "role",
	"description", "start_year", "end_year", "created_at", "updated_at",
}

func intPtr(v int) *int { return &v }

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, NewRepository(mock)
}

func TestRepository_Insert(t *testing.T) {
	mock, repo := newMock(t)

	rec := dto.ExperienceRecord{
		ID:          "0f2eb2b1-6a25-4d2a-8a7e-2c642e00e5ed",
		UserID:      "u-1",
		CompanyName: "ABA Bank",
		Role:        "Backend Engineer",
		StartYear:   2021,
		EndYear:     dto.EndedIn(2023),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO work_experience")).
		WithArgs(rec.ID, rec.UserID, rec.CompanyID, rec.CompanyName, rec.CompanyLogo, rec.Role, rec.Description, 2021, intPtr(2023)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Insert_PresentStoresNull(t *testing.T) {
	mock, repo := newMock(t)

	rec := dto.ExperienceRecord{ID: "id-1", UserID: "u-1", CompanyName: "A", StartYear: 2020}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO work_experience")).
		WithArgs("id-1", "u-1", (*string)(nil), "A", "", "", "", 2020, (*int)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Insert(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Insert_Duplicate(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO work_experience")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Insert(context.Background(), dto.ExperienceRecord{ID: "id-1"})
	assert.ErrorIs(t, err, dto.ErrAlreadyExists)
}

func TestRepository_Upsert(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("on conflict (id) do update")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Upsert(context.Background(), dto.ExperienceRecord{ID: "id-1", CompanyName: "A"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "missing row", affected: 0, wantErr: dto.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMock(t)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE work_experience SET")).
				WithArgs("id-1", (*string)(nil), "A", "", "", "", 2020, (*int)(nil)).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			err := repo.Update(context.Background(), dto.ExperienceRecord{ID: "id-1", CompanyName: "A", StartYear: 2020})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Delete(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM work_experience WHERE id")).
		WithArgs("id-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM work_experience WHERE id")).
		WithArgs("id-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), "id-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "id-2"), dto.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByUser(t *testing.T) {
	mock, repo := newMock(t)

	companyID := "c-1"
	rows := pgxmock.NewRows(columns).
		AddRow("id-1", "u-1", &companyID, "ABA Bank", "aba.png", "Intern", "", 2019, intPtr(2020), "2024-01-01T00:00:00+00", "2024-01-01T00:00:00+00").
		AddRow("id-2", "u-1", (*string)(nil), "ABA Bank", "aba.png", "Engineer", "", 2020, (*int)(nil), "2024-01-02T00:00:00+00", "2024-01-02T00:00:00+00")

	mock.ExpectQuery(regexp.QuoteMeta("FROM work_experience")).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "id-1", got[0].ID)
	assert.Equal(t, &companyID, got[0].CompanyID)
	assert.Equal(t, dto.EndedIn(2020), got[0].EndYear)
	assert.Nil(t, got[1].CompanyID)
	assert.True(t, got[1].EndYear.IsPresent())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByUser_Empty(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM work_experience")).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows(columns))

	got, err := repo.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []dto.ExperienceRecord{}, got)
}

func TestRepository_ListByUser_QueryError(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM work_experience")).
		WithArgs("u-1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByUser(context.Background(), "u-1")
	assert.ErrorContains(t, err, "connection reset")
}

func TestRepository_GetByID(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM work_experience")).
		WithArgs("id-1").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("id-1", "u-1", (*string)(nil), "A", "", "", "", 2020, intPtr(2021), "", ""))
	mock.ExpectQuery(regexp.QuoteMeta("FROM work_experience")).
		WithArgs("id-2").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "A", got.CompanyName)
	assert.Equal(t, dto.EndedIn(2021), got.EndYear)

	_, err = repo.GetByID(context.Background(), "id-2")
	assert.ErrorIs(t, err, dto.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
