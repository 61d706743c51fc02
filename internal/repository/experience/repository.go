package experience

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/KhmerCoders/khmercoders-web/internal/dto"
)

type PgxPoolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const uniqueViolation = "23505"

const selectColumns = `
SELECT id::text,
	   user_id,
	   company_id,
	   company_name,
	   company_logo,
	   role,
	   description,
	   start_year,
	   end_year,
	   to_char(created_at,'YYYY-MM-DD"T"HH24:MI:SSOF'),
	   to_char(updated_at,'YYYY-MM-DD"T"HH24:MI:SSOF')
FROM work_experience
`

type Repository struct {
	pool PgxPoolIface
}

func NewRepository(pool PgxPoolIface) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, rec dto.ExperienceRecord) error {
	q := `
INSERT INTO work_experience
	(id, user_id, company_id, company_name, company_logo, role, description, start_year, end_year, created_at, updated_at)
VALUES
	($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW());
`
	_, err := r.pool.Exec(ctx, q,
		rec.ID, rec.UserID, rec.CompanyID, rec.CompanyName, rec.CompanyLogo,
		rec.Role, rec.Description, rec.StartYear, rec.EndYear.Ptr(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return dto.ErrAlreadyExists
		}

		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

// Upsert inserts the record or replaces every field of the existing one with
// the same id.
func (r *Repository) Upsert(ctx context.Context, rec dto.ExperienceRecord) error {
	q := `
insert into work_experience
	(id, user_id, company_id, company_name, company_logo, role, description, start_year, end_year, created_at, updated_at)
values
	(@id::uuid, @user_id, @company_id, @company_name, @company_logo, @role, @description, @start_year, @end_year, now(), now())
on conflict (id) do update set
  user_id      = excluded.user_id,
  company_id   = excluded.company_id,
  company_name = excluded.company_name,
  company_logo = excluded.company_logo,
  role         = excluded.role,
  description  = excluded.description,
  start_year   = excluded.start_year,
  end_year     = excluded.end_year,
  updated_at   = now();
`
	args := pgx.NamedArgs{
		"id":           rec.ID,
		"user_id":      rec.UserID,
		"company_id":   rec.CompanyID,
		"company_name": rec.CompanyName,
		"company_logo": rec.CompanyLogo,
		"role":         rec.Role,
		"description":  rec.Description,
		"start_year":   rec.StartYear,
		"end_year":     rec.EndYear.Ptr(),
	}

	if _, err := r.pool.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (r *Repository) Update(ctx context.Context, rec dto.ExperienceRecord) error {
	q := `
UPDATE work_experience SET
	company_id = $2,
	company_name = $3,
	company_logo = $4,
	role = $5,
	description = $6,
	start_year = $7,
	end_year = $8,
	updated_at = NOW()
WHERE id = $1::uuid`
	tag, err := r.pool.Exec(ctx, q,
		rec.ID, rec.CompanyID, rec.CompanyName, rec.CompanyLogo,
		rec.Role, rec.Description, rec.StartYear, rec.EndYear.Ptr(),
	)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dto.ErrNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	q := `DELETE FROM work_experience WHERE id = $1::uuid`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dto.ErrNotFound
	}

	return nil
}

func (r *Repository) DeleteByUser(ctx context.Context, userID string) error {
	q := `DELETE FROM work_experience WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, userID); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]dto.ExperienceRecord, error) {
	q := selectColumns + `
WHERE user_id = $1
ORDER BY start_year, id
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	out := []dto.ExperienceRecord{}
	for rows.Next() {
		it, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*dto.ExperienceRecord, error) {
	q := selectColumns + `WHERE id = $1::uuid;`

	it, err := scanRecord(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dto.ErrNotFound
		}

		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	return &it, nil
}

func scanRecord(row pgx.Row) (dto.ExperienceRecord, error) {
	var (
		it      dto.ExperienceRecord
		endYear *int
	)

	err := row.Scan(
		&it.ID,
		&it.UserID,
		&it.CompanyID,
		&it.CompanyName,
		&it.CompanyLogo,
		&it.Role,
		&it.Description,
		&it.StartYear,
		&endYear,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		return dto.ExperienceRecord{}, err
	}

	it.EndYear = dto.EndYearFromPtr(endYear)

	return it, nil
}
