package profile

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

type Repository struct {
	pool PgxPoolIface
}

func NewRepository(pool PgxPoolIface) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p dto.UserProfile) error {
	query := `
insert into user_profile
  (user_id, username, display_name, avatar_url, updated_at)
values
  (@user_id, @username, @display_name, @avatar_url, now());
`
	args := pgx.NamedArgs{
		"user_id":      p.UserID,
		"username":     p.Username,
		"display_name": p.DisplayName,
		"avatar_url":   p.AvatarURL,
	}

	_, err := r.pool.Exec(ctx, query, args)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return dto.ErrAlreadyExists
		}

		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

// Upsert is used by the profile consumer: the latest event wins.
func (r *Repository) Upsert(ctx context.Context, p dto.UserProfile) error {
	query := `
insert into user_profile (user_id, username, display_name, avatar_url, updated_at)
values (@user_id, @username, @display_name, @avatar_url, now())
on conflict (user_id) do update set
  username     = excluded.username,
  display_name = excluded.display_name,
  avatar_url   = excluded.avatar_url,
  updated_at   = now();
`
	args := pgx.NamedArgs{
		"user_id":      p.UserID,
		"username":     p.Username,
		"display_name": p.DisplayName,
		"avatar_url":   p.AvatarURL,
	}

	if _, err := r.pool.Exec(ctx, query, args); err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return dto.ErrAlreadyExists
		}

		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `delete from user_profile where user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dto.ErrNotFound
	}

	return nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (*dto.UserProfile, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*dto.UserProfile, error) {
	return r.getBy(ctx, "username", username)
}

func (r *Repository) getBy(ctx context.Context, column, value string) (*dto.UserProfile, error) {
	// column is one of the two constants above, never user input
	query := `
select user_id,
       username,
       display_name,
       avatar_url,
       to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SSOF')
from user_profile
where ` + column + ` = $1;
`
	row := r.pool.QueryRow(ctx, query, value)

	var out dto.UserProfile
	err := row.Scan(&out.UserID, &out.Username, &out.DisplayName, &out.AvatarURL, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dto.ErrNotFound
		}

		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	return &out, nil
}

func (r *Repository) ListProfiles(ctx context.Context) ([]dto.UserProfile, error) {
	query := `
select user_id,
       username,
       display_name,
       avatar_url,
       to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SSOF')
from user_profile
order by updated_at desc, user_id
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	out := []dto.UserProfile{}
	for rows.Next() {
		var p dto.UserProfile

		if err := rows.Scan(&p.UserID, &p.Username, &p.DisplayName, &p.AvatarURL, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return out, nil
}
