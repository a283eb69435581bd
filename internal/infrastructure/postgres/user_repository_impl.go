package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/entity"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/repository"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
)

const uniqueViolation = "23505"

const selectUser = `SELECT id, email, name, role, created_at, updated_at FROM users`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	rec := u.ToPersistence()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, name = EXCLUDED.name, role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
		RETURNING id, email, name, role, created_at, updated_at
	`, rec.ID, rec.Email, rec.Name, rec.Role, rec.CreatedAt, rec.UpdatedAt)

	saved, err := scanUser(row)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return saved, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id vo.UserID) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE id = $1`, id.Value()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email vo.Email) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE lower(email) = $1`, email.Normalized()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// FindAll lists users newest first.
func (r *UserRepository) FindAll(ctx context.Context, p repository.Pagination) (*repository.Page[*entity.User], error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	if p.Limit <= 0 {
		return &repository.Page[*entity.User]{Data: []*entity.User{}, Meta: repository.NewPageMeta(total, p)}, nil
	}

	rows, err := r.pool.Query(ctx, selectUser+` ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, p.Limit, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	data := make([]*entity.User, 0, p.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		data = append(data, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.Page[*entity.User]{Data: data, Meta: repository.NewPageMeta(total, p)}, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) (*entity.User, error) {
	rec := u.ToPersistence()
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = $2, name = $3, role = $4, updated_at = $5
		WHERE id = $1
		RETURNING id, email, name, role, created_at, updated_at
	`, rec.ID, rec.Email, rec.Name, rec.Role, rec.UpdatedAt)

	updated, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id vo.UserID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.Value())
	return err
}

func (r *UserRepository) Exists(ctx context.Context, id vo.UserID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id.Value()).Scan(&ok)
	return ok, err
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email vo.Email) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = $1)`, email.Normalized()).Scan(&ok)
	return ok, err
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var rec entity.Record
	if err := row.Scan(&rec.ID, &rec.Email, &rec.Name, &rec.Role, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return entity.Reconstitute(rec)
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateEmail, pgErr.ConstraintName)
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
