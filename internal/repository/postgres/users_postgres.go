package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/repository"
)

const userColumns = `id, first_name, last_name, address, email, is_admin, password_hash, created_at, updated_at`

type userRepository struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func scanUser(row pgx.Row, extra ...any) (model.User, error) {
	var u model.User
	dest := []any{&u.ID, &u.FirstName, &u.LastName, &u.Address, &u.Email, &u.IsAdmin, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return u, err
}

func (r *userRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, address, email, is_admin, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		u.FirstName, u.LastName, u.Address, u.Email, u.IsAdmin, u.PasswordHash,
	)
	out, err := scanUser(row)
	if err != nil {
		return model.User{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	out, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	out, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, repository.MapPgError(err)
	}
	return out, nil
}

// Update rewrites the profile fields. The admin flag is never changed here and an empty
// PasswordHash keeps the stored one.
func (r *userRepository) Update(ctx context.Context, u model.User) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`UPDATE users
		 SET first_name = $2, last_name = $3, address = $4, email = $5,
		     password_hash = COALESCE(NULLIF($6, ''), password_hash),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		u.ID, u.FirstName, u.LastName, u.Address, u.Email, u.PasswordHash,
	)
	out, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, repository.ErrNotFound
		}
		return model.User{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *userRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.User], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.User]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+userColumns+`, COUNT(*) OVER() AS total
		 FROM users
		 ORDER BY id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.User]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.User]{Items: make([]model.User, 0, limit)}
	for rows.Next() {
		var total int
		u, err := scanUser(rows, &total)
		if err != nil {
			return repository.PageResult[model.User]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, u)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.User]{}, repository.MapPgError(err)
	}
	// A page past the end has no rows to carry the window count.
	if len(res.Items) == 0 && offset > 0 {
		if res.Total, err = r.Count(ctx); err != nil {
			return repository.PageResult[model.User]{}, err
		}
	}
	return res, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	var n int
	if err := getQ(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, repository.MapPgError(err)
	}
	return n, nil
}

// signupLockKey is the pg_advisory_xact_lock key shared by every registration that may
// bootstrap the first admin.
const signupLockKey int64 = 0x7461736b73696775

func (r *userRepository) LockSignups(ctx context.Context) error {
	tx, ok := txFrom(ctx)
	if !ok {
		return repository.ErrTxRequired
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, signupLockKey); err != nil {
		return repository.MapPgError(err)
	}
	return nil
}

var _ repository.UserRepository = (*userRepository)(nil)
