package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/repository"
)

// projectSelect aggregates member ids next to each project row so callers never issue
// a second query per project.
const projectSelect = `SELECT p.id, p.title, p.description, p.completion_date,
	COALESCE((SELECT array_agg(m.user_id ORDER BY m.user_id) FROM project_members m WHERE m.project_id = p.id), '{}'::BIGINT[]),
	p.created_at, p.updated_at`

type projectRepository struct{ pool *pgxpool.Pool }

func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

func scanProject(row pgx.Row, extra ...any) (model.Project, error) {
	var p model.Project
	dest := []any{&p.ID, &p.Title, &p.Description, &p.CompletionDate, &p.Members, &p.CreatedAt, &p.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return p, err
}

func (r *projectRepository) Create(ctx context.Context, p model.Project) (model.Project, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Project{}, err
	}
	var out model.Project
	err := inTx(ctx, r.pool, func(ctx context.Context, exec q) error {
		var id int64
		if err := exec.QueryRow(ctx,
			`INSERT INTO projects (title, description, completion_date)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			p.Title, p.Description, p.CompletionDate,
		).Scan(&id); err != nil {
			return err
		}
		if err := addMembers(ctx, exec, id, p.Members); err != nil {
			return err
		}
		var err error
		out, err = scanProject(exec.QueryRow(ctx, projectSelect+` FROM projects p WHERE p.id = $1`, id))
		return err
	})
	if err != nil {
		return model.Project{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (model.Project, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Project{}, err
	}
	out, err := scanProject(getQ(ctx, r.pool).QueryRow(ctx, projectSelect+` FROM projects p WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Project{}, repository.ErrNotFound
		}
		return model.Project{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *projectRepository) Update(ctx context.Context, p model.Project, removed, added []int64) (model.Project, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Project{}, err
	}
	var out model.Project
	err := inTx(ctx, r.pool, func(ctx context.Context, exec q) error {
		tag, err := exec.Exec(ctx,
			`UPDATE projects
			 SET title = $2, description = $3, completion_date = $4, updated_at = now()
			 WHERE id = $1`,
			p.ID, p.Title, p.Description, p.CompletionDate,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}
		if len(removed) > 0 {
			if _, err := exec.Exec(ctx,
				`DELETE FROM project_members WHERE project_id = $1 AND user_id = ANY($2)`,
				p.ID, removed,
			); err != nil {
				return err
			}
		}
		if err := addMembers(ctx, exec, p.ID, added); err != nil {
			return err
		}
		out, err = scanProject(exec.QueryRow(ctx, projectSelect+` FROM projects p WHERE p.id = $1`, p.ID))
		return err
	})
	if err != nil {
		return model.Project{}, repository.MapPgError(err)
	}
	return out, nil
}

func addMembers(ctx context.Context, exec q, projectID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := exec.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id)
		 SELECT $1, unnest($2::BIGINT[])
		 ON CONFLICT DO NOTHING`,
		projectID, userIDs,
	)
	return err
}

// Delete removes the project; members and tasks go with it through ON DELETE CASCADE.
func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *projectRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Project], error) {
	return r.list(ctx,
		projectSelect+`, COUNT(*) OVER() AS total
		 FROM projects p
		 ORDER BY p.id
		 LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM projects`,
		p,
	)
}

func (r *projectRepository) ListForUser(ctx context.Context, userID int64, p repository.Page) (repository.PageResult[model.Project], error) {
	return r.list(ctx,
		projectSelect+`, COUNT(*) OVER() AS total
		 FROM projects p
		 JOIN project_members pm ON pm.project_id = p.id AND pm.user_id = $3
		 ORDER BY p.id
		 LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM project_members WHERE user_id = $1`,
		p, userID,
	)
}

func (r *projectRepository) list(ctx context.Context, query, countQuery string, p repository.Page, args ...any) (repository.PageResult[model.Project], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Project]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, query, append([]any{limit, offset}, args...)...)
	if err != nil {
		return repository.PageResult[model.Project]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Project]{Items: make([]model.Project, 0, limit)}
	for rows.Next() {
		var total int
		it, err := scanProject(rows, &total)
		if err != nil {
			return repository.PageResult[model.Project]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, it)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Project]{}, repository.MapPgError(err)
	}
	if len(res.Items) == 0 && offset > 0 {
		if err := exec.QueryRow(ctx, countQuery, args...).Scan(&res.Total); err != nil {
			return repository.PageResult[model.Project]{}, repository.MapPgError(err)
		}
	}
	return res, nil
}

func (r *projectRepository) Members(ctx context.Context, projectID int64) ([]model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT u.id, u.first_name, u.last_name, u.address, u.email, u.is_admin, u.password_hash, u.created_at, u.updated_at
		 FROM users u
		 JOIN project_members pm ON pm.user_id = u.id
		 WHERE pm.project_id = $1
		 ORDER BY u.first_name, u.last_name, u.id`,
		projectID,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, repository.MapPgError(err)
	}
	return out, nil
}

func (r *projectRepository) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	if err := ensurePool(r.pool); err != nil {
		return false, err
	}
	var ok bool
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`,
		projectID, userID,
	).Scan(&ok)
	if err != nil {
		return false, repository.MapPgError(err)
	}
	return ok, nil
}

var _ repository.ProjectRepository = (*projectRepository)(nil)
