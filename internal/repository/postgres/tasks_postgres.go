package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/repository"
)

const taskColumns = `id, project_id, assigned_to, title, description, due_date, status, priority, tag, created_at, updated_at`

type taskRepository struct{ pool *pgxpool.Pool }

func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func scanTask(row pgx.Row, extra ...any) (model.Task, error) {
	var t model.Task
	dest := []any{&t.ID, &t.ProjectID, &t.AssignedTo, &t.Title, &t.Description, &t.DueDate, &t.Status, &t.Priority, &t.Tag, &t.CreatedAt, &t.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return t, err
}

func (r *taskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Task{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO tasks (project_id, assigned_to, title, description, due_date, status, priority, tag)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+taskColumns,
		t.ProjectID, t.AssignedTo, t.Title, t.Description, t.DueDate, t.Status, t.Priority, t.Tag,
	)
	out, err := scanTask(row)
	if err != nil {
		return model.Task{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (model.Task, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Task{}, err
	}
	out, err := scanTask(getQ(ctx, r.pool).QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Task{}, repository.ErrNotFound
		}
		return model.Task{}, repository.MapPgError(err)
	}
	return out, nil
}

// Update rewrites every mutable column; the project a task belongs to never changes.
func (r *taskRepository) Update(ctx context.Context, t model.Task) (model.Task, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Task{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`UPDATE tasks
		 SET assigned_to = $2, title = $3, description = $4, due_date = $5,
		     status = $6, priority = $7, tag = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING `+taskColumns,
		t.ID, t.AssignedTo, t.Title, t.Description, t.DueDate, t.Status, t.Priority, t.Tag,
	)
	out, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Task{}, repository.ErrNotFound
		}
		return model.Task{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List pages through a project's tasks, soonest due first.
func (r *taskRepository) List(ctx context.Context, f repository.TaskFilter, p repository.Page) (repository.PageResult[model.Task], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.Task]{}, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+taskColumns+`, COUNT(*) OVER() AS total
		 FROM tasks
		 WHERE project_id = $1 AND ($2::BIGINT IS NULL OR assigned_to = $2)
		 ORDER BY due_date, id
		 LIMIT $3 OFFSET $4`,
		f.ProjectID, f.AssignedTo, limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.Task]{}, repository.MapPgError(err)
	}
	defer rows.Close()
	res := repository.PageResult[model.Task]{Items: make([]model.Task, 0, limit)}
	for rows.Next() {
		var total int
		t, err := scanTask(rows, &total)
		if err != nil {
			return repository.PageResult[model.Task]{}, repository.MapPgError(err)
		}
		res.Items = append(res.Items, t)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.Task]{}, repository.MapPgError(err)
	}
	if len(res.Items) == 0 && offset > 0 {
		err := exec.QueryRow(ctx,
			`SELECT COUNT(*) FROM tasks WHERE project_id = $1 AND ($2::BIGINT IS NULL OR assigned_to = $2)`,
			f.ProjectID, f.AssignedTo,
		).Scan(&res.Total)
		if err != nil {
			return repository.PageResult[model.Task]{}, repository.MapPgError(err)
		}
	}
	return res, nil
}

var _ repository.TaskRepository = (*taskRepository)(nil)
