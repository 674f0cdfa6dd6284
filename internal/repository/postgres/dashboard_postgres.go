package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/repository"
)

type dashboardRepository struct{ pool *pgxpool.Pool }

func NewDashboardRepository(pool *pgxpool.Pool) repository.DashboardRepository {
	return &dashboardRepository{pool: pool}
}

// Stats counts in a single round trip. $1 NULL means global counters; otherwise
// projects are those the user belongs to and tasks those assigned to them.
func (r *dashboardRepository) Stats(ctx context.Context, userID *int64, now time.Time) (model.DashboardStats, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.DashboardStats{}, err
	}
	query := `
		WITH scoped_tasks AS (
			SELECT status, due_date
			FROM tasks
			WHERE $1::BIGINT IS NULL OR assigned_to = $1
		)
		SELECT
			(SELECT COUNT(*) FROM projects p
			 WHERE $1::BIGINT IS NULL
			    OR EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = p.id AND pm.user_id = $1)),
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4),
			COUNT(*) FILTER (WHERE status = $5),
			COUNT(*) FILTER (WHERE status <> $5 AND due_date < $2::DATE)
		FROM scoped_tasks
	`
	var s model.DashboardStats
	err := getQ(ctx, r.pool).QueryRow(ctx, query,
		userID, now,
		model.StatusNotStarted, model.StatusInProgress, model.StatusCompleted,
	).Scan(&s.TotalProjects, &s.TotalTasks, &s.NotStarted, &s.InProgress, &s.Completed, &s.Overdue)
	if err != nil {
		// Aggregates always produce a row, so any error here is a driver or SQL failure.
		return model.DashboardStats{}, repository.MapPgError(err)
	}
	return s, nil
}

var _ repository.DashboardRepository = (*dashboardRepository)(nil)
