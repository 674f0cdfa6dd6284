package repository

import (
	"context"
	"time"

	"github.com/maxviazov/taskboard-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager runs fn in a transaction carried through ctx; repositories called with that
// ctx join it automatically.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// UserRepository declares persistence operations for accounts.
// GetByEmail matches case-insensitively.
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, u model.User) (model.User, error)
	List(ctx context.Context, p Page) (PageResult[model.User], error)
	Count(ctx context.Context) (int, error)
	// LockSignups serializes admin bootstrap: it blocks until no other transaction holds
	// the lock and keeps it until the caller's transaction ends. Outside TxManager.WithinTx
	// it fails with ErrTxRequired.
	LockSignups(ctx context.Context) error
}

// ProjectRepository declares persistence operations for projects and their members.
type ProjectRepository interface {
	// Create inserts the project and its member rows.
	Create(ctx context.Context, p model.Project) (model.Project, error)
	GetByID(ctx context.Context, id int64) (model.Project, error)
	// Update rewrites the project fields, deletes removed members and inserts added ones.
	Update(ctx context.Context, p model.Project, removed, added []int64) (model.Project, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, p Page) (PageResult[model.Project], error)
	ListForUser(ctx context.Context, userID int64, p Page) (PageResult[model.Project], error)
	Members(ctx context.Context, projectID int64) ([]model.User, error)
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)
}

// TaskFilter narrows a project task listing. A nil AssignedTo lists every task.
type TaskFilter struct {
	ProjectID  int64
	AssignedTo *int64
}

// TaskRepository declares persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	GetByID(ctx context.Context, id int64) (model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f TaskFilter, p Page) (PageResult[model.Task], error)
}

// DashboardRepository computes summary counters. A nil userID means every project and
// task; otherwise only the user's projects and the tasks assigned to them. Tasks due
// before now and not completed count as overdue.
type DashboardRepository interface {
	Stats(ctx context.Context, userID *int64, now time.Time) (model.DashboardStats, error)
}
