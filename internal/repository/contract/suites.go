// Package contract holds behavior suites every repository implementation must pass.
// Storage backends wire their own factories to these runners.
package contract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/repository"
)

// Repos is the set of repositories a backend hands to the suites. All of them must share
// the same underlying store and start empty.
type Repos struct {
	Users     repository.UserRepository
	Projects  repository.ProjectRepository
	Tasks     repository.TaskRepository
	Dashboard repository.DashboardRepository
	Tx        repository.TxManager
}

type Factory func(t *testing.T) (Repos, func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func seedUser(t *testing.T, users repository.UserRepository, email string) model.User {
	t.Helper()
	u, err := users.Create(context.Background(), model.User{
		FirstName:    "Test",
		LastName:     email,
		Email:        email,
		PasswordHash: "$2a$10$hash",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func seedProject(t *testing.T, projects repository.ProjectRepository, title string, members ...int64) model.Project {
	t.Helper()
	p, err := projects.Create(context.Background(), model.Project{
		Title:          title,
		CompletionDate: day(2030, time.January, 1),
		Members:        members,
	})
	if err != nil {
		t.Fatalf("seed project %s: %v", title, err)
	}
	return p
}

func RunUserRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created := seedUser(t, r.Users, "ada@example.com")
		got, err := r.Users.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Email != "ada@example.com" || got.PasswordHash == "" || got.IsAdmin {
			t.Fatalf("mismatch: %+v", got)
		}
		byEmail, err := r.Users.GetByEmail(ctx, "ADA@example.com")
		if err != nil || byEmail.ID != created.ID {
			t.Fatalf("get by email (case-insensitive): %+v %v", byEmail, err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		if _, err := r.Users.GetByID(context.Background(), 999999); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := r.Users.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate_email_conflict", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		seedUser(t, r.Users, "dup@example.com")
		_, err := r.Users.Create(context.Background(), model.User{FirstName: "X", LastName: "Y", Email: "Dup@Example.com", PasswordHash: "h"})
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("update_keeps_hash_when_empty", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		u := seedUser(t, r.Users, "grace@example.com")
		u.FirstName = "Grace"
		u.Address = "Arlington"
		u.PasswordHash = ""
		got, err := r.Users.Update(ctx, u)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.FirstName != "Grace" || got.Address != "Arlington" || got.PasswordHash != "$2a$10$hash" {
			t.Fatalf("unexpected update result: %+v", got)
		}
	})

	t.Run("list_pagination_total", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			seedUser(t, r.Users, fmt.Sprintf("user%d@example.com", i))
		}
		res, err := r.Users.List(ctx, repository.Page{Limit: 3, Offset: 3})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		past, err := r.Users.List(ctx, repository.Page{Limit: 3, Offset: 30})
		if err != nil {
			t.Fatalf("list past end: %v", err)
		}
		if len(past.Items) != 0 || past.Total != 7 {
			t.Fatalf("unexpected page past end: len=%d total=%d", len(past.Items), past.Total)
		}
		n, err := r.Users.Count(ctx)
		if err != nil || n != 7 {
			t.Fatalf("count: %d %v", n, err)
		}
	})
}

func RunProjectRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("create_with_members", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a := seedUser(t, r.Users, "a@example.com")
		b := seedUser(t, r.Users, "b@example.com")
		p := seedProject(t, r.Projects, "Apollo", b.ID, a.ID)
		got, err := r.Projects.GetByID(ctx, p.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(got.Members) != 2 || got.Members[0] != a.ID || got.Members[1] != b.ID {
			t.Fatalf("unexpected members: %v", got.Members)
		}
		if !got.CompletionDate.Equal(day(2030, time.January, 1)) {
			t.Fatalf("unexpected completion date: %v", got.CompletionDate)
		}
		ok, err := r.Projects.IsMember(ctx, p.ID, a.ID)
		if err != nil || !ok {
			t.Fatalf("expected membership: %v %v", ok, err)
		}
	})

	t.Run("update_diffs_members", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a := seedUser(t, r.Users, "a@example.com")
		b := seedUser(t, r.Users, "b@example.com")
		c := seedUser(t, r.Users, "c@example.com")
		p := seedProject(t, r.Projects, "Gemini", a.ID, b.ID)
		p.Title = "Gemini II"
		got, err := r.Projects.Update(ctx, p, []int64{a.ID}, []int64{c.ID})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.Title != "Gemini II" || len(got.Members) != 2 || got.Members[0] != b.ID || got.Members[1] != c.ID {
			t.Fatalf("unexpected project after update: %+v", got)
		}
		members, err := r.Projects.Members(ctx, p.ID)
		if err != nil || len(members) != 2 {
			t.Fatalf("members: %v %v", members, err)
		}
	})

	t.Run("update_missing_not_found", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		_, err := r.Projects.Update(context.Background(), model.Project{ID: 424242, Title: "x", CompletionDate: day(2030, 1, 1)}, nil, nil)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown_member_conflict", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		_, err := r.Projects.Create(context.Background(), model.Project{Title: "Ghost", CompletionDate: day(2030, 1, 1), Members: []int64{987654}})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("list_for_user", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a := seedUser(t, r.Users, "a@example.com")
		b := seedUser(t, r.Users, "b@example.com")
		for i := 0; i < 4; i++ {
			seedProject(t, r.Projects, fmt.Sprintf("shared-%d", i), a.ID, b.ID)
		}
		seedProject(t, r.Projects, "only-b", b.ID)

		all, err := r.Projects.List(ctx, repository.Page{Limit: 2})
		if err != nil || len(all.Items) != 2 || all.Total != 5 {
			t.Fatalf("list: %+v %v", all, err)
		}
		mine, err := r.Projects.ListForUser(ctx, a.ID, repository.Page{Limit: 10})
		if err != nil || len(mine.Items) != 4 || mine.Total != 4 {
			t.Fatalf("list for user: %+v %v", mine, err)
		}
	})

	t.Run("delete_cascades", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a := seedUser(t, r.Users, "a@example.com")
		p := seedProject(t, r.Projects, "Doomed", a.ID)
		task, err := r.Tasks.Create(ctx, model.Task{ProjectID: p.ID, AssignedTo: a.ID, Title: "t", DueDate: day(2030, 1, 1), Tag: model.TagBug})
		if err != nil {
			t.Fatalf("seed task: %v", err)
		}
		if err := r.Projects.Delete(ctx, p.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := r.Tasks.GetByID(ctx, task.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected task removed, got %v", err)
		}
		if err := r.Projects.Delete(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func RunTaskRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("crud", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a := seedUser(t, r.Users, "a@example.com")
		p := seedProject(t, r.Projects, "Tasks", a.ID)
		created, err := r.Tasks.Create(ctx, model.Task{
			ProjectID: p.ID, AssignedTo: a.ID, Title: "Write docs", DueDate: day(2030, 2, 1),
			Status: model.StatusInProgress, Priority: model.PriorityHigh, Tag: model.TagFeature,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		created.Status = model.StatusCompleted
		created.Title = "Write more docs"
		updated, err := r.Tasks.Update(ctx, created)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Status != model.StatusCompleted || updated.Priority != model.PriorityHigh || updated.Tag != model.TagFeature {
			t.Fatalf("unexpected task: %+v", updated)
		}
		if err := r.Tasks.Delete(ctx, created.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := r.Tasks.GetByID(ctx, created.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_filters_by_assignee", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a := seedUser(t, r.Users, "a@example.com")
		b := seedUser(t, r.Users, "b@example.com")
		p := seedProject(t, r.Projects, "Filter", a.ID, b.ID)
		for i := 0; i < 6; i++ {
			assignee := a.ID
			if i%3 == 0 {
				assignee = b.ID
			}
			_, err := r.Tasks.Create(ctx, model.Task{ProjectID: p.ID, AssignedTo: assignee, Title: fmt.Sprintf("t%d", i), DueDate: day(2030, 1, 10-i), Tag: model.TagChore})
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		all, err := r.Tasks.List(ctx, repository.TaskFilter{ProjectID: p.ID}, repository.Page{Limit: 4})
		if err != nil || len(all.Items) != 4 || all.Total != 6 {
			t.Fatalf("list all: %+v %v", all, err)
		}
		if !all.Items[0].DueDate.Before(all.Items[1].DueDate) {
			t.Fatalf("expected ascending due dates")
		}
		mine, err := r.Tasks.List(ctx, repository.TaskFilter{ProjectID: p.ID, AssignedTo: &b.ID}, repository.Page{Limit: 4})
		if err != nil || len(mine.Items) != 2 || mine.Total != 2 {
			t.Fatalf("list mine: %+v %v", mine, err)
		}
	})
}

func RunDashboardRepositoryContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("global_and_per_user", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		now := day(2030, time.June, 15)
		a := seedUser(t, r.Users, "a@example.com")
		b := seedUser(t, r.Users, "b@example.com")
		p1 := seedProject(t, r.Projects, "one", a.ID, b.ID)
		seedProject(t, r.Projects, "two", b.ID)
		tasks := []model.Task{
			{ProjectID: p1.ID, AssignedTo: a.ID, Title: "late", DueDate: day(2030, 6, 1), Status: model.StatusInProgress, Tag: model.TagBug},
			{ProjectID: p1.ID, AssignedTo: a.ID, Title: "done late", DueDate: day(2030, 6, 1), Status: model.StatusCompleted, Tag: model.TagBug},
			{ProjectID: p1.ID, AssignedTo: b.ID, Title: "future", DueDate: day(2030, 7, 1), Status: model.StatusNotStarted, Tag: model.TagBug},
		}
		for _, tk := range tasks {
			if _, err := r.Tasks.Create(ctx, tk); err != nil {
				t.Fatalf("seed task: %v", err)
			}
		}

		all, err := r.Dashboard.Stats(ctx, nil, now)
		if err != nil {
			t.Fatalf("global stats: %v", err)
		}
		want := model.DashboardStats{TotalProjects: 2, TotalTasks: 3, NotStarted: 1, InProgress: 1, Completed: 1, Overdue: 1}
		if all != want {
			t.Fatalf("global stats: got %+v want %+v", all, want)
		}

		mine, err := r.Dashboard.Stats(ctx, &a.ID, now)
		if err != nil {
			t.Fatalf("user stats: %v", err)
		}
		want = model.DashboardStats{TotalProjects: 1, TotalTasks: 2, InProgress: 1, Completed: 1, Overdue: 1}
		if mine != want {
			t.Fatalf("user stats: got %+v want %+v", mine, want)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeRepos Factory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := r.Users.Create(ctx, model.User{FirstName: "T", LastName: "X", Email: "commit@example.com", PasswordHash: "h"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return nil
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := r.Users.GetByID(ctx, createdID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		var createdID int64
		errMarker := errors.New("boom")
		err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
			out, err := r.Users.Create(ctx, model.User{FirstName: "T", LastName: "X", Email: "rollback@example.com", PasswordHash: "h"})
			if err != nil {
				return err
			}
			createdID = out.ID
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := r.Users.GetByID(ctx, createdID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})

	t.Run("nested_project_create_joins_outer_tx", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a := seedUser(t, r.Users, "a@example.com")
		var projectID int64
		_ = r.Tx.WithinTx(ctx, func(ctx context.Context) error {
			p, err := r.Projects.Create(ctx, model.Project{Title: "rolled back", CompletionDate: day(2030, 1, 1), Members: []int64{a.ID}})
			if err != nil {
				return err
			}
			projectID = p.ID
			return errors.New("abort")
		})
		if _, err := r.Projects.GetByID(ctx, projectID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected project rolled back, got %v", err)
		}
	})

	t.Run("signup_lock_requires_tx", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		if err := r.Users.LockSignups(context.Background()); !errors.Is(err, repository.ErrTxRequired) {
			t.Fatalf("expected ErrTxRequired outside a transaction, got %v", err)
		}
	})

	t.Run("signup_lock_serializes_first_admin", func(t *testing.T) {
		r, cleanup := makeRepos(t)
		t.Cleanup(cleanup)
		ctx := context.Background()

		const racers = 3
		var wg sync.WaitGroup
		errs := make(chan error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- r.Tx.WithinTx(ctx, func(ctx context.Context) error {
					if err := r.Users.LockSignups(ctx); err != nil {
						return err
					}
					n, err := r.Users.Count(ctx)
					if err != nil || n > 0 {
						return err
					}
					// Widen the window between the check and the insert.
					time.Sleep(50 * time.Millisecond)
					_, err = r.Users.Create(ctx, model.User{
						FirstName:    "Racer",
						LastName:     fmt.Sprint(i),
						Email:        fmt.Sprintf("racer%d@example.com", i),
						IsAdmin:      true,
						PasswordHash: "h",
					})
					return err
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("racer failed: %v", err)
			}
		}

		res, err := r.Users.List(ctx, repository.Page{Limit: 10})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if res.Total != 1 || !res.Items[0].IsAdmin {
			t.Fatalf("expected exactly one bootstrap admin, got %d users", res.Total)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
