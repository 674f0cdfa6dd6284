package service

import (
	"context"
	"testing"
	"time"

	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/pagination"
	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProjectSvc(st *store, c *memCache) *projectService {
	svc := NewProjectService(projectRepo{st}, c, testPaging, testLogger).(*projectService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestProjectService_Create(t *testing.T) {
	st := newStore()
	c := newMemCache()
	svc := newProjectSvc(st, c)
	admin := st.addUser("Root", true)
	a := st.addUser("Ann", false)
	b := st.addUser("Ben", false)

	p, err := svc.CreateProject(context.Background(), actorOf(admin), ProjectInput{
		Title: " Apollo ", Description: "moon", CompletionDate: "15-06-2030", Members: []int64{b.ID, a.ID, b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Apollo", p.Title)
	assert.Equal(t, []int64{a.ID, b.ID}, p.Members)
	assert.Equal(t, time.Date(2030, time.June, 15, 0, 0, 0, 0, time.UTC), p.CompletionDate)
	assert.Equal(t, 1, c.invalidated)

	_, err = svc.CreateProject(context.Background(), actorOf(a), ProjectInput{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestProjectService_Create_Validation(t *testing.T) {
	st := newStore()
	svc := newProjectSvc(st, newMemCache())
	admin := actorOf(st.addUser("Root", true))

	cases := []struct {
		name      string
		in        ProjectInput
		wantField string
		wantMsg   string
	}{
		{"no title", ProjectInput{Description: "d", CompletionDate: "01-01-2031", Members: []int64{1}}, "title", "is required"},
		{"bad date", ProjectInput{Title: "x", Description: "d", CompletionDate: "2031-01-01", Members: []int64{1}}, "completion_date", "must be in DD-MM-YYYY format"},
		{"past date", ProjectInput{Title: "x", Description: "d", CompletionDate: "14-06-2030", Members: []int64{1}}, "completion_date", "must not be in the past"},
		{"no members", ProjectInput{Title: "x", Description: "d", CompletionDate: "01-01-2031"}, "members", "is required"},
		{"bad member id", ProjectInput{Title: "x", Description: "d", CompletionDate: "01-01-2031", Members: []int64{0}}, "members[0]", "must be > 0"},
		{"unknown member", ProjectInput{Title: "x", Description: "d", CompletionDate: "01-01-2031", Members: []int64{99}}, "members", "contains unknown users"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProject(context.Background(), admin, tc.in)
			require.ErrorIs(t, err, ErrInvalidInput)
			fields := FieldErrors(err)
			require.Len(t, fields, 1)
			assert.Equal(t, tc.wantField, fields[0].Field)
			assert.Equal(t, tc.wantMsg, fields[0].Message)
		})
	}
}

func TestProjectService_GetAccess(t *testing.T) {
	st := newStore()
	svc := newProjectSvc(st, newMemCache())
	admin := st.addUser("Root", true)
	member := st.addUser("Ann", false)
	outsider := st.addUser("Oz", false)
	p := st.addProject("Apollo", member.ID)
	ctx := context.Background()

	_, err := svc.GetProject(ctx, actorOf(admin), p.ID)
	assert.NoError(t, err)
	_, err = svc.GetProject(ctx, actorOf(member), p.ID)
	assert.NoError(t, err)
	_, err = svc.GetProject(ctx, actorOf(outsider), p.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.GetProject(ctx, actorOf(admin), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.GetProject(ctx, actorOf(admin), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	opts, err := svc.ProjectMembers(ctx, actorOf(member), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.UserOption{{ID: member.ID, FullName: "Ann Test"}}, opts)
	_, err = svc.ProjectMembers(ctx, actorOf(outsider), p.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestProjectService_Update(t *testing.T) {
	st := newStore()
	c := newMemCache()
	svc := newProjectSvc(st, c)
	admin := st.addUser("Root", true)
	a := st.addUser("Ann", false)
	b := st.addUser("Ben", false)
	cc := st.addUser("Cid", false)
	p := st.addProject("Apollo", a.ID, b.ID)
	// A completion date that has already passed stays editable as long as it is unchanged.
	p.CompletionDate = fixedNow.AddDate(0, 0, -10).Truncate(24 * time.Hour)
	st.projects[p.ID] = p
	ctx := context.Background()

	got, err := svc.UpdateProject(ctx, actorOf(admin), p.ID, ProjectInput{
		Title: "Apollo 2", Description: "d", CompletionDate: p.CompletionDate.Format(DateLayout), Members: []int64{cc.ID, b.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Apollo 2", got.Title)
	assert.Equal(t, []int64{b.ID, cc.ID}, got.Members)
	assert.Equal(t, 1, c.invalidated)

	_, err = svc.UpdateProject(ctx, actorOf(a), p.ID, ProjectInput{})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UpdateProject(ctx, actorOf(admin), 404, ProjectInput{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectService_Delete(t *testing.T) {
	st := newStore()
	c := newMemCache()
	svc := newProjectSvc(st, c)
	admin := st.addUser("Root", true)
	a := st.addUser("Ann", false)
	p := st.addProject("Apollo", a.ID)
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteProject(ctx, actorOf(a), p.ID), ErrForbidden)
	require.NoError(t, svc.DeleteProject(ctx, actorOf(admin), p.ID))
	assert.Equal(t, 1, c.invalidated)
	assert.ErrorIs(t, svc.DeleteProject(ctx, actorOf(admin), p.ID), repository.ErrNotFound)
}

func TestProjectService_List(t *testing.T) {
	st := newStore()
	svc := newProjectSvc(st, newMemCache())
	admin := st.addUser("Root", true)
	a := st.addUser("Ann", false)
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			st.addProject("shared", a.ID)
		} else {
			st.addProject("admin only")
		}
	}
	ctx := context.Background()

	all, err := svc.ListProjects(ctx, actorOf(admin), PageRequest{Page: 5, PageSize: 10, Siblings: -1})
	require.NoError(t, err)
	assert.Len(t, all.Items, 10)
	assert.Equal(t, []pagination.Entry{1, pagination.Gap, 4, 5, 6, pagination.Gap, 10}, all.Pagination.Pages)

	mine, err := svc.ListProjects(ctx, actorOf(a), PageRequest{Page: 1, PageSize: 10, Siblings: -1})
	require.NoError(t, err)
	assert.Equal(t, 50, mine.Pagination.TotalItems)
	assert.Equal(t, []pagination.Entry{1, 2, 3, 4, 5}, mine.Pagination.Pages)
	for _, p := range mine.Items {
		assert.Contains(t, p.Members, a.ID)
	}

	oversized, err := svc.ListProjects(ctx, actorOf(admin), PageRequest{PageSize: 1000, Siblings: -1})
	require.NoError(t, err)
	assert.Equal(t, testPaging.MaxSize, oversized.Pagination.PageSize)
	assert.Equal(t, 1, oversized.Pagination.CurrentPage)
}

func TestDiffMembers(t *testing.T) {
	removed, added := diffMembers([]int64{1, 2, 3}, []int64{2, 4})
	assert.Equal(t, []int64{1, 3}, removed)
	assert.Equal(t, []int64{4}, added)

	removed, added = diffMembers(nil, nil)
	assert.Empty(t, removed)
	assert.Empty(t, added)
}
