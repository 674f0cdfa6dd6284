package service

import (
	"context"
	"errors"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maxviazov/taskboard-service/internal/auth"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/rs/zerolog"
)

var (
	testLogger = zerolog.New(io.Discard)
	testPaging = Paging{DefaultSize: 5, MaxSize: 20, Siblings: 1, MaxSiblings: 3}
	fixedNow   = time.Date(2030, time.June, 15, 12, 0, 0, 0, time.UTC)
)

// store is an in-memory backend for every repository the services use.
type store struct {
	nextUser, nextProject, nextTask int64

	users    map[int64]model.User
	projects map[int64]model.Project
	tasks    map[int64]model.Task

	err       error // returned by every call when set
	lastPage  repository.Page
	lastScope *int64
	txCalls   int

	inTx        bool
	signupLocks int
}

func newStore() *store {
	return &store{
		nextUser: 1, nextProject: 1, nextTask: 1,
		users:    map[int64]model.User{},
		projects: map[int64]model.Project{},
		tasks:    map[int64]model.Task{},
	}
}

func page[T any](items []T, p repository.Page) repository.PageResult[T] {
	res := repository.PageResult[T]{Total: len(items), Items: []T{}}
	if p.Offset < len(items) {
		end := min(p.Offset+p.Limit, len(items))
		res.Items = items[p.Offset:end]
	}
	return res
}

type userRepo struct{ *store }

func (s userRepo) Create(_ context.Context, u model.User) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.User{}, repository.ErrAlreadyExists
		}
	}
	u.ID = s.nextUser
	s.nextUser++
	s.users[u.ID] = u
	return u, nil
}

func (s userRepo) GetByID(_ context.Context, id int64) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s userRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s userRepo) Update(_ context.Context, u model.User) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	cur, ok := s.users[u.ID]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	for _, other := range s.users {
		if other.ID != u.ID && strings.EqualFold(other.Email, u.Email) {
			return model.User{}, repository.ErrAlreadyExists
		}
	}
	u.IsAdmin = cur.IsAdmin
	if u.PasswordHash == "" {
		u.PasswordHash = cur.PasswordHash
	}
	s.users[u.ID] = u
	return u, nil
}

func (s userRepo) List(_ context.Context, p repository.Page) (repository.PageResult[model.User], error) {
	s.lastPage = p
	if s.err != nil {
		return repository.PageResult[model.User]{}, s.err
	}
	var all []model.User
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, p), nil
}

func (s userRepo) LockSignups(context.Context) error {
	if !s.inTx {
		return repository.ErrTxRequired
	}
	s.signupLocks++
	return nil
}

func (s userRepo) Count(context.Context) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return len(s.users), nil
}

type projectRepo struct{ *store }

func (s projectRepo) Create(_ context.Context, p model.Project) (model.Project, error) {
	if s.err != nil {
		return model.Project{}, s.err
	}
	for _, m := range p.Members {
		if _, ok := s.users[m]; !ok {
			return model.Project{}, repository.ErrConflict
		}
	}
	p.ID = s.nextProject
	s.nextProject++
	s.projects[p.ID] = p
	return p, nil
}

func (s projectRepo) GetByID(_ context.Context, id int64) (model.Project, error) {
	if s.err != nil {
		return model.Project{}, s.err
	}
	p, ok := s.projects[id]
	if !ok {
		return model.Project{}, repository.ErrNotFound
	}
	return p, nil
}

func (s projectRepo) Update(_ context.Context, p model.Project, removed, added []int64) (model.Project, error) {
	if s.err != nil {
		return model.Project{}, s.err
	}
	cur, ok := s.projects[p.ID]
	if !ok {
		return model.Project{}, repository.ErrNotFound
	}
	members := slices.DeleteFunc(slices.Clone(cur.Members), func(id int64) bool { return slices.Contains(removed, id) })
	for _, m := range added {
		if _, ok := s.users[m]; !ok {
			return model.Project{}, repository.ErrConflict
		}
		members = append(members, m)
	}
	slices.Sort(members)
	p.Members = members
	s.projects[p.ID] = p
	return p, nil
}

func (s projectRepo) Delete(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.projects, id)
	for tid, t := range s.tasks {
		if t.ProjectID == id {
			delete(s.tasks, tid)
		}
	}
	return nil
}

func (s projectRepo) sorted(keep func(model.Project) bool) []model.Project {
	var out []model.Project
	for _, p := range s.projects {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s projectRepo) List(_ context.Context, p repository.Page) (repository.PageResult[model.Project], error) {
	s.lastPage = p
	if s.err != nil {
		return repository.PageResult[model.Project]{}, s.err
	}
	return page(s.sorted(func(model.Project) bool { return true }), p), nil
}

func (s projectRepo) ListForUser(_ context.Context, userID int64, p repository.Page) (repository.PageResult[model.Project], error) {
	s.lastPage = p
	if s.err != nil {
		return repository.PageResult[model.Project]{}, s.err
	}
	return page(s.sorted(func(pr model.Project) bool { return slices.Contains(pr.Members, userID) }), p), nil
}

func (s projectRepo) Members(_ context.Context, projectID int64) ([]model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []model.User
	for _, id := range s.projects[projectID].Members {
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s projectRepo) IsMember(_ context.Context, projectID, userID int64) (bool, error) {
	return slices.Contains(s.projects[projectID].Members, userID), s.err
}

type taskRepo struct{ *store }

func (s taskRepo) Create(_ context.Context, t model.Task) (model.Task, error) {
	if s.err != nil {
		return model.Task{}, s.err
	}
	t.ID = s.nextTask
	s.nextTask++
	s.tasks[t.ID] = t
	return t, nil
}

func (s taskRepo) GetByID(_ context.Context, id int64) (model.Task, error) {
	if s.err != nil {
		return model.Task{}, s.err
	}
	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, repository.ErrNotFound
	}
	return t, nil
}

func (s taskRepo) Update(_ context.Context, t model.Task) (model.Task, error) {
	if s.err != nil {
		return model.Task{}, s.err
	}
	if _, ok := s.tasks[t.ID]; !ok {
		return model.Task{}, repository.ErrNotFound
	}
	s.tasks[t.ID] = t
	return t, nil
}

func (s taskRepo) Delete(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s taskRepo) List(_ context.Context, f repository.TaskFilter, p repository.Page) (repository.PageResult[model.Task], error) {
	s.lastPage = p
	s.lastScope = f.AssignedTo
	if s.err != nil {
		return repository.PageResult[model.Task]{}, s.err
	}
	var out []model.Task
	for _, t := range s.tasks {
		if t.ProjectID == f.ProjectID && (f.AssignedTo == nil || t.AssignedTo == *f.AssignedTo) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, p), nil
}

type txRepo struct{ *store }

func (s txRepo) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	s.txCalls++
	s.inTx = true
	defer func() { s.inTx = false }()
	return fn(ctx)
}

// noTx runs fn directly, like a TxManager that forgot to open a transaction.
type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn repository.TxFunc) error { return fn(ctx) }

var (
	_ repository.UserRepository    = userRepo{}
	_ repository.ProjectRepository = projectRepo{}
	_ repository.TaskRepository    = taskRepo{}
	_ repository.TxManager         = txRepo{}
)

// plainHasher stores "hashed:" + password so tests can read what was saved.
type plainHasher struct{ err error }

func (h plainHasher) Hash(p string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + p, nil
}

func (plainHasher) Compare(hash, p string) error {
	if hash != "hashed:"+p {
		return auth.ErrPasswordMismatch
	}
	return nil
}

type stubIssuer struct{ issued []auth.Identity }

func (s *stubIssuer) Issue(id auth.Identity) (string, time.Time, error) {
	s.issued = append(s.issued, id)
	return "token-for-" + id.Email, fixedNow.Add(time.Hour), nil
}

// memCache counts invalidations and remembers what was stored per scope.
type memCache struct {
	entries     map[string]model.DashboardStats
	invalidated int
	getErr      error
}

func newMemCache() *memCache { return &memCache{entries: map[string]model.DashboardStats{}} }

func scopeKey(userID *int64) string {
	if userID == nil {
		return "all"
	}
	return strconv.FormatInt(*userID, 10)
}

func (c *memCache) Get(_ context.Context, userID *int64) (model.DashboardStats, bool, error) {
	if c.getErr != nil {
		return model.DashboardStats{}, false, c.getErr
	}
	s, ok := c.entries[scopeKey(userID)]
	return s, ok, nil
}

func (c *memCache) Set(_ context.Context, userID *int64, s model.DashboardStats) error {
	c.entries[scopeKey(userID)] = s
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.invalidated++
	c.entries = map[string]model.DashboardStats{}
	return errors.New("ignored by callers")
}

func (s *store) addUser(first string, admin bool) model.User {
	u, _ := userRepo{s}.Create(context.Background(), model.User{
		FirstName: first, LastName: "Test", Email: strings.ToLower(first) + "@example.com",
		IsAdmin: admin, PasswordHash: "hashed:secret1",
	})
	return u
}

func (s *store) addProject(title string, members ...int64) model.Project {
	p, _ := projectRepo{s}.Create(context.Background(), model.Project{
		Title: title, Description: "d", CompletionDate: fixedNow.AddDate(0, 1, 0), Members: members,
	})
	return p
}

func (s *store) addTask(projectID, assignee int64, due time.Time) model.Task {
	t, _ := taskRepo{s}.Create(context.Background(), model.Task{
		ProjectID: projectID, AssignedTo: assignee, Title: "t", Description: "d",
		DueDate: due, Priority: model.PriorityMedium, Tag: model.TagBug,
	})
	return t
}

func actorOf(u model.User) Actor { return Actor{UserID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin} }
