package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/taskboard-service/internal/cache"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/repository"
	"github.com/rs/zerolog"
)

type projectService struct {
	projects  repository.ProjectRepository
	dashboard cache.DashboardCache
	paging    Paging
	v         *validator.Validate
	now       func() time.Time
	log       zerolog.Logger
}

func NewProjectService(projects repository.ProjectRepository, dashboard cache.DashboardCache, paging Paging, logger zerolog.Logger) ProjectService {
	l := logger.With().Str("module", "service").Str("component", "project").Logger()
	return &projectService{projects: projects, dashboard: dashboard, paging: paging, v: newValidator(), now: time.Now, log: l}
}

// projectFields validates in and returns the parsed completion date and the sorted,
// de-duplicated member list. previous is the stored date on updates; keeping an old date
// unchanged is allowed even once it has passed.
func (s *projectService) projectFields(in *ProjectInput, previous time.Time) (time.Time, []int64, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(s.v, in); err != nil {
		return time.Time{}, nil, err
	}
	day, _ := parseDay(in.CompletionDate)
	if !day.Equal(previous) && !notPast(day, s.now()) {
		return time.Time{}, nil, newInvalidInput([]FieldError{{Field: "completion_date", Message: "must not be in the past"}})
	}
	members := slices.Clone(in.Members)
	slices.Sort(members)
	return day, slices.Compact(members), nil
}

func (s *projectService) CreateProject(ctx context.Context, actor Actor, in ProjectInput) (model.Project, error) {
	if !actor.IsAdmin {
		return model.Project{}, ErrForbidden
	}
	start := time.Now()
	day, members, err := s.projectFields(&in, time.Time{})
	if err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("project validation failed")
		return model.Project{}, err
	}
	out, err := s.projects.Create(ctx, model.Project{Title: in.Title, Description: in.Description, CompletionDate: day, Members: members})
	if err != nil {
		return model.Project{}, s.writeError(err, "create project failed", 0)
	}
	s.invalidate(ctx)
	s.log.Info().Dur("took", time.Since(start)).Int64("project_id", out.ID).Int("members", len(out.Members)).Msg("project created")
	return out, nil
}

// GetProject is open to admins and to members of the project.
func (s *projectService) GetProject(ctx context.Context, actor Actor, id int64) (model.Project, error) {
	if id <= 0 {
		return model.Project{}, newInvalidInput([]FieldError{{Field: "project_id", Message: "must be > 0"}})
	}
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	if !actor.IsAdmin && !slices.Contains(p.Members, actor.UserID) {
		return model.Project{}, ErrForbidden
	}
	return p, nil
}

func (s *projectService) UpdateProject(ctx context.Context, actor Actor, id int64, in ProjectInput) (model.Project, error) {
	if !actor.IsAdmin {
		return model.Project{}, ErrForbidden
	}
	if id <= 0 {
		return model.Project{}, newInvalidInput([]FieldError{{Field: "project_id", Message: "must be > 0"}})
	}
	current, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	day, members, err := s.projectFields(&in, current.CompletionDate)
	if err != nil {
		return model.Project{}, err
	}
	removed, added := diffMembers(slices.Sorted(slices.Values(current.Members)), members)
	out, err := s.projects.Update(ctx, model.Project{ID: id, Title: in.Title, Description: in.Description, CompletionDate: day}, removed, added)
	if err != nil {
		return model.Project{}, s.writeError(err, "update project failed", id)
	}
	s.invalidate(ctx)
	s.log.Info().Int64("project_id", id).Ints64("removed", removed).Ints64("added", added).Msg("project updated")
	return out, nil
}

func (s *projectService) DeleteProject(ctx context.Context, actor Actor, id int64) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}
	if id <= 0 {
		return newInvalidInput([]FieldError{{Field: "project_id", Message: "must be > 0"}})
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Int64("project_id", id).Msg("delete project failed")
		}
		return err
	}
	s.invalidate(ctx)
	s.log.Info().Int64("project_id", id).Msg("project deleted")
	return nil
}

// ListProjects shows admins every project and everyone else the projects they belong to.
func (s *projectService) ListProjects(ctx context.Context, actor Actor, page PageRequest) (Listing[model.Project], error) {
	r := s.paging.normalize(page)
	var (
		res repository.PageResult[model.Project]
		err error
	)
	if actor.IsAdmin {
		res, err = s.projects.List(ctx, s.paging.window(r))
	} else {
		res, err = s.projects.ListForUser(ctx, actor.UserID, s.paging.window(r))
	}
	if err != nil {
		s.log.Error().Err(err).Int("page", r.Page).Int("page_size", r.PageSize).Msg("list projects failed")
		return Listing[model.Project]{}, err
	}
	return listing(r, res)
}

// ProjectMembers lists who tasks in the project can be assigned to.
func (s *projectService) ProjectMembers(ctx context.Context, actor Actor, id int64) ([]model.UserOption, error) {
	if _, err := s.GetProject(ctx, actor, id); err != nil {
		return nil, err
	}
	users, err := s.projects.Members(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("project_id", id).Msg("list project members failed")
		return nil, err
	}
	out := make([]model.UserOption, 0, len(users))
	for _, u := range users {
		out = append(out, model.UserOption{ID: u.ID, FullName: u.FullName()})
	}
	return out, nil
}

// writeError turns a foreign-key failure on members into a field error.
func (s *projectService) writeError(err error, msg string, id int64) error {
	if errors.Is(err, repository.ErrConflict) {
		return newInvalidInput([]FieldError{{Field: "members", Message: "contains unknown users"}})
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.log.Error().Err(err).Int64("project_id", id).Msg(msg)
	}
	return err
}

func (s *projectService) invalidate(ctx context.Context) {
	if err := s.dashboard.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}

// diffMembers returns ids present in before but not after, and the other way round.
// Both inputs must be sorted.
func diffMembers(before, after []int64) (removed, added []int64) {
	for _, id := range before {
		if _, found := slices.BinarySearch(after, id); !found {
			removed = append(removed, id)
		}
	}
	for _, id := range after {
		if _, found := slices.BinarySearch(before, id); !found {
			added = append(added, id)
		}
	}
	return removed, added
}
