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

type taskService struct {
	tasks     repository.TaskRepository
	projects  repository.ProjectRepository
	dashboard cache.DashboardCache
	paging    Paging
	v         *validator.Validate
	now       func() time.Time
	log       zerolog.Logger
}

func NewTaskService(tasks repository.TaskRepository, projects repository.ProjectRepository, dashboard cache.DashboardCache, paging Paging, logger zerolog.Logger) TaskService {
	l := logger.With().Str("module", "service").Str("component", "task").Logger()
	return &taskService{tasks: tasks, projects: projects, dashboard: dashboard, paging: paging, v: newValidator(), now: time.Now, log: l}
}

// visibleProject loads a project the actor may work in: admins see all, users their own.
func (s *taskService) visibleProject(ctx context.Context, actor Actor, projectID int64) (model.Project, error) {
	if projectID <= 0 {
		return model.Project{}, newInvalidInput([]FieldError{{Field: "project_id", Message: "must be > 0"}})
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return model.Project{}, err
	}
	if !actor.IsAdmin && !slices.Contains(p.Members, actor.UserID) {
		return model.Project{}, ErrForbidden
	}
	return p, nil
}

// ownedTask loads a task the actor may touch: admins any, users only tasks assigned to them.
func (s *taskService) ownedTask(ctx context.Context, actor Actor, id int64) (model.Task, error) {
	if id <= 0 {
		return model.Task{}, newInvalidInput([]FieldError{{Field: "id", Message: "must be > 0"}})
	}
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if !actor.IsAdmin && t.AssignedTo != actor.UserID {
		return model.Task{}, ErrForbidden
	}
	return t, nil
}

// taskFields validates in and builds the task values. previousDue is the stored due date
// on updates so an unchanged overdue task can still be edited.
func (s *taskService) taskFields(in *TaskInput, previousDue time.Time) (model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Tag = strings.ToLower(strings.TrimSpace(in.Tag))
	if err := validateStruct(s.v, in); err != nil {
		return model.Task{}, err
	}
	due, _ := parseDay(in.DueDate)
	if !due.Equal(previousDue) && !notPast(due, s.now()) {
		return model.Task{}, newInvalidInput([]FieldError{{Field: "due_date", Message: "must not be in the past"}})
	}
	return model.Task{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     due,
		Status:      model.TaskStatus(in.Status),
		Priority:    model.Priority(in.Priority),
		Tag:         model.Tag(in.Tag),
		AssignedTo:  in.AssignedTo,
	}, nil
}

func assigneeError(p model.Project, assignee int64) error {
	if assignee <= 0 {
		return newInvalidInput([]FieldError{{Field: "assigned_to", Message: "is required"}})
	}
	if !slices.Contains(p.Members, assignee) {
		return newInvalidInput([]FieldError{{Field: "assigned_to", Message: "must be a member of the project"}})
	}
	return nil
}

// CreateTask assigns tasks created by regular users to themselves; admins pick any member.
func (s *taskService) CreateTask(ctx context.Context, actor Actor, projectID int64, in TaskInput) (model.Task, error) {
	start := time.Now()
	p, err := s.visibleProject(ctx, actor, projectID)
	if err != nil {
		return model.Task{}, err
	}
	if !actor.IsAdmin {
		in.AssignedTo = actor.UserID
	}
	t, err := s.taskFields(&in, time.Time{})
	if err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("task validation failed")
		return model.Task{}, err
	}
	if err := assigneeError(p, t.AssignedTo); err != nil {
		return model.Task{}, err
	}
	t.ProjectID = p.ID

	out, err := s.tasks.Create(ctx, t)
	if err != nil {
		s.log.Error().Err(err).Int64("project_id", projectID).Msg("create task failed")
		return model.Task{}, err
	}
	s.invalidate(ctx)
	s.log.Info().Dur("took", time.Since(start)).Int64("task_id", out.ID).Int64("project_id", projectID).Int64("assigned_to", out.AssignedTo).Msg("task created")
	return out, nil
}

func (s *taskService) GetTask(ctx context.Context, actor Actor, id int64) (model.Task, error) {
	return s.ownedTask(ctx, actor, id)
}

// UpdateTask lets regular users change title, description and status of their own tasks;
// due date, priority, tag and assignee stay as stored whatever they send.
func (s *taskService) UpdateTask(ctx context.Context, actor Actor, id int64, in TaskInput) (model.Task, error) {
	current, err := s.ownedTask(ctx, actor, id)
	if err != nil {
		return model.Task{}, err
	}
	if !actor.IsAdmin {
		in.DueDate = current.DueDate.Format(DateLayout)
		in.Priority = int(current.Priority)
		in.Tag = string(current.Tag)
		in.AssignedTo = current.AssignedTo
	} else if in.AssignedTo == 0 {
		in.AssignedTo = current.AssignedTo
	}
	t, err := s.taskFields(&in, current.DueDate)
	if err != nil {
		return model.Task{}, err
	}
	if t.AssignedTo != current.AssignedTo {
		p, err := s.projects.GetByID(ctx, current.ProjectID)
		if err != nil {
			return model.Task{}, err
		}
		if err := assigneeError(p, t.AssignedTo); err != nil {
			return model.Task{}, err
		}
	}
	t.ID = current.ID
	t.ProjectID = current.ProjectID

	out, err := s.tasks.Update(ctx, t)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Int64("task_id", id).Msg("update task failed")
		}
		return model.Task{}, err
	}
	s.invalidate(ctx)
	s.log.Info().Int64("task_id", id).Str("status", out.Status.String()).Msg("task updated")
	return out, nil
}

func (s *taskService) DeleteTask(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.ownedTask(ctx, actor, id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Int64("task_id", id).Msg("delete task failed")
		}
		return err
	}
	s.invalidate(ctx)
	s.log.Info().Int64("task_id", id).Msg("task deleted")
	return nil
}

// ListTasks pages through a project's tasks; regular users only see their own.
func (s *taskService) ListTasks(ctx context.Context, actor Actor, projectID int64, page PageRequest) (Listing[model.Task], error) {
	if _, err := s.visibleProject(ctx, actor, projectID); err != nil {
		return Listing[model.Task]{}, err
	}
	f := repository.TaskFilter{ProjectID: projectID}
	if !actor.IsAdmin {
		uid := actor.UserID
		f.AssignedTo = &uid
	}
	r := s.paging.normalize(page)
	res, err := s.tasks.List(ctx, f, s.paging.window(r))
	if err != nil {
		s.log.Error().Err(err).Int64("project_id", projectID).Int("page", r.Page).Msg("list tasks failed")
		return Listing[model.Task]{}, err
	}
	return listing(r, res)
}

// FormFields returns the option lists for task forms.
func (s *taskService) FormFields() model.FormFields {
	ff := model.FormFields{
		Statuses:   make([]model.Option, 0, 3),
		Priorities: make([]model.Option, 0, 3),
		Tags:       make([]model.Option, 0, len(model.Tags)),
	}
	for st := model.StatusNotStarted; st <= model.StatusCompleted; st++ {
		ff.Statuses = append(ff.Statuses, model.Option{Value: int(st), Label: st.String()})
	}
	for p := model.PriorityLow; p <= model.PriorityHigh; p++ {
		ff.Priorities = append(ff.Priorities, model.Option{Value: int(p), Label: p.String()})
	}
	for _, t := range model.Tags {
		ff.Tags = append(ff.Tags, model.Option{Value: string(t), Label: t.Label()})
	}
	return ff
}

func (s *taskService) invalidate(ctx context.Context) {
	if err := s.dashboard.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}
