// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, access rules, validation and
// domain error shaping.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/taskboard-service/internal/auth"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/maxviazov/taskboard-service/internal/pagination"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

var (
	// ErrUnauthorized means the caller could not be authenticated (maps to HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is known but not allowed to do this (maps to HTTP 403).
	ErrForbidden = errors.New("forbidden")
)

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// NewInvalidInputError lets the transport layer report malformed requests the same way.
func NewInvalidInputError(fe ...FieldError) error { return newInvalidInput(fe) }

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var v interface{ Fields() []FieldError }
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// Actor is the authenticated caller on whose behalf a use case runs.
type Actor = auth.Identity

// Listing is one page of items plus the metadata a client needs to render its page selector.
type Listing[T any] struct {
	Items      []T             `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

// PageRequest is a 1-based page request as it arrives from clients. Page and PageSize
// left at zero take the defaults, and so does a negative Siblings.
type PageRequest struct {
	Page     int
	PageSize int
	Siblings int
}

// Session is what a successful login returns.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AccountService covers registration, sign-in and profile management.
type AccountService interface {
	Register(ctx context.Context, actor *Actor, in RegisterInput) (model.User, error)
	Login(ctx context.Context, in LoginInput) (Session, error)
	Profile(ctx context.Context, actor Actor) (model.User, error)
	UpdateProfile(ctx context.Context, actor Actor, in ProfileInput) (model.User, error)
	ListUsers(ctx context.Context, actor Actor, page PageRequest) (Listing[model.User], error)
}

// ProjectService covers project administration and membership.
type ProjectService interface {
	CreateProject(ctx context.Context, actor Actor, in ProjectInput) (model.Project, error)
	GetProject(ctx context.Context, actor Actor, id int64) (model.Project, error)
	UpdateProject(ctx context.Context, actor Actor, id int64, in ProjectInput) (model.Project, error)
	DeleteProject(ctx context.Context, actor Actor, id int64) error
	ListProjects(ctx context.Context, actor Actor, page PageRequest) (Listing[model.Project], error)
	ProjectMembers(ctx context.Context, actor Actor, id int64) ([]model.UserOption, error)
}

// TaskService covers work items inside projects.
type TaskService interface {
	CreateTask(ctx context.Context, actor Actor, projectID int64, in TaskInput) (model.Task, error)
	GetTask(ctx context.Context, actor Actor, id int64) (model.Task, error)
	UpdateTask(ctx context.Context, actor Actor, id int64, in TaskInput) (model.Task, error)
	DeleteTask(ctx context.Context, actor Actor, id int64) error
	ListTasks(ctx context.Context, actor Actor, projectID int64, page PageRequest) (Listing[model.Task], error)
	FormFields() model.FormFields
}

// DashboardService exposes summary counters.
type DashboardService interface {
	Stats(ctx context.Context, actor Actor) (model.DashboardStats, error)
}
