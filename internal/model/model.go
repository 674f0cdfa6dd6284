// Package model contains domain entities and DTOs used across layers.
package model

import (
	"strings"
	"time"
)

// User is an account that can sign in. Admins manage projects and may assign tasks
// to anyone on a project; regular users work on their own tasks.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Address      string    `json:"address"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName is what option lists show for a user.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// UserOption is the compact user shape used by assignment pickers.
type UserOption struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}

// Project groups tasks and the users allowed to work on them.
type Project struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CompletionDate time.Time `json:"completion_date"`
	Members        []int64   `json:"members"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Task is a unit of work inside a project, assigned to exactly one member.
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	AssignedTo  int64      `json:"assigned_to"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	Tag         Tag        `json:"tag"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskStatus values are persisted as small integers.
type TaskStatus int

const (
	StatusNotStarted TaskStatus = iota
	StatusInProgress
	StatusCompleted
)

func (s TaskStatus) Valid() bool { return s >= StatusNotStarted && s <= StatusCompleted }

func (s TaskStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) Valid() bool { return p >= PriorityLow && p <= PriorityHigh }

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

type Tag string

const (
	TagBug         Tag = "bug"
	TagFeature     Tag = "feature"
	TagImprovement Tag = "improvement"
	TagResearch    Tag = "research"
	TagChore       Tag = "chore"
)

// Tags lists the accepted tags in display order.
var Tags = []Tag{TagBug, TagFeature, TagImprovement, TagResearch, TagChore}

// Label is the display form: "bug" becomes "Bug".
func (t Tag) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

func (t Tag) Valid() bool {
	for _, known := range Tags {
		if t == known {
			return true
		}
	}
	return false
}

// Option is one selectable value of a task form field.
type Option struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// FormFields carries the option lists a task form needs.
type FormFields struct {
	Statuses   []Option `json:"statuses"`
	Priorities []Option `json:"priorities"`
	Tags       []Option `json:"tags"`
}

// DashboardStats summarizes work either globally (admins) or for one assignee.
// It's a read-only model derived from projects and tasks.
type DashboardStats struct {
	TotalProjects int `json:"total_projects"`
	TotalTasks    int `json:"total_tasks"`
	NotStarted    int `json:"not_started"`
	InProgress    int `json:"in_progress"`
	Completed     int `json:"completed"`
	Overdue       int `json:"overdue"`
}
