package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the DD-MM-YYYY format clients send dates in.
const DateLayout = "02-01-2006"

// newValidator reports fields under their JSON names so FieldError.Field matches the payload.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("ddmmyyyy", func(fl validator.FieldLevel) bool {
		_, err := parseDay(fl.Field().String())
		return err == nil
	})
	return v
}

// validateStruct runs struct tags and folds the result into an aggregated invalid-input error.
func validateStruct(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ferrs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		ferrs = append(ferrs, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return newInvalidInput(ferrs)
}

// fieldPath drops the root struct name: "RegisterInput.email" becomes "email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", "|")
	case "gt":
		return "must be > " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "ddmmyyyy":
		return "must be in DD-MM-YYYY format"
	default:
		return "is invalid"
	}
}

func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// notPast reports whether day falls on or after the calendar day of now.
func notPast(day, now time.Time) bool {
	y, m, d := now.UTC().Date()
	return !day.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// RegisterInput is the sign-up payload. IsAdmin is honored only for admins or the very
// first account.
type RegisterInput struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Address         string `json:"address" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	IsAdmin         bool   `json:"is_admin"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput replaces the caller's profile. Password is optional; when set it must be
// confirmed.
type ProfileInput struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Address         string `json:"address" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"omitempty,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

type ProjectInput struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Description    string  `json:"description" validate:"required,max=2000"`
	CompletionDate string  `json:"completion_date" validate:"required,ddmmyyyy"`
	Members        []int64 `json:"members" validate:"required,min=1,dive,gt=0"`
}

// TaskInput is used for both create and update. AssignedTo is ignored for non-admins,
// whose tasks are always their own.
type TaskInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
	DueDate     string `json:"due_date" validate:"required,ddmmyyyy"`
	Status      int    `json:"status" validate:"gte=0,lte=2"`
	Priority    int    `json:"priority" validate:"gte=0,lte=2"`
	Tag         string `json:"tag" validate:"required,oneof=bug feature improvement research chore"`
	AssignedTo  int64  `json:"assigned_to" validate:"omitempty,gt=0"`
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
