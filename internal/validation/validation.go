// Package validation checks todo input before any remote call is made.
package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"todo-engine/internal/models"
)

// ValidationError reports the first invalid field of an input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

const (
	MinTitleLength       = 3
	MaxDescriptionLength = 100
)

type todoForm struct {
	Title       string `validate:"required,min=3"`
	Description string `validate:"max=100"`
	Priority    string `validate:"oneof=Low Medium High"`
	DueDate     string `validate:"omitempty,datetime=2006-01-02,notpast"`
}

var fieldNames = map[string]string{
	"Title":       "title",
	"Description": "description",
	"Priority":    "priority",
	"DueDate":     "due_date",
}

type todayKey struct{}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidationCtx("notpast", func(ctx context.Context, fl validator.FieldLevel) bool {
		today, _ := ctx.Value(todayKey{}).(string)
		// Both sides are YYYY-MM-DD, so lexical order is date order.
		return fl.Field().String() >= today
	})
	return v
}

// Normalize trims the title and defaults an empty priority.
func Normalize(in models.Input) models.Input {
	in.Title = strings.TrimSpace(in.Title)
	in.DueDate = strings.TrimSpace(in.DueDate)
	if in.Priority == "" {
		in.Priority = models.DefaultPriority
	} else if p, ok := models.ParsePriority(string(in.Priority)); ok {
		in.Priority = p
	}
	return in
}

// ValidateNew checks an input for a todo about to be created.
func ValidateNew(in models.Input, existing []models.Todo, today time.Time) error {
	return check(in, "", existing, today)
}

// ValidateEdit checks an input replacing the todo with id; that todo is
// excluded from the duplicate-title check.
func ValidateEdit(id string, in models.Input, existing []models.Todo, today time.Time) error {
	return check(in, id, existing, today)
}

func check(in models.Input, selfID string, existing []models.Todo, today time.Time) error {
	in = Normalize(in)
	form := todoForm{
		Title:       in.Title,
		Description: in.Description,
		Priority:    string(in.Priority),
		DueDate:     in.DueDate,
	}
	ctx := context.WithValue(context.Background(), todayKey{}, today.Format(models.DateLayout))
	if err := validate.StructCtx(ctx, form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fromFieldError(fieldErrs[0])
		}
		return err
	}
	for _, t := range existing {
		if t.ID == selfID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(t.Title), in.Title) {
			return &ValidationError{Field: "title", Message: "a todo with this title already exists"}
		}
	}
	return nil
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	field := fieldNames[fe.StructField()]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = fmt.Sprintf("must be at least %d characters", MinTitleLength)
	case "max":
		msg = fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)
	case "oneof":
		msg = "must be one of Low, Medium, High"
	case "datetime":
		msg = "must be a date in YYYY-MM-DD format"
	case "notpast":
		msg = "cannot be in the past"
	default:
		msg = "is invalid"
	}
	return &ValidationError{Field: field, Message: msg}
}
