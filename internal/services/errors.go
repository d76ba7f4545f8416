package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/stepflow-api/internal/constants"
)

var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrUnauthorized     = errors.New("caller is not allowed to perform this action")
	ErrNotFound         = errors.New("not found")

	ErrProjectNotFound    = fmt.Errorf("project %w", ErrNotFound)
	ErrStepNotFound       = fmt.Errorf("step %w", ErrNotFound)
	ErrSubtaskNotFound    = fmt.Errorf("subtask %w", ErrNotFound)
	ErrInvitationNotFound = fmt.Errorf("invitation %w", ErrNotFound)
	ErrNoteNotFound       = fmt.Errorf("note %w", ErrNotFound)
	ErrMemberNotFound     = fmt.Errorf("member %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)

	ErrStepLocked              = errors.New("step is locked until the previous step is completed")
	ErrInvitationNotAcceptable = errors.New("invitation is no longer pending or has expired")
	ErrValidation              = errors.New("validation failed")

	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoStepsGenerated     = errors.New("AI did not suggest any steps")
)

// ValidationError reports which input fields were rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, reason string) error {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

var validate = validator.New()

// validateInput runs struct tag validation and converts failures to a ValidationError.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[toSnake(fe.Field())] = describeTag(fe)
	}
	return out
}

var titleRule = fmt.Sprintf("required,max=%d", constants.MaxTitleLength)

// validateTitle applies the same rule as the `required,max=255` struct tags
// to a title that was given outside a validated input struct.
func validateTitle(title string) error {
	err := validate.Var(title, titleRule)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate title: %w", err)
	}
	return newValidationError("title", describeTag(fieldErrs[0]))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color such as #3b82f6"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
