// Package validation wraps a shared go-playground validator. The instance
// caches struct metadata so it is built once per process.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"ms-cinema/internal/errs"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates v against its `validate` tags. Failures come back as a
// Validation error listing every offending field.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs.Wrap(errs.KindValidation, "invalid request", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}
	return errs.Wrap(errs.KindValidation, strings.Join(messages, "; "), err)
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, boundFor(fe))
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "unique":
		return fmt.Sprintf("%s must not repeat the same %s", field, strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func boundFor(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return "greater than " + fe.Param()
	}
	return fe.Param()
}
