// Package validation wraps go-playground/validator with a shared instance
// and the custom tags used by request bodies.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"movie-recommendation-service/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("rating_step", func(fl validator.FieldLevel) bool {
			return ValidRating(fl.Field().Float())
		})
	})
	return validate
}

// ValidRating reports whether v is one of 1.0, 1.5, ..., 5.0.
func ValidRating(v float64) bool {
	if math.IsNaN(v) || v < models.MinRating || v > models.MaxRating {
		return false
	}
	doubled := v / models.RatingStep
	return doubled == math.Trunc(doubled)
}

// ValidateStruct validates s and converts the first failure into a
// *models.ValidationError.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &models.ValidationError{Message: err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, translateError(fe))
	}
	return &models.ValidationError{
		Field:   fieldErrs[0].Field(),
		Message: strings.Join(messages, "; "),
	}
}

var errorMessageTemplates = map[string]string{
	"required":    "%s is required",
	"email":       "%s must be a valid email address",
	"url":         "%s must be a valid URL",
	"datetime":    "%s must be a date in YYYY-MM-DD format",
	"rating_step": "%s must be between 1.0 and 5.0 in steps of 0.5",
	"ne":          "%s must not be zero",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	if tmpl, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field)
	}

	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
