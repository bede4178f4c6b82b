// Package validation checks measurement payloads before any classifier is called.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// Errors maps JSON field names to user-facing messages.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e Errors) Unwrap() error {
	return models.ErrInvalidInput
}

// Validator wraps a go-playground validator that reports JSON field names.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns nil or an Errors value with one message per bad field.
func (v *Validator) Validate(data models.BabyHealthData) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate measurements: %w", err)
	}

	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

// ValidateRequest also enforces a non-empty set of known models.
func (v *Validator) ValidateRequest(req models.PredictionRequest) error {
	if len(req.Models) == 0 {
		return models.ErrNoModelsSelected
	}
	for _, m := range req.Models {
		if !m.Valid() {
			return fmt.Errorf("%w: unknown model %q", models.ErrInvalidInput, m)
		}
	}
	return v.Validate(req.Data)
}

func message(fe validator.FieldError) string {
	if rule, ok := RuleFor(fe.Field()); ok {
		return RangeMessage(rule)
	}
	switch fe.Tag() {
	case "required":
		return fe.Field() + " est requis"
	case "oneof":
		return fmt.Sprintf("%s doit être l'une des valeurs: %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s invalide (%s)", fe.Field(), fe.Tag())
}

// RangeMessage formats the out-of-range message shown next to a field.
func RangeMessage(r Rule) string {
	msg := fmt.Sprintf("%s doit être entre %s et %s %s",
		r.Label,
		strconv.FormatFloat(r.Min, 'f', -1, 64),
		strconv.FormatFloat(r.Max, 'f', -1, 64),
		r.Unit)
	return strings.TrimSpace(msg)
}
