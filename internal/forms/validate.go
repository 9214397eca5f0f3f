// Package forms prepares questionnaire definitions for publication.
package forms

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/plancours/internal/model"
)

const notBlankTag = "notblank"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json field names instead of Go names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if str, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(str) != ""
		}
		return false
	})
	return v
}

// Validate checks a form before it is saved. Every problem is reported in a
// single *model.ValidationError.
func Validate(form *model.Form, minQuestions int) error {
	verr := model.NewValidationError("form")

	if err := validate.Struct(form); err != nil {
		addFieldErrors(verr, err)
	}

	if len(form.Questions) < minQuestions {
		verr.AddError(fmt.Sprintf("au moins %d questions sont requises (%d fournies)", minQuestions, len(form.Questions)))
	}

	seen := make(map[string]bool, len(form.Questions))
	for _, q := range form.Questions {
		if q.ID == "" {
			continue
		}
		if seen[q.ID] {
			verr.AddError(fmt.Sprintf("identifiant de question en double : %s", q.ID))
		}
		seen[q.ID] = true
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// ValidateTeacher checks the identity attached to a submission
func ValidateTeacher(t model.Teacher) error {
	if err := validate.Struct(t); err != nil {
		verr := model.NewValidationError("teacher")
		addFieldErrors(verr, err)
		return verr
	}
	return nil
}

func addFieldErrors(verr *model.ValidationError, err error) {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.AddError(err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.AddError(describe(fe))
	}
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Form.")
	field = strings.TrimPrefix(field, "Teacher.")
	switch fe.Tag() {
	case notBlankTag:
		return field + " : ce champ ne peut pas être vide"
	case "email":
		return field + " : adresse courriel invalide"
	default:
		return fmt.Sprintf("%s : règle %q non respectée", field, fe.Tag())
	}
}
