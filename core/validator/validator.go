package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// singleton
var validate *validator.Validate

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func getValidator() *validator.Validate {
	if validate == nil {
		validate = newValidator()
	}
	return validate
}

// FieldViolation is one failed constraint. Field is the json name of
// the failing field, Path is its full json path from the root struct,
// e.g. "pages[2].slug".
type FieldViolation struct {
	Field  string
	Path   string
	Reason string
}

// Struct validates f and returns one violation per failed field. It
// never stops at the first failure; callers get the complete set.
func Struct(f interface{}) []FieldViolation {
	err := getValidator().Struct(f)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldViolation{{Field: "", Reason: err.Error()}}
	}

	violations := make([]FieldViolation, 0, len(errs))
	for _, e := range errs {
		violations = append(violations, FieldViolation{
			Field:  e.Field(),
			Path:   trimRootNamespace(e.Namespace()),
			Reason: reasonFor(e),
		})
	}
	return violations
}

// trimRootNamespace drops the root struct name from a namespace, so
// "Template.pages[2].slug" becomes "pages[2].slug".
func trimRootNamespace(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reasonFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("value %q not recognized, only support %q", e.Value(), e.Param())
	case "gte":
		return fmt.Sprintf("cannot be less than %s", e.Param())
	case "max":
		return fmt.Sprintf("cannot be longer than %s", e.Param())
	default:
		return fmt.Sprintf("failed constraint %q", e.Tag())
	}
}
