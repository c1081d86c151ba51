package template

import (
	"errors"
	"strings"

	"github.com/sitecraft/templet/core/validator"
)

// Filter is a filter intended to be used as a query
// within getting list of templates
type Filter struct {
	Industry       string
	Layout         string
	Theme          string
	IncludeDeleted bool
	Size           int    `validate:"omitempty,gte=0"`
	Offset         int    `validate:"omitempty,gte=0"`
	SortBy         string `validate:"omitempty,oneof=name slug created_at updated_at"`
	SortDirection  string `validate:"omitempty,oneof=asc desc"`
}

// Validate will check whether fields in the filter fulfill the constraints
func (f *Filter) Validate() error {
	violations := validator.Struct(f)
	if len(violations) == 0 {
		return nil
	}

	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.Field+" "+v.Reason)
	}
	return errors.New(strings.Join(parts, " and "))
}
