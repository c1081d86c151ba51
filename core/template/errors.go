package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyID          = errors.New("template does not have ID")
	ErrNilTemplate      = errors.New("nil template")
	ErrConcurrentCommit = errors.New("template version changed underneath the commit")
	ErrMissingBaseline  = errors.New("no snapshot baseline found in version history")
)

type NotFoundError struct {
	TemplateID string
	Slug       string
	Version    string
}

func (err NotFoundError) Error() string {
	if err.Version != "" {
		return fmt.Sprintf("could not find version %q of template %q", err.Version, err.TemplateID)
	}
	if err.TemplateID != "" {
		return fmt.Sprintf("no such template: %q", err.TemplateID)
	}
	if err.Slug != "" {
		return fmt.Sprintf("could not find template with slug = %q", err.Slug)
	}
	return "could not find template"
}

type InvalidError struct {
	TemplateID string
}

func (err InvalidError) Error() string {
	return fmt.Sprintf("invalid template id: %q", err.TemplateID)
}

// Violation is a single save-blocking problem addressed by field path,
// e.g. "pages[2].slug".
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidationErrors carries every violation found by the gate, never
// just the first one, so an editor can surface all problems at once.
type ValidationErrors []Violation

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, fmt.Sprintf("%s : %s", v.Path, v.Reason))
	}
	return fmt.Sprintf("error with [%s]", strings.Join(parts, ", "))
}

// JSON converts the violation set into its JSON representation
func (e ValidationErrors) JSON() []byte {
	output, err := json.Marshal(e)
	if err != nil {
		return []byte(err.Error())
	}
	return output
}
