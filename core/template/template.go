package template

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/r3labs/diff/v2"
	"github.com/sitecraft/templet/core/block"
	"github.com/sitecraft/templet/core/user"
)

// Template is the root document of a site: an ordered list of pages
// plus shared header/footer blocks and classification tags.
type Template struct {
	ID        string                   `json:"id" diff:"-"`
	Slug      string                   `json:"slug" diff:"slug" validate:"required"`
	Name      string                   `json:"name" diff:"name" validate:"required"`
	Industry  string                   `json:"industry" diff:"industry"`
	Layout    string                   `json:"layout" diff:"layout"`
	Theme     string                   `json:"theme" diff:"theme"`
	Pages     []Page                   `json:"pages" diff:"pages" validate:"min=1,dive"`
	Services  []map[string]interface{} `json:"services" diff:"services"`
	Meta      map[string]interface{}   `json:"meta,omitempty" diff:"meta"`
	Header    *block.Block             `json:"header,omitempty" diff:"header"`
	Footer    *block.Block             `json:"footer,omitempty" diff:"footer"`
	Deleted   bool                     `json:"deleted,omitempty" diff:"-"`
	Version   string                   `json:"version,omitempty" diff:"-"`
	UpdatedBy user.User                `json:"updated_by,omitempty" diff:"-"`
	CreatedAt time.Time                `json:"created_at" diff:"-"`
	UpdatedAt time.Time                `json:"updated_at" diff:"-"`
}

// Page belongs to exactly one template. Order within Pages is
// significant and preserved.
type Page struct {
	ID         string        `json:"id" diff:"id"`
	Slug       string        `json:"slug" diff:"slug" validate:"required"`
	Title      string        `json:"title" diff:"title"`
	Blocks     []block.Block `json:"content_blocks" diff:"content_blocks"`
	ShowHeader *bool         `json:"show_header,omitempty" diff:"show_header"`
	ShowFooter *bool         `json:"show_footer,omitempty" diff:"show_footer"`
}

//go:generate mockery --name=Repository -r --case underscore --with-expecter --structname TemplateRepository --filename template_repository.go --output=./mocks

// Repository is the persistence collaborator. Commits to one template
// are serialized through TrySerializedCommit's optimistic version
// check.
type Repository interface {
	GetAll(ctx context.Context, flt Filter) ([]Template, error)
	GetByID(ctx context.Context, id string) (Template, error)
	GetBySlug(ctx context.Context, slug string) (Template, error)
	Create(ctx context.Context, tmpl *Template, rev *Revision) (string, error)
	TrySerializedCommit(ctx context.Context, expectedPriorVersion string, tmpl *Template, rev *Revision) error
	GetRevisions(ctx context.Context, templateID string) ([]Revision, error)
	GetRevision(ctx context.Context, templateID, version string) (Revision, error)
	SoftDelete(ctx context.Context, id string) error
}

// Diff returns nil changelog with nil error if equal, and a wrapped
// r3labs changelog otherwise. Template identity and audit fields are
// excluded via diff tags; page and block ids are part of the changelog
// so replaying it restores them at their exact positions. Slices are
// compared index by index, which makes a pure reorder a real change.
func (t *Template) Diff(other *Template) (diff.Changelog, error) {
	return diff.Diff(t, other,
		diff.DiscardComplexOrigin(),
		diff.AllowTypeMismatch(true),
		diff.SliceOrdering(true))
}

// Patch appends template with data from map. It mutates the template
// itself. It is using json annotation of the struct to patch the
// correct keys.
func (t *Template) Patch(patchData map[string]interface{}) {
	patchTemplate(t, patchData)
}

// Clone returns a deep copy via a JSON round trip.
func (t Template) Clone() (Template, error) {
	buf, err := json.Marshal(t)
	if err != nil {
		return Template{}, fmt.Errorf("clone template: marshal: %w", err)
	}
	var out Template
	if err := json.Unmarshal(buf, &out); err != nil {
		return Template{}, fmt.Errorf("clone template: unmarshal: %w", err)
	}
	return out, nil
}

// ToRaw converts the template to the JSON-shaped map form the migrator
// and gate operate on.
func (t Template) ToRaw() (map[string]interface{}, error) {
	buf, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("template to raw: marshal: %w", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("template to raw: unmarshal: %w", err)
	}
	return raw, nil
}
