package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/r3labs/diff/v2"
	"github.com/sitecraft/templet/core/template"
	"github.com/sitecraft/templet/core/user"
)

// TemplateModel is the row shape of the templates table. The full
// document lives in a jsonb column; the scalar columns exist for
// filtering and uniqueness and are projections of the document.
type TemplateModel struct {
	ID        string       `db:"id"`
	Slug      string       `db:"slug"`
	Name      string       `db:"name"`
	Industry  string       `db:"industry"`
	Layout    string       `db:"layout"`
	Theme     string       `db:"theme"`
	Document  JSONDocument `db:"document"`
	Deleted   bool         `db:"deleted"`
	Version   string       `db:"version"`
	UpdatedBy JSONDocument `db:"updated_by"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func newTemplateModel(tmpl *template.Template) (TemplateModel, error) {
	buf, err := json.Marshal(tmpl)
	if err != nil {
		return TemplateModel{}, fmt.Errorf("encode template document: %w", err)
	}
	var document JSONDocument
	if err := json.Unmarshal(buf, &document); err != nil {
		return TemplateModel{}, fmt.Errorf("encode template document: %w", err)
	}

	return TemplateModel{
		ID:        tmpl.ID,
		Slug:      tmpl.Slug,
		Name:      tmpl.Name,
		Industry:  tmpl.Industry,
		Layout:    tmpl.Layout,
		Theme:     tmpl.Theme,
		Document:  document,
		Deleted:   tmpl.Deleted,
		Version:   tmpl.Version,
		UpdatedBy: userDocument(tmpl.UpdatedBy),
		CreatedAt: tmpl.CreatedAt,
		UpdatedAt: tmpl.UpdatedAt,
	}, nil
}

func (m *TemplateModel) toTemplate() (template.Template, error) {
	buf, err := json.Marshal(m.Document)
	if err != nil {
		return template.Template{}, fmt.Errorf("decode template document: %w", err)
	}
	var tmpl template.Template
	if err := json.Unmarshal(buf, &tmpl); err != nil {
		return template.Template{}, fmt.Errorf("decode template document: %w", err)
	}

	// row columns are authoritative over whatever the document carries
	tmpl.ID = m.ID
	tmpl.Slug = m.Slug
	tmpl.Name = m.Name
	tmpl.Deleted = m.Deleted
	tmpl.Version = m.Version
	tmpl.UpdatedBy = documentUser(m.UpdatedBy)
	tmpl.CreatedAt = m.CreatedAt
	tmpl.UpdatedAt = m.UpdatedAt
	return tmpl, nil
}

// RevisionModel is the row shape of the template_revisions table.
type RevisionModel struct {
	ID         string         `db:"id"`
	TemplateID string         `db:"template_id"`
	Version    string         `db:"version"`
	Changelog  types.JSONText `db:"changelog"`
	Snapshot   types.JSONText `db:"snapshot"`
	Message    string         `db:"message"`
	UpdatedBy  JSONDocument   `db:"updated_by"`
	CreatedAt  time.Time      `db:"created_at"`
}

func newRevisionModel(rev *template.Revision) (RevisionModel, error) {
	model := RevisionModel{
		ID:         rev.ID,
		TemplateID: rev.TemplateID,
		Version:    rev.Version,
		Message:    rev.Message,
		UpdatedBy:  userDocument(rev.UpdatedBy),
		CreatedAt:  rev.CreatedAt,
	}

	changelog, err := json.Marshal(rev.Changelog)
	if err != nil {
		return RevisionModel{}, fmt.Errorf("encode changelog: %w", err)
	}
	model.Changelog = changelog

	if rev.Snapshot != nil {
		snapshot, err := json.Marshal(rev.Snapshot)
		if err != nil {
			return RevisionModel{}, fmt.Errorf("encode snapshot: %w", err)
		}
		model.Snapshot = snapshot
	}
	return model, nil
}

func (m *RevisionModel) toRevision() (template.Revision, error) {
	rev := template.Revision{
		ID:         m.ID,
		TemplateID: m.TemplateID,
		Version:    m.Version,
		Message:    m.Message,
		UpdatedBy:  documentUser(m.UpdatedBy),
		CreatedAt:  m.CreatedAt,
	}

	if len(m.Changelog) > 0 && string(m.Changelog) != "null" {
		var clog diff.Changelog
		if err := m.Changelog.Unmarshal(&clog); err != nil {
			return template.Revision{}, fmt.Errorf("decode changelog: %w", err)
		}
		rev.Changelog = clog
	}

	if len(m.Snapshot) > 0 && string(m.Snapshot) != "null" {
		var snapshot template.Template
		if err := m.Snapshot.Unmarshal(&snapshot); err != nil {
			return template.Revision{}, fmt.Errorf("decode snapshot: %w", err)
		}
		rev.Snapshot = &snapshot
	}
	return rev, nil
}

func userDocument(usr user.User) JSONDocument {
	doc := JSONDocument{}
	if usr.UUID != "" {
		doc["uuid"] = usr.UUID
	}
	if usr.Email != "" {
		doc["email"] = usr.Email
	}
	return doc
}

func documentUser(doc JSONDocument) user.User {
	usr := user.User{}
	if s, ok := doc["uuid"].(string); ok {
		usr.UUID = s
	}
	if s, ok := doc["email"].(string); ok {
		usr.Email = s
	}
	return usr
}

// JSONDocument maps a jsonb column onto a plain Go map.
type JSONDocument map[string]interface{}

func (m JSONDocument) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	ba, err := m.MarshalJSON()
	return string(ba), err
}

func (m *JSONDocument) Scan(value interface{}) error {
	var ba []byte
	switch v := value.(type) {
	case []byte:
		ba = v
	case string:
		ba = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	t := map[string]interface{}{}
	err := json.Unmarshal(ba, &t)
	*m = JSONDocument(t)
	return err
}

// MarshalJSON to output non base64 encoded []byte
func (m JSONDocument) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	t := (map[string]interface{})(m)
	return json.Marshal(t)
}

// UnmarshalJSON to deserialize []byte
func (m *JSONDocument) UnmarshalJSON(b []byte) error {
	t := map[string]interface{}{}
	err := json.Unmarshal(b, &t)
	*m = JSONDocument(t)
	return err
}
