package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sitecraft/templet/core/user"
	"github.com/sitecraft/templet/pkg/statsd"
)

//go:generate mockery --name=Worker -r --case underscore --with-expecter --structname Worker --filename worker_mock.go --output=./mocks

// Worker runs follow-up jobs that must not delay the save path.
type Worker interface {
	EnqueueWarmRenderCacheJob(ctx context.Context, tmpl Template) error
	Close() error
}

type Service struct {
	repository Repository
	gate       *Gate
	history    *History
	worker     Worker
	metrics    *statsd.Reporter
}

type ServiceDeps struct {
	Repo    Repository
	Gate    *Gate
	Worker  Worker
	Metrics *statsd.Reporter
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		repository: deps.Repo,
		gate:       deps.Gate,
		history:    NewHistory(deps.Repo),
		worker:     deps.Worker,
		metrics:    deps.Metrics,
	}
}

func (s *Service) GetAllTemplates(ctx context.Context, flt Filter) ([]Template, error) {
	if err := flt.Validate(); err != nil {
		return nil, err
	}

	templates, err := s.repository.GetAll(ctx, flt)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		templates[i], err = s.gate.Canonicalize(templates[i])
		if err != nil {
			return nil, fmt.Errorf("canonicalize template %q: %w", templates[i].ID, err)
		}
	}
	return templates, nil
}

func (s *Service) GetTemplateByID(ctx context.Context, id string) (tmpl Template, err error) {
	defer func() { s.instrument(ctx, "GetTemplateByID", err) }()

	if !isValidUUID(id) {
		return Template{}, InvalidError{TemplateID: id}
	}
	tmpl, err = s.repository.GetByID(ctx, id)
	if err != nil {
		return Template{}, err
	}
	return s.gate.Canonicalize(tmpl)
}

func (s *Service) GetTemplateBySlug(ctx context.Context, slug string) (tmpl Template, err error) {
	defer func() { s.instrument(ctx, "GetTemplateBySlug", err) }()

	tmpl, err = s.repository.GetBySlug(ctx, slug)
	if err != nil {
		return Template{}, err
	}
	return s.gate.Canonicalize(tmpl)
}

// CreateTemplate runs a raw document through the gate and stores it at
// the base version. The acting user is read from the context; message
// is the free-text commit message and is treated as opaque.
func (s *Service) CreateTemplate(ctx context.Context, raw map[string]interface{}, message string) (tmpl Template, advisories []Advisory, err error) {
	defer func() { s.instrument(ctx, "CreateTemplate", err) }()

	usr := user.FromContext(ctx)
	if err := usr.Validate(); err != nil {
		return Template{}, nil, err
	}

	deriveSlug(raw)
	tmpl, advisories, err = s.gate.PrepareForSave(raw)
	if err != nil {
		return Template{}, nil, err
	}
	tmpl.UpdatedBy = usr
	tmpl.CreatedAt = tmpl.UpdatedAt

	committed, commitAdvisories, err := s.history.Commit(ctx, nil, &tmpl, message)
	if err != nil {
		return Template{}, nil, err
	}
	advisories = append(advisories, commitAdvisories...)

	if err := s.worker.EnqueueWarmRenderCacheJob(ctx, committed); err != nil {
		return Template{}, nil, fmt.Errorf("enqueue render cache warm-up: %w", err)
	}
	return committed, advisories, nil
}

// UpdateTemplate commits a raw document as the next version of an
// existing template. Returns ErrConcurrentCommit when another writer
// committed in between; the caller re-reads and retries.
func (s *Service) UpdateTemplate(ctx context.Context, id string, raw map[string]interface{}, message string) (tmpl Template, advisories []Advisory, err error) {
	defer func() { s.instrument(ctx, "UpdateTemplate", err) }()

	usr := user.FromContext(ctx)
	if err := usr.Validate(); err != nil {
		return Template{}, nil, err
	}
	if !isValidUUID(id) {
		return Template{}, nil, InvalidError{TemplateID: id}
	}

	prev, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return Template{}, nil, err
	}

	deriveSlug(raw)
	tmpl, advisories, err = s.gate.PrepareForSave(raw)
	if err != nil {
		return Template{}, nil, err
	}
	tmpl.UpdatedBy = usr

	committed, commitAdvisories, err := s.history.Commit(ctx, &prev, &tmpl, message)
	if err != nil {
		return Template{}, nil, err
	}
	advisories = append(advisories, commitAdvisories...)

	if err := s.worker.EnqueueWarmRenderCacheJob(ctx, committed); err != nil {
		return Template{}, nil, fmt.Errorf("enqueue render cache warm-up: %w", err)
	}
	return committed, advisories, nil
}

// PatchTemplate applies a partial update on top of the stored document
// and commits the result as a regular update.
func (s *Service) PatchTemplate(ctx context.Context, id string, patchData map[string]interface{}, message string) (Template, []Advisory, error) {
	if !isValidUUID(id) {
		return Template{}, nil, InvalidError{TemplateID: id}
	}
	current, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return Template{}, nil, err
	}

	patched, err := current.Clone()
	if err != nil {
		return Template{}, nil, err
	}
	patched.Patch(patchData)

	raw, err := patched.ToRaw()
	if err != nil {
		return Template{}, nil, err
	}
	return s.UpdateTemplate(ctx, id, raw, message)
}

func (s *Service) GetVersionHistory(ctx context.Context, id string) ([]Revision, error) {
	if !isValidUUID(id) {
		return nil, InvalidError{TemplateID: id}
	}
	return s.repository.GetRevisions(ctx, id)
}

// GetTemplateByVersion rebuilds the template as of the given version
// from the nearest snapshot and the changelogs after it.
func (s *Service) GetTemplateByVersion(ctx context.Context, id, version string) (tmpl Template, err error) {
	defer func() { s.instrument(ctx, "GetTemplateByVersion", err) }()

	if !isValidUUID(id) {
		return Template{}, InvalidError{TemplateID: id}
	}
	return s.history.Reconstruct(ctx, id, version)
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) (err error) {
	defer func() { s.instrument(ctx, "DeleteTemplate", err) }()

	if !isValidUUID(id) {
		return InvalidError{TemplateID: id}
	}
	return s.repository.SoftDelete(ctx, id)
}

func (s *Service) instrument(_ context.Context, op string, err error) {
	metric := s.metrics.Incr("template_operation").Tag("operation", op)
	if err != nil {
		metric.Failure()
	} else {
		metric.Success()
	}
	metric.Publish()
}

// deriveSlug fills in a missing slug from the template name so a save
// without an explicit slug still passes validation.
func deriveSlug(raw map[string]interface{}) {
	if raw == nil {
		return
	}
	if slug, _ := raw["slug"].(string); slug != "" {
		return
	}
	if name, _ := raw["name"].(string); name != "" {
		raw["slug"] = Slugify(name)
	}
}

func isValidUUID(u string) bool {
	_, err := uuid.Parse(u)
	return err == nil
}
