package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/goto/salt/log"
	"github.com/r3labs/diff/v2"
	"github.com/sitecraft/templet/core/block"
	"github.com/sitecraft/templet/core/template"
	"github.com/sitecraft/templet/core/user"
	"github.com/sitecraft/templet/internal/store/postgres"
	"github.com/stretchr/testify/suite"
)

type TemplateRepositoryTestSuite struct {
	suite.Suite
	ctx        context.Context
	client     *postgres.Client
	repository *postgres.TemplateRepository

	slugSeq int
}

func (r *TemplateRepositoryTestSuite) SetupSuite() {
	var err error

	logger := log.NewLogrus()
	r.ctx = context.Background()
	r.client, err = newTestClient(r.T(), logger)
	if err != nil {
		r.T().Fatal(err)
	}

	r.repository, err = postgres.NewTemplateRepository(r.client, defaultGetMaxSize)
	if err != nil {
		r.T().Fatal(err)
	}
}

func (r *TemplateRepositoryTestSuite) nextSlug() string {
	r.slugSeq++
	return fmt.Sprintf("test-site-%d", r.slugSeq)
}

func (r *TemplateRepositoryTestSuite) buildTemplate(slug string) *template.Template {
	return &template.Template{
		Slug:     slug,
		Name:     "Test Site",
		Industry: "food",
		Version:  template.BaseVersion,
		Pages: []template.Page{{
			ID:   "page-1",
			Slug: "index",
			Blocks: []block.Block{{
				ID:      "blk-1",
				Type:    block.TypeText,
				Content: map[string]interface{}{"value": "hello"},
			}},
		}},
		UpdatedBy: user.User{Email: "editor@example.com"},
	}
}

func (r *TemplateRepositoryTestSuite) createTemplate(slug string) *template.Template {
	tmpl := r.buildTemplate(slug)
	snapshot := *tmpl
	id, err := r.repository.Create(r.ctx, tmpl, &template.Revision{
		Version:   tmpl.Version,
		Snapshot:  &snapshot,
		Message:   "initial import",
		UpdatedBy: tmpl.UpdatedBy,
	})
	r.Require().NoError(err)
	r.Require().NotEmpty(id)
	return tmpl
}

func (r *TemplateRepositoryTestSuite) TestCreate() {
	r.Run("assigns an id and stores the document", func() {
		tmpl := r.createTemplate(r.nextSlug())

		stored, err := r.repository.GetByID(r.ctx, tmpl.ID)
		r.NoError(err)
		r.Equal(tmpl.Slug, stored.Slug)
		r.Equal(template.BaseVersion, stored.Version)
		r.Len(stored.Pages, 1)
		r.Equal("hello", stored.Pages[0].Blocks[0].Content["value"])
		r.Equal("editor@example.com", stored.UpdatedBy.Email)
		r.False(stored.CreatedAt.IsZero())
	})

	r.Run("rejects a duplicate live slug", func() {
		slug := r.nextSlug()
		r.createTemplate(slug)

		_, err := r.repository.Create(r.ctx, r.buildTemplate(slug), nil)
		r.Error(err)
	})

	r.Run("slug is reusable after soft delete", func() {
		slug := r.nextSlug()
		first := r.createTemplate(slug)
		r.NoError(r.repository.SoftDelete(r.ctx, first.ID))

		second := r.buildTemplate(slug)
		_, err := r.repository.Create(r.ctx, second, nil)
		r.NoError(err)
	})

	r.Run("nil template is rejected", func() {
		_, err := r.repository.Create(r.ctx, nil, nil)
		r.ErrorIs(err, template.ErrNilTemplate)
	})
}

func (r *TemplateRepositoryTestSuite) TestGet() {
	r.Run("get by id returns not found for unknown id", func() {
		_, err := r.repository.GetByID(r.ctx, "df5e5b9a-0d05-4b3f-9c9d-6c62c7a8f1a0")
		var notFound template.NotFoundError
		r.ErrorAs(err, &notFound)
	})

	r.Run("get by id rejects malformed id", func() {
		_, err := r.repository.GetByID(r.ctx, "not-a-uuid")
		var invalid template.InvalidError
		r.ErrorAs(err, &invalid)
	})

	r.Run("get by slug", func() {
		tmpl := r.createTemplate(r.nextSlug())

		stored, err := r.repository.GetBySlug(r.ctx, tmpl.Slug)
		r.NoError(err)
		r.Equal(tmpl.ID, stored.ID)
	})

	r.Run("get by slug ignores deleted templates", func() {
		tmpl := r.createTemplate(r.nextSlug())
		r.NoError(r.repository.SoftDelete(r.ctx, tmpl.ID))

		_, err := r.repository.GetBySlug(r.ctx, tmpl.Slug)
		var notFound template.NotFoundError
		r.ErrorAs(err, &notFound)
	})
}

func (r *TemplateRepositoryTestSuite) TestGetAll() {
	r.Run("filters by industry and excludes deleted", func() {
		kept := r.createTemplate(r.nextSlug())
		kept.Industry = "legal"
		kept.Version = "0.2"
		r.NoError(r.repository.TrySerializedCommit(r.ctx, template.BaseVersion, kept, &template.Revision{Version: "0.2"}))

		gone := r.createTemplate(r.nextSlug())
		r.NoError(r.repository.SoftDelete(r.ctx, gone.ID))

		templates, err := r.repository.GetAll(r.ctx, template.Filter{Industry: "legal"})
		r.NoError(err)
		r.Require().Len(templates, 1)
		r.Equal(kept.ID, templates[0].ID)

		for _, tmpl := range templates {
			r.NotEqual(gone.ID, tmpl.ID)
		}
	})

	r.Run("caps the page size at the configured maximum", func() {
		for i := 0; i < defaultGetMaxSize+2; i++ {
			r.createTemplate(r.nextSlug())
		}

		templates, err := r.repository.GetAll(r.ctx, template.Filter{})
		r.NoError(err)
		r.LessOrEqual(len(templates), defaultGetMaxSize)
	})
}

func (r *TemplateRepositoryTestSuite) TestTrySerializedCommit() {
	r.Run("moves the version and records the revision", func() {
		tmpl := r.createTemplate(r.nextSlug())

		next := *tmpl
		next.Name = "Renamed Site"
		next.Version = "0.2"
		clog := diff.Changelog{{
			Type: diff.UPDATE,
			Path: []string{"name"},
			From: "Test Site",
			To:   "Renamed Site",
		}}
		err := r.repository.TrySerializedCommit(r.ctx, template.BaseVersion, &next, &template.Revision{
			Version:   "0.2",
			Changelog: clog,
			Message:   "rename the site",
		})
		r.NoError(err)

		stored, err := r.repository.GetByID(r.ctx, tmpl.ID)
		r.NoError(err)
		r.Equal("0.2", stored.Version)
		r.Equal("Renamed Site", stored.Name)

		rev, err := r.repository.GetRevision(r.ctx, tmpl.ID, "0.2")
		r.NoError(err)
		r.Require().Len(rev.Changelog, 1)
		r.Equal("Renamed Site", rev.Changelog[0].To)
		r.Equal("rename the site", rev.Message)
		r.Nil(rev.Snapshot)
	})

	r.Run("stale expected version is a concurrent commit", func() {
		tmpl := r.createTemplate(r.nextSlug())

		next := *tmpl
		next.Version = "0.2"
		r.NoError(r.repository.TrySerializedCommit(r.ctx, template.BaseVersion, &next, &template.Revision{Version: "0.2"}))

		loser := *tmpl
		loser.Version = "0.2"
		err := r.repository.TrySerializedCommit(r.ctx, template.BaseVersion, &loser, &template.Revision{Version: "0.2"})
		r.ErrorIs(err, template.ErrConcurrentCommit)
	})

	r.Run("unknown template is not found", func() {
		ghost := r.buildTemplate(r.nextSlug())
		ghost.ID = "9f0d5c4e-9be2-4a7d-8d7a-2f3a4b5c6d7e"
		ghost.Version = "0.2"
		err := r.repository.TrySerializedCommit(r.ctx, template.BaseVersion, ghost, nil)
		var notFound template.NotFoundError
		r.ErrorAs(err, &notFound)
	})

	r.Run("concurrent commit leaves no revision behind", func() {
		tmpl := r.createTemplate(r.nextSlug())

		loser := *tmpl
		loser.Version = "0.2"
		err := r.repository.TrySerializedCommit(r.ctx, "0.99", &loser, &template.Revision{Version: "0.2"})
		r.ErrorIs(err, template.ErrConcurrentCommit)

		revisions, err := r.repository.GetRevisions(r.ctx, tmpl.ID)
		r.NoError(err)
		r.Len(revisions, 1)
	})
}

func (r *TemplateRepositoryTestSuite) TestRevisions() {
	r.Run("revisions come back in commit order with snapshots intact", func() {
		tmpl := r.createTemplate(r.nextSlug())

		for i := 2; i <= 3; i++ {
			next := *tmpl
			next.Version = fmt.Sprintf("0.%d", i)
			err := r.repository.TrySerializedCommit(r.ctx, fmt.Sprintf("0.%d", i-1), &next, &template.Revision{
				Version: next.Version,
			})
			r.Require().NoError(err)
		}

		revisions, err := r.repository.GetRevisions(r.ctx, tmpl.ID)
		r.NoError(err)
		r.Require().Len(revisions, 3)
		r.Equal("0.1", revisions[0].Version)
		r.Equal("0.3", revisions[2].Version)

		r.Require().NotNil(revisions[0].Snapshot)
		r.Equal(tmpl.Slug, revisions[0].Snapshot.Slug)
		r.Nil(revisions[1].Snapshot)
	})

	r.Run("unknown revision is not found", func() {
		tmpl := r.createTemplate(r.nextSlug())

		_, err := r.repository.GetRevision(r.ctx, tmpl.ID, "4.2")
		var notFound template.NotFoundError
		r.ErrorAs(err, &notFound)
	})
}

func (r *TemplateRepositoryTestSuite) TestSoftDelete() {
	r.Run("marks the template deleted", func() {
		tmpl := r.createTemplate(r.nextSlug())
		r.NoError(r.repository.SoftDelete(r.ctx, tmpl.ID))

		stored, err := r.repository.GetByID(r.ctx, tmpl.ID)
		r.NoError(err)
		r.True(stored.Deleted)
	})

	r.Run("deleting twice is not found", func() {
		tmpl := r.createTemplate(r.nextSlug())
		r.NoError(r.repository.SoftDelete(r.ctx, tmpl.ID))

		err := r.repository.SoftDelete(r.ctx, tmpl.ID)
		var notFound template.NotFoundError
		r.ErrorAs(err, &notFound)
	})
}

func TestTemplateRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres repository test in short mode")
	}
	suite.Run(t, &TemplateRepositoryTestSuite{})
}
