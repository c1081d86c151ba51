package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/sitecraft/templet/core/template"
)

// TemplateRepository is a type that manages template operations on the
// primary database
type TemplateRepository struct {
	client            *Client
	defaultGetMaxSize int
}

// NewTemplateRepository initializes template repository
func NewTemplateRepository(client *Client, defaultGetMaxSize int) (*TemplateRepository, error) {
	if client == nil {
		return nil, errNilPostgresClient
	}
	if defaultGetMaxSize == 0 {
		defaultGetMaxSize = DefaultMaxResultSize
	}
	return &TemplateRepository{
		client:            client,
		defaultGetMaxSize: defaultGetMaxSize,
	}, nil
}

// GetAll retrieves list of templates with filters
func (r *TemplateRepository) GetAll(ctx context.Context, flt template.Filter) ([]template.Template, error) {
	size := flt.Size
	if size == 0 {
		size = r.defaultGetMaxSize
	}

	builder := r.getTemplateSQL().
		Limit(uint64(size)).
		Offset(uint64(flt.Offset))
	builder = r.buildFilterQuery(builder, flt)
	builder = r.buildOrderQuery(builder, flt)
	query, args, err := r.buildSQL(builder)
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}

	var models []TemplateModel
	if err := r.client.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, fmt.Errorf("error getting template list: %w", err)
	}

	templates := []template.Template{}
	for i := range models {
		tmpl, err := models[i].toTemplate()
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

// GetByID retrieves template by its ID
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (template.Template, error) {
	if !isValidUUID(id) {
		return template.Template{}, template.InvalidError{TemplateID: id}
	}
	return r.getWithPredicate(ctx, sq.Eq{"id": id})
}

// GetBySlug retrieves the live template carrying the given slug
func (r *TemplateRepository) GetBySlug(ctx context.Context, slug string) (template.Template, error) {
	tmpl, err := r.getWithPredicate(ctx, sq.Eq{"slug": slug, "deleted": false})
	if err != nil {
		var notFound template.NotFoundError
		if errors.As(err, &notFound) {
			return template.Template{}, template.NotFoundError{Slug: slug}
		}
		return template.Template{}, err
	}
	return tmpl, nil
}

func (r *TemplateRepository) getWithPredicate(ctx context.Context, pred sq.Eq) (template.Template, error) {
	query, args, err := r.buildSQL(r.getTemplateSQL().Where(pred))
	if err != nil {
		return template.Template{}, fmt.Errorf("error building query: %w", err)
	}

	var model TemplateModel
	if err := r.client.GetContext(ctx, &model, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			id, _ := pred["id"].(string)
			return template.Template{}, template.NotFoundError{TemplateID: id}
		}
		return template.Template{}, fmt.Errorf("error getting template: %w", err)
	}
	return model.toTemplate()
}

// Create inserts the template and its first revision in one
// transaction and returns the assigned id
func (r *TemplateRepository) Create(ctx context.Context, tmpl *template.Template, rev *template.Revision) (id string, err error) {
	if tmpl == nil {
		return "", template.ErrNilTemplate
	}

	err = r.client.RunWithinTx(ctx, func(tx *sqlx.Tx) error {
		if tmpl.CreatedAt.IsZero() {
			tmpl.CreatedAt = time.Now()
		}
		if tmpl.UpdatedAt.IsZero() {
			tmpl.UpdatedAt = tmpl.CreatedAt
		}

		model, err := newTemplateModel(tmpl)
		if err != nil {
			return err
		}

		query, args, err := sq.Insert("templates").
			Columns("slug", "name", "industry", "layout", "theme", "document", "deleted", "version", "updated_by", "created_at", "updated_at").
			Values(model.Slug, model.Name, model.Industry, model.Layout, model.Theme, model.Document, model.Deleted, model.Version, model.UpdatedBy, model.CreatedAt, model.UpdatedAt).
			Suffix("RETURNING \"id\"").
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building insert query: %w", err)
		}

		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return fmt.Errorf("error running insert query: %w", checkPostgresError(err))
		}

		tmpl.ID = id
		if rev != nil {
			rev.TemplateID = id
			if err := r.insertRevision(ctx, tx, rev); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

// TrySerializedCommit writes the template only if its stored version
// still equals expectedPriorVersion, and records the revision in the
// same transaction. A version moved by another writer surfaces as
// template.ErrConcurrentCommit.
func (r *TemplateRepository) TrySerializedCommit(ctx context.Context, expectedPriorVersion string, tmpl *template.Template, rev *template.Revision) error {
	if tmpl == nil {
		return template.ErrNilTemplate
	}
	if !isValidUUID(tmpl.ID) {
		return template.InvalidError{TemplateID: tmpl.ID}
	}

	return r.client.RunWithinTx(ctx, func(tx *sqlx.Tx) error {
		if tmpl.UpdatedAt.IsZero() {
			tmpl.UpdatedAt = time.Now()
		}

		model, err := newTemplateModel(tmpl)
		if err != nil {
			return err
		}

		query, args, err := sq.Update("templates").
			Set("slug", model.Slug).
			Set("name", model.Name).
			Set("industry", model.Industry).
			Set("layout", model.Layout).
			Set("theme", model.Theme).
			Set("document", model.Document).
			Set("version", model.Version).
			Set("updated_by", model.UpdatedBy).
			Set("updated_at", model.UpdatedAt).
			Where(sq.Eq{"id": tmpl.ID, "version": expectedPriorVersion, "deleted": false}).
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("error building update query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("error running update query: %w", checkPostgresError(err))
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("error getting affected rows: %w", err)
		}
		if affected == 0 {
			var current string
			err := tx.QueryRowContext(ctx, "SELECT version FROM templates WHERE id = $1 AND deleted = false", tmpl.ID).Scan(&current)
			if errors.Is(err, sql.ErrNoRows) {
				return template.NotFoundError{TemplateID: tmpl.ID}
			}
			if err != nil {
				return fmt.Errorf("error reading current version: %w", err)
			}
			return template.ErrConcurrentCommit
		}

		if rev != nil {
			rev.TemplateID = tmpl.ID
			if err := r.insertRevision(ctx, tx, rev); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TemplateRepository) insertRevision(ctx context.Context, tx *sqlx.Tx, rev *template.Revision) error {
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}

	model, err := newRevisionModel(rev)
	if err != nil {
		return err
	}

	query, args, err := sq.Insert("template_revisions").
		Columns("template_id", "version", "changelog", "snapshot", "message", "updated_by", "created_at").
		Values(model.TemplateID, model.Version, model.Changelog, model.Snapshot, model.Message, model.UpdatedBy, model.CreatedAt).
		Suffix("RETURNING \"id\"").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building insert revision query: %w", err)
	}

	if err := tx.QueryRowContext(ctx, query, args...).Scan(&rev.ID); err != nil {
		return fmt.Errorf("error running insert revision query: %w", checkPostgresError(err))
	}
	return nil
}

// GetRevisions returns the template's revisions in ascending commit
// order
func (r *TemplateRepository) GetRevisions(ctx context.Context, templateID string) ([]template.Revision, error) {
	if !isValidUUID(templateID) {
		return nil, template.InvalidError{TemplateID: templateID}
	}

	query, args, err := r.buildSQL(r.getRevisionSQL().
		Where(sq.Eq{"template_id": templateID}).
		OrderBy(columnNameCreatedAt + " " + sortDirectionAscending))
	if err != nil {
		return nil, fmt.Errorf("error building query: %w", err)
	}

	var models []RevisionModel
	if err := r.client.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, fmt.Errorf("error getting revision list: %w", err)
	}

	revisions := make([]template.Revision, 0, len(models))
	for i := range models {
		rev, err := models[i].toRevision()
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}

// GetRevision returns one revision addressed by template and version
func (r *TemplateRepository) GetRevision(ctx context.Context, templateID, version string) (template.Revision, error) {
	if !isValidUUID(templateID) {
		return template.Revision{}, template.InvalidError{TemplateID: templateID}
	}

	query, args, err := r.buildSQL(r.getRevisionSQL().
		Where(sq.Eq{"template_id": templateID, "version": version}))
	if err != nil {
		return template.Revision{}, fmt.Errorf("error building query: %w", err)
	}

	var model RevisionModel
	if err := r.client.GetContext(ctx, &model, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return template.Revision{}, template.NotFoundError{TemplateID: templateID, Version: version}
		}
		return template.Revision{}, fmt.Errorf("error getting revision: %w", err)
	}
	return model.toRevision()
}

// SoftDelete marks the template deleted, which frees its slug for
// reuse while history stays queryable
func (r *TemplateRepository) SoftDelete(ctx context.Context, id string) error {
	if !isValidUUID(id) {
		return template.InvalidError{TemplateID: id}
	}

	query, args, err := sq.Update("templates").
		Set("deleted", true).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "deleted": false}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building delete query: %w", err)
	}

	res, err := r.client.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error running delete query: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting affected rows: %w", err)
	}
	if affected == 0 {
		return template.NotFoundError{TemplateID: id}
	}
	return nil
}

func (r *TemplateRepository) getTemplateSQL() sq.SelectBuilder {
	return sq.Select(
		"id", "slug", "name", "industry", "layout", "theme",
		"document", "deleted", "version", "updated_by", "created_at", "updated_at",
	).From("templates")
}

func (r *TemplateRepository) getRevisionSQL() sq.SelectBuilder {
	return sq.Select(
		"id", "template_id", "version", "changelog", "snapshot", "message", "updated_by", "created_at",
	).From("template_revisions")
}

func (r *TemplateRepository) buildFilterQuery(builder sq.SelectBuilder, flt template.Filter) sq.SelectBuilder {
	if !flt.IncludeDeleted {
		builder = builder.Where(sq.Eq{"deleted": false})
	}
	if flt.Industry != "" {
		builder = builder.Where(sq.Eq{"industry": flt.Industry})
	}
	if flt.Layout != "" {
		builder = builder.Where(sq.Eq{"layout": flt.Layout})
	}
	if flt.Theme != "" {
		builder = builder.Where(sq.Eq{"theme": flt.Theme})
	}
	return builder
}

func (r *TemplateRepository) buildOrderQuery(builder sq.SelectBuilder, flt template.Filter) sq.SelectBuilder {
	column := flt.SortBy
	if column == "" {
		column = columnNameUpdatedAt
	}
	direction := sortDirectionDescending
	if strings.EqualFold(flt.SortDirection, "asc") {
		direction = sortDirectionAscending
	}
	return builder.OrderBy(column + " " + direction)
}

func (r *TemplateRepository) buildSQL(builder sq.Sqlizer) (query string, args []interface{}, err error) {
	query, args, err = builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("error transforming to sql")
	}
	query, err = sq.Dollar.ReplacePlaceholders(query)
	if err != nil {
		return "", nil, fmt.Errorf("error replacing placeholders to dollar")
	}
	return
}
