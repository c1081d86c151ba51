package template

import (
	"context"
	"fmt"
	"time"

	"github.com/r3labs/diff/v2"
	"github.com/sitecraft/templet/core/user"
)

// Revision is one entry of a template's version history: the changelog
// against the previous version, plus a full snapshot at snapshot
// points so reconstruction never replays the whole history.
type Revision struct {
	ID         string         `json:"id"`
	TemplateID string         `json:"template_id"`
	Version    string         `json:"version"`
	Changelog  diff.Changelog `json:"changelog"`
	Snapshot   *Template      `json:"snapshot,omitempty"`
	Message    string         `json:"message,omitempty"`
	UpdatedBy  user.User      `json:"updated_by"`
	CreatedAt  time.Time      `json:"created_at"`
}

// History computes version transitions and reconstructs past versions.
// Writes for one template are serialized through the repository's
// optimistic version check; History never retries, the caller decides.
type History struct {
	repo Repository
}

func NewHistory(repo Repository) *History {
	return &History{repo: repo}
}

// Commit persists next as the successor of prev, tagged with the
// free-text commit message. A nil prev creates the template at the
// base version. An existing template without a version is absorbed as
// a history discontinuity: the commit stores a full snapshot so
// reconstruction has a baseline again.
//
// Returns ErrConcurrentCommit when another writer got between reading
// prev and committing next.
func (h *History) Commit(ctx context.Context, prev, next *Template, message string) (Template, []Advisory, error) {
	if next == nil {
		return Template{}, nil, ErrNilTemplate
	}

	if prev == nil {
		next.Version = BaseVersion
		rev, err := h.newRevision(next, nil, true, message)
		if err != nil {
			return Template{}, nil, err
		}
		id, err := h.repo.Create(ctx, next, rev)
		if err != nil {
			return Template{}, nil, err
		}
		next.ID = id
		return *next, nil, nil
	}

	if prev.Version == "" {
		return h.commitDiscontinuity(ctx, prev, next, message)
	}

	changelog, err := prev.Diff(next)
	if err != nil {
		return Template{}, nil, fmt.Errorf("diff against version %s: %w", prev.Version, err)
	}
	if len(changelog) == 0 {
		return *prev, nil, nil
	}

	newVersion, err := IncreaseMinorVersion(prev.Version)
	if err != nil {
		return Template{}, nil, err
	}
	next.ID = prev.ID
	next.Version = newVersion
	next.CreatedAt = prev.CreatedAt

	rev, err := h.newRevision(next, changelog, IsSnapshotPoint(newVersion), message)
	if err != nil {
		return Template{}, nil, err
	}
	if err := h.repo.TrySerializedCommit(ctx, prev.Version, next, rev); err != nil {
		return Template{}, nil, err
	}
	return *next, nil, nil
}

// commitDiscontinuity handles a template row that predates versioning.
// The next version continues from the highest recorded revision when
// one exists, otherwise history restarts at the base version.
func (h *History) commitDiscontinuity(ctx context.Context, prev, next *Template, message string) (Template, []Advisory, error) {
	version := BaseVersion
	revisions, err := h.repo.GetRevisions(ctx, prev.ID)
	if err != nil {
		return Template{}, nil, err
	}
	if len(revisions) > 0 {
		version, err = IncreaseMinorVersion(revisions[len(revisions)-1].Version)
		if err != nil {
			return Template{}, nil, err
		}
	}

	next.ID = prev.ID
	next.Version = version
	next.CreatedAt = prev.CreatedAt

	rev, err := h.newRevision(next, nil, true, message)
	if err != nil {
		return Template{}, nil, err
	}
	if err := h.repo.TrySerializedCommit(ctx, prev.Version, next, rev); err != nil {
		return Template{}, nil, err
	}

	advisories := []Advisory{{
		Code:    AdvisoryHistoryDiscontinuity,
		Message: "template had no recorded version, history restarts from a fresh snapshot",
	}}
	return *next, advisories, nil
}

// newRevision builds the revision row for a commit. A failed snapshot
// clone is an error, not a downgrade to a changelog-only revision:
// dropping a snapshot point would leave later reconstruction without a
// baseline.
func (h *History) newRevision(tmpl *Template, changelog diff.Changelog, snapshot bool, message string) (*Revision, error) {
	rev := &Revision{
		TemplateID: tmpl.ID,
		Version:    tmpl.Version,
		Changelog:  changelog,
		Message:    message,
		UpdatedBy:  tmpl.UpdatedBy,
	}
	if snapshot {
		clone, err := tmpl.Clone()
		if err != nil {
			return nil, fmt.Errorf("snapshot template at version %s: %w", tmpl.Version, err)
		}
		rev.Snapshot = &clone
	}
	return rev, nil
}

// Reconstruct rebuilds the template as it was at the given version by
// starting from the nearest snapshot at or before it and replaying the
// changelogs in between.
func (h *History) Reconstruct(ctx context.Context, templateID, version string) (Template, error) {
	if _, err := ParseVersion(version); err != nil {
		return Template{}, err
	}

	revisions, err := h.repo.GetRevisions(ctx, templateID)
	if err != nil {
		return Template{}, err
	}

	target := -1
	for i, rev := range revisions {
		if rev.Version == version {
			target = i
			break
		}
	}
	if target == -1 {
		return Template{}, NotFoundError{TemplateID: templateID, Version: version}
	}

	baseline := -1
	for i := target; i >= 0; i-- {
		if revisions[i].Snapshot != nil {
			baseline = i
			break
		}
	}
	if baseline == -1 {
		return Template{}, ErrMissingBaseline
	}

	tmpl, err := revisions[baseline].Snapshot.Clone()
	if err != nil {
		return Template{}, err
	}

	patcher, err := diff.NewDiffer(
		diff.DiscardComplexOrigin(),
		diff.AllowTypeMismatch(true),
		diff.SliceOrdering(true))
	if err != nil {
		return Template{}, err
	}
	for i := baseline + 1; i <= target; i++ {
		if pl := patcher.Patch(revisions[i].Changelog, &tmpl); pl.HasErrors() {
			return Template{}, fmt.Errorf("replaying changelog for version %s failed", revisions[i].Version)
		}
		tmpl.Version = revisions[i].Version
	}
	tmpl.ID = templateID
	return tmpl, nil
}
