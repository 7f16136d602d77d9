package usecase

import (
	"context"
	"strings"

	"go-candidate-tracker/internal/domain"
	"go-candidate-tracker/pkg/apperror"
	"go-candidate-tracker/pkg/logger"
	"go-candidate-tracker/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// candidateUsecase orchestrates the record lifecycle across the relational
// store and the blob store. There is no cross-store transaction available:
// multi-step operations are ordered so the relational row stays the source
// of truth, and blob cleanup after a successful row mutation is best-effort
// (an orphaned blob is an accepted risk, never a failed operation).
type candidateUsecase struct {
	repo     domain.CandidateRepository
	resumes  domain.ResumeStore
	search   *SearchIndexer
	validate *validator.Validate
}

func NewCandidateUsecase(repo domain.CandidateRepository, resumes domain.ResumeStore, validate *validator.Validate) domain.CandidateUsecase {
	return &candidateUsecase{
		repo:     repo,
		resumes:  resumes,
		search:   NewSearchIndexer(repo),
		validate: validate,
	}
}

// ownerFromContext resolves the verified caller identity. Every operation is
// owner-scoped; client-supplied owner values are never trusted.
func ownerFromContext(ctx context.Context) (string, error) {
	ownerID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ownerID == "" {
		return "", apperror.Unauthenticated("User not authenticated")
	}
	return ownerID, nil
}

func (u *candidateUsecase) List(ctx context.Context) ([]domain.Candidate, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return u.repo.List(ctx, ownerID)
}

func (u *candidateUsecase) Get(ctx context.Context, id string) (*domain.Candidate, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	candidate, err := u.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	return candidate, nil
}

func (u *candidateUsecase) Search(ctx context.Context, query string) ([]domain.Candidate, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return u.search.Search(ctx, ownerID, query)
}

// Create inserts a new record, uploading the resume first when one is
// supplied. If the upload fails the record is never created: fail-fast, no
// partial state.
func (u *candidateUsecase) Create(ctx context.Context, in domain.CandidateInsert, resume *domain.ResumeFile) (*domain.Candidate, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	in.FullName = strings.TrimSpace(in.FullName)
	in.AppliedPosition = strings.TrimSpace(in.AppliedPosition)
	if in.Status == "" {
		in.Status = domain.StatusNew
	}

	if err := u.validate.Struct(in); err != nil {
		return nil, apperror.Validation(validation.FormatError(err))
	}

	if resume != nil {
		url, err := u.resumes.Upload(ctx, ownerID, *resume)
		if err != nil {
			return nil, err
		}
		in.ResumeURL = url
	}

	return u.repo.Insert(ctx, ownerID, in)
}

// Update edits a record, replacing the stored resume when a new file is
// supplied. The resulting patch contains only fields that actually changed;
// updated_at is refreshed regardless.
func (u *candidateUsecase) Update(ctx context.Context, id string, in domain.CandidateUpdate) (*domain.Candidate, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	current, err := u.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.NotFound("Candidate not found")
	}

	resumeURL := current.ResumeURL

	if in.Resume != nil {
		// Removing the replaced blob is best-effort: a stale object is
		// preferable to blocking the edit.
		if current.ResumeURL != nil {
			if err := u.resumes.Delete(ctx, *current.ResumeURL); err != nil {
				logger.Log.Warn("failed to delete replaced resume",
					"candidate_id", id, "url", *current.ResumeURL, "error", err)
			}
		}
		url, err := u.resumes.Upload(ctx, ownerID, *in.Resume)
		if err != nil {
			return nil, err
		}
		resumeURL = &url
	}

	patch := domain.CandidatePatch{}

	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, apperror.Validation("full_name cannot be empty")
		}
		if name != current.FullName {
			patch.FullName = &name
		}
	}
	if in.AppliedPosition != nil {
		position := strings.TrimSpace(*in.AppliedPosition)
		if position == "" {
			return nil, apperror.Validation("applied_position cannot be empty")
		}
		if position != current.AppliedPosition {
			patch.AppliedPosition = &position
		}
	}
	if in.CreatedAt != nil && !in.CreatedAt.Equal(current.CreatedAt) {
		patch.CreatedAt = in.CreatedAt
	}
	if !equalURL(resumeURL, current.ResumeURL) {
		patch.ResumeURL = resumeURL
	}

	updated, err := u.repo.Update(ctx, id, ownerID, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	return updated, nil
}

// UpdateStatus moves the candidate to the given status. The graph is flat,
// so no transition ordering is enforced; a transition to the current value
// short-circuits without issuing a write.
func (u *candidateUsecase) UpdateStatus(ctx context.Context, id string, status domain.CandidateStatus) (*domain.Candidate, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, apperror.Validation("Invalid status value")
	}

	current, err := u.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := u.repo.Update(ctx, id, ownerID, domain.CandidatePatch{Status: &status})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	return updated, nil
}

// Delete removes the record and then its blob. The row delete is
// authoritative: once it succeeds the operation reports success, and a blob
// cleanup failure only leaves an orphaned object behind (logged, not fatal).
// Deleting an absent or foreign candidate is a no-op.
func (u *candidateUsecase) Delete(ctx context.Context, id string) error {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return err
	}

	current, err := u.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if current == nil {
		logger.Log.Warn("delete requested for missing candidate", "candidate_id", id)
		return nil
	}

	resumeURL := current.ResumeURL

	if err := u.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	if resumeURL != nil {
		if err := u.resumes.Delete(ctx, *resumeURL); err != nil {
			logger.Log.Warn("failed to delete resume after row delete, blob orphaned",
				"candidate_id", id, "url", *resumeURL, "error", err)
		}
	}
	return nil
}

func equalURL(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
