package domain

import (
	"context"
	"io"
	"time"
)

// CandidateStatus is a flat enumeration: any value may transition to any
// other value directly, there is no pipeline ordering.
type CandidateStatus string

const (
	StatusNew          CandidateStatus = "New"
	StatusInterviewing CandidateStatus = "Interviewing"
	StatusHired        CandidateStatus = "Hired"
	StatusRejected     CandidateStatus = "Rejected"
)

func (s CandidateStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInterviewing, StatusHired, StatusRejected:
		return true
	}
	return false
}

// Candidate is an owner-scoped relational record. ResumeURL is set if and
// only if a resume blob currently exists for this candidate; a nil value
// implies no blob is referenced (orphaned blobs are an accepted risk of the
// two-step delete, see the lifecycle usecase).
type Candidate struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	FullName        string          `json:"full_name"`
	AppliedPosition string          `json:"applied_position"`
	Status          CandidateStatus `json:"status"`
	ResumeURL       *string         `json:"resume_url,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CandidateInsert carries client-supplied fields for creation. OwnerID is
// never part of this struct: it is always derived server-side from the
// verified caller identity.
type CandidateInsert struct {
	FullName        string          `json:"full_name" validate:"required,valid_name"`
	AppliedPosition string          `json:"applied_position" validate:"required"`
	Status          CandidateStatus `json:"status" validate:"omitempty,oneof=New Interviewing Hired Rejected"`
	ResumeURL       string          `json:"resume_url" validate:"omitempty,url"`
}

// CandidatePatch is a partial update: nil fields are left untouched.
// created_at is patchable because the record supports user-correctable
// application dates.
type CandidatePatch struct {
	FullName        *string
	AppliedPosition *string
	Status          *CandidateStatus
	ResumeURL       *string
	CreatedAt       *time.Time
}

func (p CandidatePatch) Empty() bool {
	return p.FullName == nil && p.AppliedPosition == nil && p.Status == nil &&
		p.ResumeURL == nil && p.CreatedAt == nil
}

// CandidateUpdate carries client-supplied fields for an edit. A non-nil
// Resume replaces the stored blob.
type CandidateUpdate struct {
	FullName        *string     `json:"full_name"`
	AppliedPosition *string     `json:"applied_position"`
	CreatedAt       *time.Time  `json:"created_at"`
	Resume          *ResumeFile `json:"-"`
}

// ResumeFile is an untrusted upload: Name and ContentType come straight
// from the client and must be validated/sanitized before storage.
type ResumeFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

type CandidateRepository interface {
	List(ctx context.Context, ownerID string) ([]Candidate, error)
	GetByID(ctx context.Context, id, ownerID string) (*Candidate, error)
	Insert(ctx context.Context, ownerID string, in CandidateInsert) (*Candidate, error)
	Update(ctx context.Context, id, ownerID string, patch CandidatePatch) (*Candidate, error)
	Delete(ctx context.Context, id, ownerID string) error
	Search(ctx context.Context, ownerID, query string) ([]Candidate, error)
}

type ResumeStore interface {
	Upload(ctx context.Context, ownerID string, file ResumeFile) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

type CandidateUsecase interface {
	List(ctx context.Context) ([]Candidate, error)
	Get(ctx context.Context, id string) (*Candidate, error)
	Create(ctx context.Context, in CandidateInsert, resume *ResumeFile) (*Candidate, error)
	Update(ctx context.Context, id string, in CandidateUpdate) (*Candidate, error)
	UpdateStatus(ctx context.Context, id string, status CandidateStatus) (*Candidate, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]Candidate, error)
}
