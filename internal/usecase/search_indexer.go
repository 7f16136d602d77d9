package usecase

import (
	"context"

	"go-candidate-tracker/internal/domain"
)

// SearchIndexer delegates matching to the relational store's query layer.
// The semantics are deliberately narrow and must be preserved by any
// replacement full-text layer: case-insensitive substring match, OR across
// full_name and applied_position, no tokenization, no ranking, list
// ordering. An empty result set is a valid answer, not an error.
type SearchIndexer struct {
	repo domain.CandidateRepository
}

func NewSearchIndexer(repo domain.CandidateRepository) *SearchIndexer {
	return &SearchIndexer{repo: repo}
}

func (s *SearchIndexer) Search(ctx context.Context, ownerID, query string) ([]domain.Candidate, error) {
	return s.repo.Search(ctx, ownerID, query)
}
