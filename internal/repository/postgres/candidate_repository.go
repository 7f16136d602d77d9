package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-candidate-tracker/internal/domain"
	"go-candidate-tracker/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const candidateColumns = `id, owner_id, full_name, applied_position, status, resume_url, created_at, updated_at`

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var c domain.Candidate
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.FullName, &c.AppliedPosition,
		&c.Status, &c.ResumeURL, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *candidateRepository) List(ctx context.Context, ownerID string) ([]domain.Candidate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM candidates
		WHERE owner_id = $1
		ORDER BY created_at DESC`, candidateColumns)

	return r.queryCandidates(ctx, query, ownerID)
}

func (r *candidateRepository) Search(ctx context.Context, ownerID, query string) ([]domain.Candidate, error) {
	// Case-insensitive substring match on either column, same ordering as List.
	sql := fmt.Sprintf(`
		SELECT %s FROM candidates
		WHERE owner_id = $1
		  AND (full_name ILIKE $2 OR applied_position ILIKE $2)
		ORDER BY created_at DESC`, candidateColumns)

	return r.queryCandidates(ctx, sql, ownerID, "%"+query+"%")
}

func (r *candidateRepository) queryCandidates(ctx context.Context, query string, args ...any) ([]domain.Candidate, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Database("failed to fetch candidates", err)
	}
	defer rows.Close()

	candidates := []domain.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, apperror.Database("failed to scan candidate", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Database("failed to read candidates", err)
	}
	return candidates, nil
}

// GetByID returns (nil, nil) when no row matches id+owner, so callers can
// distinguish "not found" from real failures.
func (r *candidateRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Candidate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM candidates
		WHERE id = $1 AND owner_id = $2`, candidateColumns)

	c, err := scanCandidate(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Database("failed to fetch candidate", err)
	}
	return c, nil
}

func (r *candidateRepository) Insert(ctx context.Context, ownerID string, in domain.CandidateInsert) (*domain.Candidate, error) {
	query := fmt.Sprintf(`
		INSERT INTO candidates (owner_id, full_name, applied_position, status, resume_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, candidateColumns)

	var resumeURL *string
	if in.ResumeURL != "" {
		resumeURL = &in.ResumeURL
	}

	c, err := scanCandidate(r.db.QueryRow(ctx, query,
		ownerID, in.FullName, in.AppliedPosition, in.Status, resumeURL,
	))
	if err != nil {
		return nil, apperror.Database("failed to insert candidate", err)
	}
	return c, nil
}

// Update applies a partial patch scoped to id+owner. updated_at is always
// refreshed. Returns (nil, nil) when no row matched.
func (r *candidateRepository) Update(ctx context.Context, id, ownerID string, patch domain.CandidatePatch) (*domain.Candidate, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{}
	argIndex := 1

	if patch.FullName != nil {
		set = append(set, fmt.Sprintf("full_name = $%d", argIndex))
		args = append(args, *patch.FullName)
		argIndex++
	}
	if patch.AppliedPosition != nil {
		set = append(set, fmt.Sprintf("applied_position = $%d", argIndex))
		args = append(args, *patch.AppliedPosition)
		argIndex++
	}
	if patch.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *patch.Status)
		argIndex++
	}
	if patch.ResumeURL != nil {
		set = append(set, fmt.Sprintf("resume_url = $%d", argIndex))
		args = append(args, *patch.ResumeURL)
		argIndex++
	}
	if patch.CreatedAt != nil {
		set = append(set, fmt.Sprintf("created_at = $%d", argIndex))
		args = append(args, *patch.CreatedAt)
		argIndex++
	}

	query := fmt.Sprintf(`
		UPDATE candidates SET %s
		WHERE id = $%d AND owner_id = $%d
		RETURNING %s`, strings.Join(set, ", "), argIndex, argIndex+1, candidateColumns)
	args = append(args, id, ownerID)

	c, err := scanCandidate(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.Database("failed to update candidate", err)
	}
	return c, nil
}

// Delete is a no-op when the row is already absent.
func (r *candidateRepository) Delete(ctx context.Context, id, ownerID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return apperror.Database("failed to delete candidate", err)
	}
	return nil
}
