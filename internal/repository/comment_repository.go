package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// CommentFilter captures listing parameters.
type CommentFilter struct {
	CharacterID *string
	AuthorID    *string
	Statuses    []domain.CommentStatus
	Page        Page
}

// CommentRepository manages reviews left on characters.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	// Update persists comment only if its stored status is still expected.
	Update(ctx context.Context, comment *domain.Comment, expected domain.CommentStatus) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ExistsByCharacterAndAuthor(ctx context.Context, characterID, authorID string) (bool, error)
	List(ctx context.Context, filter CommentFilter) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

const commentColumns = `cm.id, cm.character_id, cm.author_id, u.pseudo, cm.rating, cm.text, cm.status,
        cm.rejection_reason, cm.reviewer_id, cm.commented_at, cm.reviewed_at`

const commentFrom = `FROM comments cm JOIN users u ON u.id = cm.author_id`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (character_id, author_id, rating, text, status, commented_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, commented_at`
	err := r.pool.QueryRow(ctx, query,
		comment.CharacterID,
		comment.AuthorID,
		comment.Rating,
		comment.Text,
		comment.Status.String(),
		comment.CommentedAt,
	).Scan(&comment.ID, &comment.CommentedAt)
	return mapWriteError(err)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment, expected domain.CommentStatus) error {
	const query = `
        UPDATE comments SET status=$1, rejection_reason=$2, reviewer_id=$3, reviewed_at=$4
        WHERE id=$5 AND status=$6`
	cmd, err := r.pool.Exec(ctx, query,
		comment.Status.String(),
		comment.RejectionReason,
		comment.ReviewerID,
		comment.ReviewedAt,
		comment.ID,
		expected.String(),
	)
	if err != nil {
		return mapWriteError(err)
	}
	return guardedUpdateResult(ctx, r.pool, "comments", comment.ID, "comment", cmd.RowsAffected())
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return mapReadError(pgx.ErrNoRows, "comment")
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	comment, err := scanComment(r.pool.QueryRow(ctx, `SELECT `+commentColumns+` `+commentFrom+` WHERE cm.id=$1`, id))
	if err != nil {
		return nil, mapReadError(err, "comment")
	}
	return comment, nil
}

func (r *commentRepository) ExistsByCharacterAndAuthor(ctx context.Context, characterID, authorID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM comments WHERE character_id=$1 AND author_id=$2)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, characterID, authorID).Scan(&exists)
	return exists, err
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var (
		comment domain.Comment
		status  string
	)
	if err := row.Scan(
		&comment.ID,
		&comment.CharacterID,
		&comment.AuthorID,
		&comment.AuthorPseudo,
		&comment.Rating,
		&comment.Text,
		&status,
		&comment.RejectionReason,
		&comment.ReviewerID,
		&comment.CommentedAt,
		&comment.ReviewedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseCommentStatus(status)
	if err != nil {
		return nil, err
	}
	comment.Status = parsed
	return &comment, nil
}

func (r *commentRepository) List(ctx context.Context, filter CommentFilter) ([]domain.Comment, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CharacterID != nil {
		args = append(args, *filter.CharacterID)
		clauses = append(clauses, fmt.Sprintf("cm.character_id=$%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("cm.author_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status.String())
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("cm.status IN (%s)", strings.Join(placeholders, ",")))
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY cm.commented_at ASC LIMIT $%d OFFSET $%d`,
		commentColumns, commentFrom, strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *comment)
	}
	return result, rows.Err()
}
