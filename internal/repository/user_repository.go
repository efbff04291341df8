package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// UserFilter narrows the account listing.
type UserFilter struct {
	Roles     []domain.Role
	Suspended *bool
	Search    string
	Page      Page
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// SetSuspended flips is_suspended to suspended. It only writes when the
	// stored flag still holds the opposite value; otherwise CONFLICT.
	SetSuspended(ctx context.Context, id string, suspended bool, updatedAt time.Time) error
	// UpdatePassword writes the credential columns and nothing else.
	UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPseudo(ctx context.Context, pseudo string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, pseudo, email, password_hash, role, is_suspended, must_change_password, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (pseudo, email, password_hash, role, is_suspended, must_change_password, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Pseudo,
		user.Email,
		user.PasswordHash,
		user.Role.String(),
		user.IsSuspended,
		user.MustChangePassword,
		user.CreatedAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapWriteError(err)
}

func (r *userRepository) SetSuspended(ctx context.Context, id string, suspended bool, updatedAt time.Time) error {
	const query = `
        UPDATE users SET is_suspended=$1, updated_at=$2
        WHERE id=$3 AND is_suspended=$4`

	cmd, err := r.pool.Exec(ctx, query, suspended, updatedAt, id, !suspended)
	if err != nil {
		return mapReadError(err, "user")
	}
	return guardedUpdateResult(ctx, r.pool, "users", id, "user", cmd.RowsAffected())
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool, updatedAt time.Time) error {
	const query = `
        UPDATE users SET password_hash=$1, must_change_password=$2, updated_at=$3
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, mustChange, updatedAt, id)
	if err != nil {
		return mapReadError(err, "user")
	}
	if cmd.RowsAffected() == 0 {
		return mapReadError(pgx.ErrNoRows, "user")
	}
	return nil
}

// Delete removes the account; characters and comments cascade.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return mapReadError(pgx.ErrNoRows, "user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, domain.NormalizeEmail(email))
}

func (r *userRepository) GetByPseudo(ctx context.Context, pseudo string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE pseudo=$1`, strings.TrimSpace(pseudo))
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapReadError(err, "user")
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Pseudo,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.IsSuspended,
		&user.MustChangePassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	user.Role = parsed
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Roles) > 0 {
		placeholders := make([]string, len(filter.Roles))
		for i, role := range filter.Roles {
			args = append(args, role.String())
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("role IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Suspended != nil {
		args = append(args, *filter.Suspended)
		clauses = append(clauses, fmt.Sprintf("is_suspended=$%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+term+"%")
		clauses = append(clauses, fmt.Sprintf("(pseudo ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}
