package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/spec-kit/character-gallery/pkg/util/errorutil"
)

const (
	uniqueViolation    = "23505"
	invalidTextForType = "22P02"
)

// Unique constraints and the conflict each one reports.
var uniqueConstraints = map[string]struct {
	field   string
	message string
}{
	"users_email_key":               {field: "email", message: "email is already registered"},
	"users_pseudo_key":              {field: "pseudo", message: "pseudo is already taken"},
	"characters_name_owner_key":     {field: "name", message: "a character with this name already exists"},
	"comments_character_author_key": {field: "character_id", message: "you have already commented on this character"},
}

// ErrStaleState reports an update whose expected status no longer holds.
func ErrStaleState() error {
	return apperrors.NewConflict("resource was modified concurrently", nil)
}

// mapWriteError turns unique violations into CONFLICT and passes every other
// store error through.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if c, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
		return apperrors.NewConflict(c.message, map[string]any{"field": c.field})
	}
	return apperrors.NewConflict("resource already exists", map[string]any{"constraint": strings.TrimSpace(pgErr.ConstraintName)})
}

// mapReadError converts a missing row, or an id that cannot be a uuid, into
// NOT_FOUND for resource.
func mapReadError(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == invalidTextForType {
		return apperrors.NewNotFound(resource, nil)
	}
	return err
}

// guardedUpdateResult resolves a status-guarded update that touched no rows:
// a vanished row is NOT_FOUND, a row in another status is CONFLICT.
func guardedUpdateResult(ctx context.Context, pool *pgxpool.Pool, table, id, resource string, rowsAffected int64) error {
	if rowsAffected > 0 {
		return nil
	}
	var exists bool
	if err := pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id=$1)", id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFound(resource, nil)
	}
	return ErrStaleState()
}

// Page bounds a listing.
type Page struct {
	Limit  int
	Offset int
}

const (
	defaultPageSize = 20
	// MaxPageSize caps Limit.
	MaxPageSize = 100
	// MaxPage is the deepest 1-based page a listing serves.
	MaxPage = 10000
)

// Normalize applies the default and maximum page sizes.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
