package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// CharacterFilter captures listing parameters.
type CharacterFilter struct {
	OwnerID  *string
	Statuses []domain.CharacterStatus
	Page     Page
}

// CharacterRepository encapsulates character persistence.
type CharacterRepository interface {
	Create(ctx context.Context, character *domain.Character) error
	// Update persists character only if its stored status is still expected
	// and the row was not written since character was read (Version).
	Update(ctx context.Context, character *domain.Character, expected domain.CharacterStatus) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Character, error)
	ExistsByNameAndOwner(ctx context.Context, name, ownerID, excludeID string) (bool, error)
	List(ctx context.Context, filter CharacterFilter) ([]domain.Character, error)
	ListGallery(ctx context.Context, page Page) ([]domain.GalleryEntry, error)
}

type characterRepository struct {
	pool *pgxpool.Pool
}

// NewCharacterRepository instantiates repository.
func NewCharacterRepository(pool *pgxpool.Pool) CharacterRepository {
	return &characterRepository{pool: pool}
}

const characterColumns = `c.id, c.name, c.owner_id, c.class_id, cc.name,
        c.gender, c.skin_color, c.hair_color, c.hair_style, c.eye_color, c.face_shape, c.body_type, c.height, c.accessory,
        c.status, c.is_shared, c.rejection_reason, c.reviewer_id, c.reviewed_at, c.created_at, c.updated_at, c.version`

const characterFrom = `FROM characters c JOIN character_classes cc ON cc.id = c.class_id`

func (r *characterRepository) Create(ctx context.Context, character *domain.Character) error {
	const query = `
        INSERT INTO characters (name, owner_id, class_id, gender, skin_color, hair_color, hair_style, eye_color,
            face_shape, body_type, height, accessory, status, is_shared, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$15)
        RETURNING id, created_at, updated_at, version`
	a := character.Appearance
	err := r.pool.QueryRow(ctx, query,
		character.Name,
		character.OwnerID,
		character.ClassID,
		a.Gender,
		a.SkinColor,
		a.HairColor,
		a.HairStyle,
		a.EyeColor,
		a.FaceShape,
		a.BodyType,
		a.Height,
		a.Accessory,
		character.Status.String(),
		character.IsShared,
		character.CreatedAt,
	).Scan(&character.ID, &character.CreatedAt, &character.UpdatedAt, &character.Version)
	return mapWriteError(err)
}

func (r *characterRepository) Update(ctx context.Context, character *domain.Character, expected domain.CharacterStatus) error {
	const query = `
        UPDATE characters SET name=$1, class_id=$2, gender=$3, skin_color=$4, hair_color=$5, hair_style=$6,
            eye_color=$7, face_shape=$8, body_type=$9, height=$10, accessory=$11, status=$12, is_shared=$13,
            rejection_reason=$14, reviewer_id=$15, reviewed_at=$16, updated_at=$17, version=version+1
        WHERE id=$18 AND status=$19 AND version=$20`
	a := character.Appearance
	cmd, err := r.pool.Exec(ctx, query,
		character.Name,
		character.ClassID,
		a.Gender,
		a.SkinColor,
		a.HairColor,
		a.HairStyle,
		a.EyeColor,
		a.FaceShape,
		a.BodyType,
		a.Height,
		a.Accessory,
		character.Status.String(),
		character.IsShared,
		character.RejectionReason,
		character.ReviewerID,
		character.ReviewedAt,
		character.UpdatedAt,
		character.ID,
		expected.String(),
		character.Version,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if err := guardedUpdateResult(ctx, r.pool, "characters", character.ID, "character", cmd.RowsAffected()); err != nil {
		return err
	}
	character.Version++
	return nil
}

// Delete removes the character; its comments cascade.
func (r *characterRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM characters WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return mapReadError(pgx.ErrNoRows, "character")
	}
	return nil
}

func (r *characterRepository) GetByID(ctx context.Context, id string) (*domain.Character, error) {
	character, err := scanCharacter(r.pool.QueryRow(ctx, `SELECT `+characterColumns+` `+characterFrom+` WHERE c.id=$1`, id))
	if err != nil {
		return nil, mapReadError(err, "character")
	}
	return character, nil
}

func (r *characterRepository) ExistsByNameAndOwner(ctx context.Context, name, ownerID, excludeID string) (bool, error) {
	const query = `
        SELECT EXISTS(
            SELECT 1 FROM characters
            WHERE name=$1 AND owner_id=$2 AND ($3 = '' OR id::text <> $3))`
	var exists bool
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(name), ownerID, excludeID).Scan(&exists)
	return exists, err
}

func scanCharacter(row pgx.Row) (*domain.Character, error) {
	var (
		character domain.Character
		status    string
	)
	a := &character.Appearance
	if err := row.Scan(
		&character.ID,
		&character.Name,
		&character.OwnerID,
		&character.ClassID,
		&character.ClassName,
		&a.Gender,
		&a.SkinColor,
		&a.HairColor,
		&a.HairStyle,
		&a.EyeColor,
		&a.FaceShape,
		&a.BodyType,
		&a.Height,
		&a.Accessory,
		&status,
		&character.IsShared,
		&character.RejectionReason,
		&character.ReviewerID,
		&character.ReviewedAt,
		&character.CreatedAt,
		&character.UpdatedAt,
		&character.Version,
	); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseCharacterStatus(status)
	if err != nil {
		return nil, err
	}
	character.Status = parsed
	return &character, nil
}

func (r *characterRepository) List(ctx context.Context, filter CharacterFilter) ([]domain.Character, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("c.owner_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status.String())
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("c.status IN (%s)", strings.Join(placeholders, ",")))
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY c.updated_at ASC LIMIT $%d OFFSET $%d`,
		characterColumns, characterFrom, strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Character
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *character)
	}
	return result, rows.Err()
}

// ListGallery returns shared characters, newest first, with the average of
// their approved reviews.
func (r *characterRepository) ListGallery(ctx context.Context, page Page) ([]domain.GalleryEntry, error) {
	page = page.Normalize()
	query := `
        SELECT ` + characterColumns + `, u.pseudo,
               COALESCE(AVG(cm.rating) FILTER (WHERE cm.status = 'APPROVED'), 0)::float8,
               COUNT(cm.id) FILTER (WHERE cm.status = 'APPROVED')
        ` + characterFrom + `
        JOIN users u ON u.id = c.owner_id
        LEFT JOIN comments cm ON cm.character_id = c.id
        WHERE c.is_shared AND c.status = 'APPROVED'
        GROUP BY c.id, cc.name, u.pseudo
        ORDER BY c.updated_at DESC
        LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.GalleryEntry
	for rows.Next() {
		var (
			entry  domain.GalleryEntry
			status string
		)
		c := &entry.Character
		a := &c.Appearance
		if err := rows.Scan(
			&c.ID, &c.Name, &c.OwnerID, &c.ClassID, &c.ClassName,
			&a.Gender, &a.SkinColor, &a.HairColor, &a.HairStyle, &a.EyeColor, &a.FaceShape, &a.BodyType, &a.Height, &a.Accessory,
			&status, &c.IsShared, &c.RejectionReason, &c.ReviewerID, &c.ReviewedAt, &c.CreatedAt, &c.UpdatedAt, &c.Version,
			&entry.OwnerPseudo, &entry.AverageRating, &entry.ReviewCount,
		); err != nil {
			return nil, err
		}
		parsed, err := domain.ParseCharacterStatus(status)
		if err != nil {
			return nil, err
		}
		c.Status = parsed
		result = append(result, entry)
	}
	return result, rows.Err()
}
