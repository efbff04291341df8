package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// CharacterClassRepository reads the seeded class catalogue.
type CharacterClassRepository interface {
	GetByID(ctx context.Context, id string) (*domain.CharacterClass, error)
	List(ctx context.Context) ([]domain.CharacterClass, error)
}

type characterClassRepository struct {
	pool *pgxpool.Pool
}

// NewCharacterClassRepository builds the repository.
func NewCharacterClassRepository(pool *pgxpool.Pool) CharacterClassRepository {
	return &characterClassRepository{pool: pool}
}

func (r *characterClassRepository) GetByID(ctx context.Context, id string) (*domain.CharacterClass, error) {
	const query = `SELECT id, name, description FROM character_classes WHERE id=$1`
	var class domain.CharacterClass
	if err := r.pool.QueryRow(ctx, query, id).Scan(&class.ID, &class.Name, &class.Description); err != nil {
		return nil, mapReadError(err, "character class")
	}
	return &class, nil
}

func (r *characterClassRepository) List(ctx context.Context) ([]domain.CharacterClass, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM character_classes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CharacterClass
	for rows.Next() {
		var class domain.CharacterClass
		if err := rows.Scan(&class.ID, &class.Name, &class.Description); err != nil {
			return nil, err
		}
		result = append(result, class)
	}
	return result, rows.Err()
}
