package persist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

type CharacterRow struct {
	ID        int32
	AccountID int32
	Name      string
	PosX      float64
	PosY      float64
	PosZ      float64
	ModelID   int32
	TextureID int32
}

type SkillRow struct {
	ID    int32
	Name  string
	Value int32
}

type AbilityRow struct {
	ID       int32
	Name     string
	SpriteID int32
	Toggled  bool
	Targeted bool
}

// CharacterRepo covers character CRUD plus the skill/ability listings the
// EnterWorld reply needs.
type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func (r *CharacterRepo) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM characters WHERE name = $1)`, name,
	).Scan(&exists)
	return exists, err
}

// Create inserts a character and grants it every base skill and ability.
func (r *CharacterRepo) Create(ctx context.Context, accountID int32, name string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var charID int32
	err = tx.QueryRow(ctx,
		`INSERT INTO characters (account_id, name) VALUES ($1, $2) RETURNING id`,
		accountID, name,
	).Scan(&charID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO character_skills (character_id, skill_id, value)
		 SELECT $1, id, 10 FROM skills`, charID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO character_abilities (character_id, ability_id)
		 SELECT $1, id FROM abilities`, charID,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *CharacterRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM characters WHERE name = $1`, name)
	return err
}

// GetByName returns nil (no error) when the character does not exist.
func (r *CharacterRepo) GetByName(ctx context.Context, name string) (*CharacterRow, error) {
	row := &CharacterRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, account_id, name, pos_x, pos_y, pos_z, model_id, texture_id
		 FROM characters WHERE name = $1`, name,
	).Scan(&row.ID, &row.AccountID, &row.Name, &row.PosX, &row.PosY, &row.PosZ,
		&row.ModelID, &row.TextureID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// SavePosition persists a character's last world position.
func (r *CharacterRepo) SavePosition(ctx context.Context, charID int32, x, y, z float64) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET pos_x = $2, pos_y = $3, pos_z = $4 WHERE id = $1`,
		charID, x, y, z,
	)
	return err
}

func (r *CharacterRepo) ListNames(ctx context.Context, accountID int32) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name FROM characters WHERE account_id = $1 ORDER BY id`, accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *CharacterRepo) ListSkills(ctx context.Context, charID int32) ([]SkillRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT s.id, s.name, cs.value
		 FROM character_skills cs JOIN skills s ON s.id = cs.skill_id
		 WHERE cs.character_id = $1 ORDER BY s.id`, charID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []SkillRow
	for rows.Next() {
		var s SkillRow
		if err := rows.Scan(&s.ID, &s.Name, &s.Value); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func (r *CharacterRepo) ListAbilities(ctx context.Context, charID int32) ([]AbilityRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT a.id, a.name, a.sprite_id, a.toggled, a.targeted
		 FROM character_abilities ca JOIN abilities a ON a.id = ca.ability_id
		 WHERE ca.character_id = $1 ORDER BY a.id`, charID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAbilities(rows)
}

// ListAllAbilities returns the full ability table, loaded once at boot for
// ActivateAbility lookups.
func (r *CharacterRepo) ListAllAbilities(ctx context.Context) ([]AbilityRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, sprite_id, toggled, targeted FROM abilities ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAbilities(rows)
}

func scanAbilities(rows pgx.Rows) ([]AbilityRow, error) {
	var abilities []AbilityRow
	for rows.Next() {
		var a AbilityRow
		if err := rows.Scan(&a.ID, &a.Name, &a.SpriteID, &a.Toggled, &a.Targeted); err != nil {
			return nil, err
		}
		abilities = append(abilities, a)
	}
	return abilities, rows.Err()
}
