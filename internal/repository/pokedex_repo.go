package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pokedex-api/internal/domain"
)

// TrainerPokemonRepository define el contrato de persistencia para entradas
// del pokedex de un entrenador.
type TrainerPokemonRepository interface {
	Create(ctx context.Context, entry domain.TrainerPokemon) error
	ListByTrainer(ctx context.Context, trainerID string) ([]domain.TrainerPokemon, error)
	// Delete borra por (trainerID, pokemonID) y devuelve cuántas filas eliminó.
	Delete(ctx context.Context, trainerID string, pokemonID int) (int64, error)
}

// PgTrainerPokemonRepository implementa TrainerPokemonRepository usando pgxpool.
type PgTrainerPokemonRepository struct {
	pool *pgxpool.Pool
}

func NewPgTrainerPokemonRepository(pool *pgxpool.Pool) *PgTrainerPokemonRepository {
	return &PgTrainerPokemonRepository{pool: pool}
}

func (r *PgTrainerPokemonRepository) Create(ctx context.Context, entry domain.TrainerPokemon) error {
	const query = `
		INSERT INTO trainer_pokemon (id, trainer_id, pokemon_id, pokemon_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.TrainerID,
		entry.PokemonID,
		entry.PokemonName,
		entry.CreatedAt,
	)
	return err
}

func (r *PgTrainerPokemonRepository) ListByTrainer(ctx context.Context, trainerID string) ([]domain.TrainerPokemon, error) {
	const query = `
		SELECT id, trainer_id, pokemon_id, pokemon_name, created_at
		FROM trainer_pokemon
		WHERE trainer_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TrainerPokemon
	for rows.Next() {
		var e domain.TrainerPokemon
		if err := rows.Scan(&e.ID, &e.TrainerID, &e.PokemonID, &e.PokemonName, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PgTrainerPokemonRepository) Delete(ctx context.Context, trainerID string, pokemonID int) (int64, error) {
	const query = `
		DELETE FROM trainer_pokemon
		WHERE trainer_id = $1 AND pokemon_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, trainerID, pokemonID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
