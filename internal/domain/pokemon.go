package domain

import "time"

// TrainerPokemon es una entrada del pokedex de un entrenador.
type TrainerPokemon struct {
	ID          string    `json:"id"`
	TrainerID   string    `json:"trainer_id"`
	PokemonID   int       `json:"pokemon_id"`
	PokemonName string    `json:"pokemon_name"`
	CreatedAt   time.Time `json:"created_at"`
}
