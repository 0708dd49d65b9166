package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"pokedex-api/internal/domain"
	"pokedex-api/internal/repository"
)

var (
	ErrTrainerNotFound = errors.New("trainer not found")
	ErrPokemonNotFound = errors.New("pokemon not found")
)

// TrainerService coordina perfiles de entrenador y su pokedex.
type TrainerService struct {
	logger   *zap.Logger
	trainers repository.TrainerRepository
	pokedex  repository.TrainerPokemonRepository
	users    repository.UserRepository
}

func NewTrainerService(
	logger *zap.Logger,
	trainers repository.TrainerRepository,
	pokedex repository.TrainerPokemonRepository,
	users repository.UserRepository,
) *TrainerService {
	return &TrainerService{
		logger:   logger,
		trainers: trainers,
		pokedex:  pokedex,
		users:    users,
	}
}

type ProfileInput struct {
	Name   string
	Age    string
	Region string
}

// SaveProfile crea o actualiza el entrenador del usuario y mantiene el enlace
// users.trainer_id. Repetir el envío con los mismos datos es idempotente.
func (s *TrainerService) SaveProfile(ctx context.Context, userID string, input ProfileInput) (domain.Trainer, error) {
	trainer, err := s.trainers.GetByUserID(ctx, userID)
	if err == nil {
		trainer.Name = input.Name
		trainer.Age = input.Age
		trainer.Region = input.Region
		trainer.UpdatedAt = time.Now().UTC()
		if err := s.trainers.Update(ctx, trainer); err != nil {
			return domain.Trainer{}, err
		}
		return trainer, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Trainer{}, err
	}

	now := time.Now().UTC()
	trainer = domain.Trainer{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      input.Name,
		Age:       input.Age,
		Region:    input.Region,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.trainers.Create(ctx, trainer); err != nil {
		return domain.Trainer{}, err
	}
	if err := s.users.SetTrainer(ctx, userID, trainer.ID); err != nil {
		return domain.Trainer{}, err
	}
	return trainer, nil
}

func (s *TrainerService) GetTrainer(ctx context.Context, id string) (domain.Trainer, error) {
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trainer{}, ErrTrainerNotFound
		}
		return domain.Trainer{}, err
	}
	return trainer, nil
}

func (s *TrainerService) ListTrainers(ctx context.Context) ([]domain.Trainer, error) {
	return s.trainers.List(ctx)
}

func (s *TrainerService) ListPokedex(ctx context.Context, trainerID string) ([]domain.TrainerPokemon, error) {
	return s.pokedex.ListByTrainer(ctx, trainerID)
}

// AddPokemon inserta la entrada sin chequear duplicados: el mismo pokemon
// puede figurar más de una vez para un entrenador.
func (s *TrainerService) AddPokemon(ctx context.Context, trainerID string, pokemonID int, pokemonName string) (domain.TrainerPokemon, error) {
	entry := domain.TrainerPokemon{
		ID:          uuid.NewString(),
		TrainerID:   trainerID,
		PokemonID:   pokemonID,
		PokemonName: pokemonName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.pokedex.Create(ctx, entry); err != nil {
		return domain.TrainerPokemon{}, err
	}
	return entry, nil
}

func (s *TrainerService) RemovePokemon(ctx context.Context, trainerID string, pokemonID int) error {
	deleted, err := s.pokedex.Delete(ctx, trainerID, pokemonID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrPokemonNotFound
	}
	return nil
}
