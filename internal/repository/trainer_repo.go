package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pokedex-api/internal/domain"
)

// TrainerRepository define el contrato de persistencia para entrenadores.
type TrainerRepository interface {
	Create(ctx context.Context, trainer domain.Trainer) error
	GetByID(ctx context.Context, id string) (domain.Trainer, error)
	GetByUserID(ctx context.Context, userID string) (domain.Trainer, error)
	Update(ctx context.Context, trainer domain.Trainer) error
	List(ctx context.Context) ([]domain.Trainer, error)
}

// PgTrainerRepository implementa TrainerRepository usando pgxpool.
type PgTrainerRepository struct {
	pool *pgxpool.Pool
}

func NewPgTrainerRepository(pool *pgxpool.Pool) *PgTrainerRepository {
	return &PgTrainerRepository{pool: pool}
}

func (r *PgTrainerRepository) Create(ctx context.Context, trainer domain.Trainer) error {
	const query = `
		INSERT INTO trainers (id, user_id, name, age, region, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		trainer.ID,
		trainer.UserID,
		trainer.Name,
		trainer.Age,
		trainer.Region,
		trainer.CreatedAt,
		trainer.UpdatedAt,
	)
	return err
}

func (r *PgTrainerRepository) GetByID(ctx context.Context, id string) (domain.Trainer, error) {
	const query = `
		SELECT id, user_id, name, age, region, created_at, updated_at
		FROM trainers
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgTrainerRepository) GetByUserID(ctx context.Context, userID string) (domain.Trainer, error) {
	const query = `
		SELECT id, user_id, name, age, region, created_at, updated_at
		FROM trainers
		WHERE user_id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, userID))
}

func (r *PgTrainerRepository) Update(ctx context.Context, trainer domain.Trainer) error {
	const query = `
		UPDATE trainers
		SET name = $2, age = $3, region = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		trainer.ID,
		trainer.Name,
		trainer.Age,
		trainer.Region,
		trainer.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgTrainerRepository) List(ctx context.Context) ([]domain.Trainer, error) {
	const query = `
		SELECT id, user_id, name, age, region, created_at, updated_at
		FROM trainers
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trainers []domain.Trainer
	for rows.Next() {
		var t domain.Trainer
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Age, &t.Region, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		trainers = append(trainers, t)
	}
	return trainers, rows.Err()
}

func (r *PgTrainerRepository) scanOne(row pgx.Row) (domain.Trainer, error) {
	var t domain.Trainer
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Age, &t.Region, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Trainer{}, err
	}
	return t, err
}
