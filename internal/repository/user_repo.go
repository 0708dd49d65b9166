package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pokedex-api/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByAuth(ctx context.Context, provider, subject string) (domain.User, error)

	SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearVerificationToken(ctx context.Context, id string) error
	// RedeemVerificationToken marca el email como verificado y limpia el par
	// token/expiración en una sola sentencia condicional. Devuelve pgx.ErrNoRows
	// si el token no existe o ya expiró.
	RedeemVerificationToken(ctx context.Context, token string, now, verifiedAt time.Time) (domain.User, error)

	SetPasswordResetToken(ctx context.Context, id, token string, expiresAt time.Time) error
	ClearPasswordResetToken(ctx context.Context, id string) error
	GetByPasswordResetToken(ctx context.Context, token string, now time.Time) (domain.User, error)
	// RedeemPasswordResetToken reemplaza el hash de la credencial y limpia el par
	// token/expiración en una sola sentencia condicional.
	RedeemPasswordResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (domain.User, error)

	VerifyEmail(ctx context.Context, id string, verifiedAt time.Time) error
	LinkOAuth(ctx context.Context, id, provider, subject string) error
	SetImage(ctx context.Context, id, image string) error
	SetTrainer(ctx context.Context, id, trainerID string) error
}

const userColumns = `
	id, email, password_hash, image, auth_provider, auth_subject,
	email_verified, verification_token, verification_token_expires,
	password_reset_token, password_reset_token_expires,
	trainer_id, created_at, updated_at
`

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, image, auth_provider, auth_subject,
			email_verified, verification_token, verification_token_expires,
			password_reset_token, password_reset_token_expires,
			trainer_id, created_at, updated_at
		)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), $9, NULLIF($10, ''), $11, NULLIF($12, ''), $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Image,
		user.AuthProvider,
		user.AuthSubject,
		user.EmailVerified,
		user.VerificationToken,
		user.VerificationTokenExpires,
		user.PasswordResetToken,
		user.PasswordResetTokenExpires,
		user.TrainerID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE auth_provider = $1 AND auth_subject = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, provider, subject))
}

func (r *PgUserRepository) SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET verification_token = $2, verification_token_expires = $3, updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, token, expiresAt)
}

func (r *PgUserRepository) ClearVerificationToken(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET verification_token = NULL, verification_token_expires = NULL, updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id)
}

func (r *PgUserRepository) RedeemVerificationToken(ctx context.Context, token string, now, verifiedAt time.Time) (domain.User, error) {
	const query = `
		UPDATE users
		SET email_verified = $3,
		    verification_token = NULL,
		    verification_token_expires = NULL,
		    updated_at = now()
		WHERE verification_token = $1 AND verification_token_expires > $2
		RETURNING ` + userColumns
	return r.scanOne(r.pool.QueryRow(ctx, query, token, now, verifiedAt))
}

func (r *PgUserRepository) SetPasswordResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET password_reset_token = $2, password_reset_token_expires = $3, updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, token, expiresAt)
}

func (r *PgUserRepository) ClearPasswordResetToken(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET password_reset_token = NULL, password_reset_token_expires = NULL, updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id)
}

func (r *PgUserRepository) GetByPasswordResetToken(ctx context.Context, token string, now time.Time) (domain.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE password_reset_token = $1 AND password_reset_token_expires > $2
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, token, now))
}

func (r *PgUserRepository) RedeemPasswordResetToken(ctx context.Context, token string, now time.Time, passwordHash string) (domain.User, error) {
	const query = `
		UPDATE users
		SET password_hash = $3,
		    password_reset_token = NULL,
		    password_reset_token_expires = NULL,
		    updated_at = now()
		WHERE password_reset_token = $1 AND password_reset_token_expires > $2
		RETURNING ` + userColumns
	return r.scanOne(r.pool.QueryRow(ctx, query, token, now, passwordHash))
}

func (r *PgUserRepository) VerifyEmail(ctx context.Context, id string, verifiedAt time.Time) error {
	const query = `
		UPDATE users
		SET email_verified = $2,
		    verification_token = NULL,
		    verification_token_expires = NULL,
		    updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, verifiedAt)
}

func (r *PgUserRepository) LinkOAuth(ctx context.Context, id, provider, subject string) error {
	const query = `
		UPDATE users
		SET auth_provider = $2, auth_subject = $3, updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, provider, subject)
}

func (r *PgUserRepository) SetImage(ctx context.Context, id, image string) error {
	const query = `UPDATE users SET image = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, image)
}

func (r *PgUserRepository) SetTrainer(ctx context.Context, id, trainerID string) error {
	const query = `UPDATE users SET trainer_id = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, id, trainerID)
}

func (r *PgUserRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) scanOne(row pgx.Row) (domain.User, error) {
	var (
		u                   domain.User
		passwordHash, image *string
		verificationToken   *string
		passwordResetToken  *string
		trainerID           *string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&passwordHash,
		&image,
		&u.AuthProvider,
		&u.AuthSubject,
		&u.EmailVerified,
		&verificationToken,
		&u.VerificationTokenExpires,
		&passwordResetToken,
		&u.PasswordResetTokenExpires,
		&trainerID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if image != nil {
		u.Image = *image
	}
	if verificationToken != nil {
		u.VerificationToken = *verificationToken
	}
	if passwordResetToken != nil {
		u.PasswordResetToken = *passwordResetToken
	}
	if trainerID != nil {
		u.TrainerID = *trainerID
	}
	return u, err
}
