package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pokedex-api/internal/domain"
	"pokedex-api/internal/email"
	"pokedex-api/internal/oauth"
	"pokedex-api/internal/repository"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrNoPassword         = errors.New("account has no password")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrOAuthInvalid       = errors.New("oauth data invalid")
)

// Los tokens de verificación y de reseteo caducan a la hora de emitidos.
const tokenTTL = time.Hour

const issuanceWindow = 10 * time.Minute

// AuthService coordina registro, verificación de email, reseteo de
// contraseña y autenticación.
type AuthService struct {
	logger     *zap.Logger
	users      repository.UserRepository
	trainers   repository.TrainerRepository
	sender     email.Sender
	verifier   oauth.Verifier
	limiter    RateLimiter
	appURL     string
	bcryptCost int
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	trainers repository.TrainerRepository,
	sender email.Sender,
	verifier oauth.Verifier,
	limiter RateLimiter,
	appURL string,
	bcryptCost int,
) *AuthService {
	if limiter == nil {
		limiter = NewIssuanceRateLimiter(issuanceWindow, 3)
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		logger:     logger,
		users:      users,
		trainers:   trainers,
		sender:     sender,
		verifier:   verifier,
		limiter:    limiter,
		appURL:     strings.TrimRight(appURL, "/"),
		bcryptCost: bcryptCost,
	}
}

// SignUp crea la cuenta, emite el token de verificación y despacha el correo.
// Si el correo no sale, el par token/expiración se revierte a NULL pero la
// cuenta recién creada se conserva; emailSent lo refleja.
func (s *AuthService) SignUp(ctx context.Context, emailAddr, password string) (domain.User, bool, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" {
		return domain.User{}, false, ErrInvalidEmail
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return domain.User{}, false, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return domain.User{}, false, err
	}

	token, expiresAt, err := generateToken()
	if err != nil {
		return domain.User{}, false, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:                       uuid.NewString(),
		Email:                    emailAddr,
		PasswordHash:             string(hashBytes),
		VerificationToken:        token,
		VerificationTokenExpires: &expiresAt,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, false, err
	}

	if err := s.sendVerification(ctx, user.Email, token, expiresAt); err != nil {
		s.logger.Warn("send verification email failed", zap.Error(err), zap.String("email", emailAddr))
		if clearErr := s.users.ClearVerificationToken(ctx, user.ID); clearErr != nil {
			s.logger.Error("rollback verification token failed", zap.Error(clearErr), zap.String("user_id", user.ID))
		}
		user.VerificationToken = ""
		user.VerificationTokenExpires = nil
		return user, false, nil
	}

	return user, true, nil
}

// VerifyEmail canjea el token de verificación. El canje es una sola sentencia
// condicional sobre el usuario: un segundo intento con el mismo token ya no
// encuentra fila. Crea el entrenador si el usuario aún no tiene uno.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrTokenInvalid
	}

	now := time.Now().UTC()
	user, err := s.users.RedeemVerificationToken(ctx, token, now, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrTokenInvalid
		}
		return domain.User{}, err
	}

	trainer, err := s.ensureTrainer(ctx, &user, localPart(user.Email))
	if err != nil {
		return domain.User{}, err
	}
	user.TrainerID = trainer.ID
	return user, nil
}

// ResendVerification emite un token nuevo para cuentas sin verificar. Para
// emails desconocidos responde igual que para los conocidos.
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if user.EmailVerified != nil {
		return ErrAlreadyVerified
	}

	token, expiresAt, err := generateToken()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, token, expiresAt); err != nil {
		return err
	}

	if err := s.sendVerification(ctx, user.Email, token, expiresAt); err != nil {
		// El token queda en pie: el usuario puede pedir otro reenvío.
		s.logger.Warn("resend verification email failed", zap.Error(err), zap.String("email", emailAddr))
		return ErrEmailSendFailure
	}
	return nil
}

// ForgotPassword emite un token de reseteo para cuentas con contraseña. Para
// emails desconocidos responde igual que para los conocidos.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if !user.HasPassword() {
		return ErrNoPassword
	}

	token, expiresAt, err := generateToken()
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return err
	}

	link := s.appURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.sender.SendPasswordResetEmail(ctx, user.Email, link, expiresAt); err != nil {
		s.logger.Warn("send password reset email failed", zap.Error(err), zap.String("email", emailAddr))
		if clearErr := s.users.ClearPasswordResetToken(ctx, user.ID); clearErr != nil {
			s.logger.Error("rollback reset token failed", zap.Error(clearErr), zap.String("user_id", user.ID))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// ResetPassword canjea el token de reseteo y reemplaza el hash de la
// credencial en una sola sentencia condicional.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (domain.User, error) {
	token = strings.TrimSpace(token)
	password = strings.TrimSpace(password)
	if token == "" {
		return domain.User{}, ErrTokenInvalid
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.RedeemPasswordResetToken(ctx, token, time.Now().UTC(), string(hashBytes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrTokenInvalid
		}
		return domain.User{}, err
	}
	return user, nil
}

// ValidateResetToken comprueba si un token de reseteo sigue vigente sin canjearlo.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenInvalid
	}
	_, err := s.users.GetByPasswordResetToken(ctx, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTokenInvalid
		}
		return err
	}
	return nil
}

// Authenticate valida email y contraseña. Usuario ausente, cuenta sin
// contraseña o contraseña errónea devuelven el mismo ErrInvalidCredentials;
// la cuenta sin verificar se distingue con ErrEmailNotVerified.
func (s *AuthService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !user.HasPassword() {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if user.EmailVerified == nil {
		return domain.User{}, ErrEmailNotVerified
	}
	return user, nil
}

// OAuthLogin verifica el ID token contra el proveedor y hace upsert del usuario.
func (s *AuthService) OAuthLogin(ctx context.Context, idToken string) (domain.User, error) {
	if s.verifier == nil {
		return domain.User{}, ErrOAuthInvalid
	}
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn("oauth token verification failed", zap.Error(err))
		return domain.User{}, ErrOAuthInvalid
	}
	return s.UpsertOAuthUser(ctx, OAuthInput{
		Provider:      claims.Provider,
		Subject:       claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		EmailVerified: claims.EmailVerified,
	})
}

type OAuthInput struct {
	Provider      string
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// UpsertOAuthUser confía en la identidad federada: busca por (provider, subject),
// si no, vincula por email, y si tampoco, crea la cuenta. Nunca toca la
// contraseña ni los pares de tokens.
func (s *AuthService) UpsertOAuthUser(ctx context.Context, input OAuthInput) (domain.User, error) {
	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	subject := strings.TrimSpace(input.Subject)
	emailAddr := normalizeEmail(input.Email)
	if provider == "" || subject == "" {
		return domain.User{}, ErrOAuthInvalid
	}

	user, err := s.users.GetByAuth(ctx, provider, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	if emailAddr != "" {
		existing, err := s.users.GetByEmail(ctx, emailAddr)
		if err == nil {
			if err := s.users.LinkOAuth(ctx, existing.ID, provider, subject); err != nil {
				return domain.User{}, err
			}
			existing.AuthProvider = provider
			existing.AuthSubject = subject
			if existing.EmailVerified == nil && input.EmailVerified {
				verifiedAt := time.Now().UTC()
				if err := s.users.VerifyEmail(ctx, existing.ID, verifiedAt); err != nil {
					return domain.User{}, err
				}
				existing.EmailVerified = &verifiedAt
			}
			if existing.Image == "" && input.Picture != "" {
				if err := s.users.SetImage(ctx, existing.ID, input.Picture); err != nil {
					return domain.User{}, err
				}
				existing.Image = input.Picture
			}
			return existing, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, err
		}
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		Image:        input.Picture,
		AuthProvider: provider,
		AuthSubject:  subject,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.EmailVerified {
		user.EmailVerified = &now
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = localPart(emailAddr)
	}
	trainer, err := s.ensureTrainer(ctx, &user, name)
	if err != nil {
		return domain.User{}, err
	}
	user.TrainerID = trainer.ID
	return user, nil
}

func (s *AuthService) ensureTrainer(ctx context.Context, user *domain.User, name string) (domain.Trainer, error) {
	trainer, err := s.trainers.GetByUserID(ctx, user.ID)
	if err == nil {
		if user.TrainerID == "" {
			if err := s.users.SetTrainer(ctx, user.ID, trainer.ID); err != nil {
				return domain.Trainer{}, err
			}
		}
		return trainer, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Trainer{}, err
	}

	now := time.Now().UTC()
	trainer = domain.Trainer{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.trainers.Create(ctx, trainer); err != nil {
		return domain.Trainer{}, err
	}
	if err := s.users.SetTrainer(ctx, user.ID, trainer.ID); err != nil {
		return domain.Trainer{}, err
	}
	return trainer, nil
}

func (s *AuthService) sendVerification(ctx context.Context, toEmail, token string, expiresAt time.Time) error {
	link := s.appURL + "/api/auth/verify-email?token=" + url.QueryEscape(token)
	return s.sender.SendVerificationEmail(ctx, toEmail, link, expiresAt)
}

// generateToken produce un token opaco de 256 bits en hex y su expiración absoluta.
func generateToken() (string, time.Time, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	return hex.EncodeToString(buf), time.Now().UTC().Add(tokenTTL), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
