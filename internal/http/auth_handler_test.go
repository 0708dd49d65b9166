package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pokedex-api/internal/domain"
	"pokedex-api/internal/service"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	usersByAuth  map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		usersByAuth:  make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	if user.AuthProvider != "" && user.AuthSubject != "" {
		m.usersByAuth[user.AuthProvider+"|"+user.AuthSubject] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) GetByAuth(_ context.Context, provider, subject string) (domain.User, error) {
	id, ok := m.usersByAuth[provider+"|"+subject]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) SetVerificationToken(_ context.Context, id, token string, expiresAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.VerificationToken = token
	user.VerificationTokenExpires = &expiresAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) ClearVerificationToken(_ context.Context, id string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.VerificationToken = ""
	user.VerificationTokenExpires = nil
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) RedeemVerificationToken(_ context.Context, token string, now, verifiedAt time.Time) (domain.User, error) {
	for id, user := range m.usersByID {
		if user.VerificationToken != token {
			continue
		}
		if user.VerificationTokenExpires == nil || !user.VerificationTokenExpires.After(now) {
			return domain.User{}, pgx.ErrNoRows
		}
		user.EmailVerified = &verifiedAt
		user.VerificationToken = ""
		user.VerificationTokenExpires = nil
		m.usersByID[id] = user
		return user, nil
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *mockUserRepo) SetPasswordResetToken(_ context.Context, id, token string, expiresAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordResetToken = token
	user.PasswordResetTokenExpires = &expiresAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) ClearPasswordResetToken(_ context.Context, id string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordResetToken = ""
	user.PasswordResetTokenExpires = nil
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) GetByPasswordResetToken(_ context.Context, token string, now time.Time) (domain.User, error) {
	for _, user := range m.usersByID {
		if user.PasswordResetToken != token {
			continue
		}
		if user.PasswordResetTokenExpires == nil || !user.PasswordResetTokenExpires.After(now) {
			return domain.User{}, pgx.ErrNoRows
		}
		return user, nil
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *mockUserRepo) RedeemPasswordResetToken(_ context.Context, token string, now time.Time, passwordHash string) (domain.User, error) {
	for id, user := range m.usersByID {
		if user.PasswordResetToken != token {
			continue
		}
		if user.PasswordResetTokenExpires == nil || !user.PasswordResetTokenExpires.After(now) {
			return domain.User{}, pgx.ErrNoRows
		}
		user.PasswordHash = passwordHash
		user.PasswordResetToken = ""
		user.PasswordResetTokenExpires = nil
		m.usersByID[id] = user
		return user, nil
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *mockUserRepo) VerifyEmail(_ context.Context, id string, verifiedAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailVerified = &verifiedAt
	user.VerificationToken = ""
	user.VerificationTokenExpires = nil
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) LinkOAuth(_ context.Context, id, provider, subject string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.AuthProvider = provider
	user.AuthSubject = subject
	m.usersByID[id] = user
	m.usersByAuth[provider+"|"+subject] = id
	return nil
}

func (m *mockUserRepo) SetImage(_ context.Context, id, image string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Image = image
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) SetTrainer(_ context.Context, id, trainerID string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.TrainerID = trainerID
	m.usersByID[id] = user
	return nil
}

type mockTrainerRepo struct {
	trainersByID   map[string]domain.Trainer
	trainersByUser map[string]string
}

func newMockTrainerRepo() *mockTrainerRepo {
	return &mockTrainerRepo{
		trainersByID:   make(map[string]domain.Trainer),
		trainersByUser: make(map[string]string),
	}
}

func (m *mockTrainerRepo) Create(_ context.Context, trainer domain.Trainer) error {
	m.trainersByID[trainer.ID] = trainer
	m.trainersByUser[trainer.UserID] = trainer.ID
	return nil
}

func (m *mockTrainerRepo) GetByID(_ context.Context, id string) (domain.Trainer, error) {
	trainer, ok := m.trainersByID[id]
	if !ok {
		return domain.Trainer{}, pgx.ErrNoRows
	}
	return trainer, nil
}

func (m *mockTrainerRepo) GetByUserID(_ context.Context, userID string) (domain.Trainer, error) {
	id, ok := m.trainersByUser[userID]
	if !ok {
		return domain.Trainer{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockTrainerRepo) Update(_ context.Context, trainer domain.Trainer) error {
	if _, ok := m.trainersByID[trainer.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.trainersByID[trainer.ID] = trainer
	return nil
}

func (m *mockTrainerRepo) List(_ context.Context) ([]domain.Trainer, error) {
	out := make([]domain.Trainer, 0, len(m.trainersByID))
	for _, trainer := range m.trainersByID {
		out = append(out, trainer)
	}
	return out, nil
}

type mockEmailSender struct {
	lastVerifyLink string
	lastResetLink  string
	err            error
}

func (m *mockEmailSender) SendVerificationEmail(_ context.Context, _, link string, _ time.Time) error {
	m.lastVerifyLink = link
	return m.err
}

func (m *mockEmailSender) SendPasswordResetEmail(_ context.Context, _, link string, _ time.Time) error {
	m.lastResetLink = link
	return m.err
}

const testAppURL = "http://localhost:3000"

var errTest = errors.New("smtp down")

type authTestEnv struct {
	users    *mockUserRepo
	trainers *mockTrainerRepo
	sender   *mockEmailSender
	jwtSvc   *service.JWTService
	router   *gin.Engine
}

func setupAuthEnv() *authTestEnv {
	gin.SetMode(gin.TestMode)
	users := newMockUserRepo()
	trainers := newMockTrainerRepo()
	sender := &mockEmailSender{}
	authSvc := service.NewAuthService(zap.NewNop(), users, trainers, sender, nil, nil, testAppURL, bcrypt.MinCost)
	jwtSvc := service.NewJWTServiceWithStore("secret", 15*time.Minute, 30*time.Minute, service.NewMemoryRefreshTokenStore())
	h := NewAuthHandler(zap.NewNop(), authSvc, jwtSvc, testAppURL)

	r := gin.New()
	auth := r.Group("/api/auth")
	auth.POST("/signup", h.SignUp)
	auth.GET("/verify-email", h.VerifyEmail)
	auth.POST("/resend-verification", h.ResendVerification)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.GET("/reset-password", h.ValidateResetToken)
	auth.POST("/reset-password", h.ResetPassword)
	auth.POST("/login", h.Login)
	auth.POST("/oauth", h.OAuthLogin)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.Logout)

	return &authTestEnv{
		users:    users,
		trainers: trainers,
		sender:   sender,
		jwtSvc:   jwtSvc,
		router:   r,
	}
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link %q: %v", link, err)
	}
	token := parsed.Query().Get("token")
	if token == "" {
		t.Fatalf("expected token in link %q", link)
	}
	return token
}

func TestAuthHandlerSignUp_Success(t *testing.T) {
	env := setupAuthEnv()

	rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", gin.H{
		"email":            "user@example.com",
		"password":         "Password1",
		"confirm_password": "Password1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["userCreated"] != true || body["emailSent"] != true {
		t.Fatalf("unexpected flags: %v", body)
	}
	if env.sender.lastVerifyLink == "" {
		t.Fatalf("expected verification mail dispatched")
	}
}

func TestAuthHandlerSignUp_DuplicateEmail(t *testing.T) {
	env := setupAuthEnv()
	payload := gin.H{
		"email":            "user@example.com",
		"password":         "Password1",
		"confirm_password": "Password1",
	}

	if rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", payload); rec.Code != http.StatusCreated {
		t.Fatalf("first signup expected 201, got %d", rec.Code)
	}
	rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", payload)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "User with this email already exists" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandlerSignUp_WeakPassword(t *testing.T) {
	env := setupAuthEnv()

	rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", gin.H{
		"email":            "user@example.com",
		"password":         "short",
		"confirm_password": "different",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	errs, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected field errors, got %s", rec.Body.String())
	}
	if _, ok := errs["password"]; !ok {
		t.Fatalf("expected password errors, got %v", errs)
	}
	if _, ok := errs["confirm_password"]; !ok {
		t.Fatalf("expected confirm_password errors, got %v", errs)
	}
}

func TestAuthHandlerSignUp_SendFailure(t *testing.T) {
	env := setupAuthEnv()
	env.sender.err = errTest

	rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", gin.H{
		"email":            "user@example.com",
		"password":         "Password1",
		"confirm_password": "Password1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["userCreated"] != true || body["emailSent"] != false {
		t.Fatalf("unexpected flags: %v", body)
	}
}

func TestAuthHandlerVerifyEmail_Redirects(t *testing.T) {
	env := setupAuthEnv()

	rec := performRequest(env.router, http.MethodGet, "/api/auth/verify-email", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != testAppURL+"/verification-failed?reason=missing_token" {
		t.Fatalf("unexpected redirect: %s", loc)
	}

	rec = performRequest(env.router, http.MethodGet, "/api/auth/verify-email?token=bogus", nil)
	if loc := rec.Header().Get("Location"); loc != testAppURL+"/verification-failed?reason=invalid_or_expired_token" {
		t.Fatalf("unexpected redirect: %s", loc)
	}

	if rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", gin.H{
		"email":            "user@example.com",
		"password":         "Password1",
		"confirm_password": "Password1",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("signup expected 201, got %d", rec.Code)
	}
	token := tokenFromLink(t, env.sender.lastVerifyLink)

	rec = performRequest(env.router, http.MethodGet, "/api/auth/verify-email?token="+token, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != testAppURL+"/?verified=true" {
		t.Fatalf("unexpected redirect: %s", loc)
	}

	// El mismo token ya no sirve.
	rec = performRequest(env.router, http.MethodGet, "/api/auth/verify-email?token="+token, nil)
	if loc := rec.Header().Get("Location"); loc != testAppURL+"/verification-failed?reason=invalid_or_expired_token" {
		t.Fatalf("unexpected redirect on reuse: %s", loc)
	}
}

func TestAuthHandlerLogin_Flows(t *testing.T) {
	env := setupAuthEnv()

	if rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", gin.H{
		"email":            "user@example.com",
		"password":         "Password1",
		"confirm_password": "Password1",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("signup expected 201, got %d", rec.Code)
	}

	rec := performRequest(env.router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "Password1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before verification, got %d", rec.Code)
	}
	if decodeBody(t, rec)["code"] != "email_not_verified" {
		t.Fatalf("expected email_not_verified code, got %s", rec.Body.String())
	}

	token := tokenFromLink(t, env.sender.lastVerifyLink)
	if rec := performRequest(env.router, http.MethodGet, "/api/auth/verify-email?token="+token, nil); rec.Code != http.StatusFound {
		t.Fatalf("verify expected 302, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "WrongPass1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if decodeBody(t, rec)["code"] != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials code, got %s", rec.Body.String())
	}

	rec = performRequest(env.router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "Password1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != "Login successful" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	tokens, ok := body["tokens"].(map[string]any)
	if !ok || tokens["access_token"] == "" || tokens["refresh_token"] == "" {
		t.Fatalf("expected token pair, got %v", body["tokens"])
	}
}

func TestAuthHandlerRefreshAndLogout(t *testing.T) {
	env := setupAuthEnv()
	pair, err := env.jwtSvc.GeneratePair(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	rec := performRequest(env.router, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": pair.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// La rotación revoca el refresh anterior.
	rec = performRequest(env.router, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": pair.RefreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on reused refresh, got %d", rec.Code)
	}

	pair, err = env.jwtSvc.GeneratePair(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	rec = performRequest(env.router, http.MethodPost, "/api/auth/logout", gin.H{"refresh_token": pair.RefreshToken})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = performRequest(env.router, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": pair.RefreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestAuthHandlerForgotPassword_GenericResponse(t *testing.T) {
	env := setupAuthEnv()

	rec := performRequest(env.router, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "nobody@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown email, got %d", rec.Code)
	}
	unknownBody := rec.Body.String()

	if rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", gin.H{
		"email":            "user@example.com",
		"password":         "Password1",
		"confirm_password": "Password1",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("signup expected 201, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "user@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for known email, got %d", rec.Code)
	}
	// Mismo cuerpo para cuenta existente y desconocida.
	if rec.Body.String() != unknownBody {
		t.Fatalf("expected identical bodies, got %s vs %s", rec.Body.String(), unknownBody)
	}
	if env.sender.lastResetLink == "" {
		t.Fatalf("expected reset mail dispatched for known account")
	}
}

func TestAuthHandlerResetPassword_RoundTrip(t *testing.T) {
	env := setupAuthEnv()

	if rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", gin.H{
		"email":            "user@example.com",
		"password":         "Password1",
		"confirm_password": "Password1",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("signup expected 201, got %d", rec.Code)
	}
	verifyToken := tokenFromLink(t, env.sender.lastVerifyLink)
	if rec := performRequest(env.router, http.MethodGet, "/api/auth/verify-email?token="+verifyToken, nil); rec.Code != http.StatusFound {
		t.Fatalf("verify expected 302, got %d", rec.Code)
	}
	if rec := performRequest(env.router, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "user@example.com"}); rec.Code != http.StatusOK {
		t.Fatalf("forgot expected 200, got %d", rec.Code)
	}
	resetToken := tokenFromLink(t, env.sender.lastResetLink)

	rec := performRequest(env.router, http.MethodGet, "/api/auth/reset-password?token="+resetToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected valid token probe 200, got %d", rec.Code)
	}
	if decodeBody(t, rec)["valid"] != true {
		t.Fatalf("expected valid true, got %s", rec.Body.String())
	}

	rec = performRequest(env.router, http.MethodPost, "/api/auth/reset-password", gin.H{
		"token":            resetToken,
		"password":         "NewPassword1",
		"confirm_password": "NewPassword1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Token consumido: la sonda y el segundo canje fallan.
	rec = performRequest(env.router, http.MethodGet, "/api/auth/reset-password?token="+resetToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected probe 400 after redemption, got %d", rec.Code)
	}
	rec = performRequest(env.router, http.MethodPost, "/api/auth/reset-password", gin.H{
		"token":            resetToken,
		"password":         "OtherPass1",
		"confirm_password": "OtherPass1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on reuse, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "user@example.com",
		"password": "NewPassword1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login with new password, got %d", rec.Code)
	}
}

func TestAuthHandlerResendVerification_GenericResponse(t *testing.T) {
	env := setupAuthEnv()

	rec := performRequest(env.router, http.MethodPost, "/api/auth/resend-verification", gin.H{"email": "nobody@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown email, got %d", rec.Code)
	}
	unknownBody := rec.Body.String()

	if rec := performRequest(env.router, http.MethodPost, "/api/auth/signup", gin.H{
		"email":            "user@example.com",
		"password":         "Password1",
		"confirm_password": "Password1",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("signup expected 201, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodPost, "/api/auth/resend-verification", gin.H{"email": "user@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for known email, got %d", rec.Code)
	}
	if rec.Body.String() != unknownBody {
		t.Fatalf("expected identical bodies, got %s vs %s", rec.Body.String(), unknownBody)
	}

	token := tokenFromLink(t, env.sender.lastVerifyLink)
	if rec := performRequest(env.router, http.MethodGet, "/api/auth/verify-email?token="+token, nil); rec.Code != http.StatusFound {
		t.Fatalf("verify expected 302, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodPost, "/api/auth/resend-verification", gin.H{"email": "user@example.com"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for already verified, got %d", rec.Code)
	}
}
