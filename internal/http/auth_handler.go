package http

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pokedex-api/internal/domain"
	"pokedex-api/internal/service"
)

// AuthHandler mantiene dependencias para endpoints de autenticación.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	jwtServ  *service.JWTService
	appURL   string
}

func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, jwtServ *service.JWTService, appURL string) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		jwtServ:  jwtServ,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// SignUp maneja POST /api/auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": fieldErrors(err)})
		return
	}
	if errs := credentialErrors(req.Password, req.ConfirmPassword); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": errs})
		return
	}

	_, emailSent, err := h.authServ.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "User with this email already exists"})
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if !emailSent {
		c.JSON(http.StatusCreated, gin.H{
			"message":     "Account created, but we encountered an issue sending your verification email. Please try logging in and request a new verification email if needed.",
			"userCreated": true,
			"emailSent":   false,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "User created successfully. Please check your email to verify your account.",
		"userCreated": true,
		"emailSent":   true,
	})
}

// VerifyEmail maneja GET /api/auth/verify-email. Responde siempre con un
// redirect hacia la aplicación.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		c.Redirect(http.StatusFound, h.appURL+"/verification-failed?reason=missing_token")
		return
	}

	_, err := h.authServ.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			c.Redirect(http.StatusFound, h.appURL+"/verification-failed?reason=invalid_or_expired_token")
			return
		}
		h.logger.Error("verify email failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.appURL+"/verification-failed?reason=server_error")
		return
	}

	c.Redirect(http.StatusFound, h.appURL+"/?verified=true")
}

// ResendVerification maneja POST /api/auth/resend-verification.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": fieldErrors(err)})
		return
	}

	err := h.authServ.ResendVerification(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		// Mismo cuerpo exista o no la cuenta.
		c.JSON(http.StatusOK, gin.H{
			"message": "If an account exists for this email and it's not verified, a new verification email has been sent.",
		})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests. Please try again later."})
	case errors.Is(err, service.ErrAlreadyVerified):
		c.JSON(http.StatusBadRequest, gin.H{"message": "This email address has already been verified."})
	case errors.Is(err, service.ErrEmailSendFailure):
		c.JSON(http.StatusInternalServerError, gin.H{"message": "There was an issue sending the email. Please try again shortly."})
	default:
		h.logger.Error("resend verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
	}
}

// ForgotPassword maneja POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": fieldErrors(err)})
		return
	}

	err := h.authServ.ForgotPassword(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		// Mismo cuerpo exista o no la cuenta.
		c.JSON(http.StatusOK, gin.H{
			"message": "If an account with that email exists, you will receive a password reset link.",
		})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests. Please try again later."})
	case errors.Is(err, service.ErrNoPassword):
		c.JSON(http.StatusBadRequest, gin.H{"message": "This account uses social login. Please sign in with your social provider."})
	case errors.Is(err, service.ErrEmailSendFailure):
		c.JSON(http.StatusInternalServerError, gin.H{"message": "There was an error sending the password reset email. Please try again later."})
	default:
		h.logger.Error("forgot password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
	}
}

// ResetPassword maneja POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token           string `json:"token" binding:"required"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": fieldErrors(err)})
		return
	}
	if errs := credentialErrors(req.Password, req.ConfirmPassword); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": errs})
		return
	}

	_, err := h.authServ.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired reset token. Please request a new password reset link."})
			return
		}
		h.logger.Error("reset password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully. You can now sign in with your new password."})
}

// ValidateResetToken maneja GET /api/auth/reset-password como sonda de validez.
func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Reset token is required", "valid": false})
		return
	}

	if err := h.authServ.ValidateResetToken(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired reset token", "valid": false})
			return
		}
		h.logger.Error("validate reset token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error", "valid": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Valid reset token", "valid": true})
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": fieldErrors(err)})
		return
	}

	user, err := h.authServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotVerified):
			// Caso distinguido para que el cliente ofrezca el reenvío.
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Email not verified. Please check your inbox or request a new verification email.",
				"code":    "email_not_verified",
			})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid credentials",
				"code":    "invalid_credentials",
			})
		default:
			h.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		}
		return
	}

	h.respondWithTokens(c, user)
}

// OAuthLogin maneja POST /api/auth/oauth.
func (h *AuthHandler) OAuthLogin(c *gin.Context) {
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": fieldErrors(err)})
		return
	}

	user, err := h.authServ.OAuthLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrOAuthInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid OAuth token"})
			return
		}
		h.logger.Error("oauth login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	h.respondWithTokens(c, user)
}

// Refresh maneja POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": fieldErrors(err)})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "jwt not configured"})
		return
	}
	tokens, err := h.jwtServ.RefreshPair(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token refreshed", "tokens": tokens})
}

// Logout maneja POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input", "errors": fieldErrors(err)})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "jwt not configured"})
		return
	}
	_ = h.jwtServ.RevokeRefresh(req.RefreshToken)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) respondWithTokens(c *gin.Context, user domain.User) {
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "jwt not configured"})
		return
	}
	tokens, err := h.jwtServ.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user, "tokens": tokens})
}

// fieldErrors traduce errores de binding a mensajes por campo.
func fieldErrors(err error) map[string][]string {
	out := make(map[string][]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = []string{"Malformed request body"}
		return out
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = append(out[field], "This field is required")
		case "email":
			out[field] = append(out[field], "Invalid email address")
		default:
			out[field] = append(out[field], "Invalid value")
		}
	}
	return out
}

// credentialErrors aplica la política de contraseñas y el chequeo de confirmación.
func credentialErrors(password, confirm string) map[string][]string {
	out := make(map[string][]string)
	if len(password) < 8 {
		out["password"] = append(out["password"], "Password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		out["password"] = append(out["password"], "Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	if password != confirm {
		out["confirm_password"] = append(out["confirm_password"], "Passwords do not match")
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
