package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pokedex-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	authH *AuthHandler,
	trainerH *TrainerHandler,
	pokemonH *PokemonHandler,
	healthCheck func(c *gin.Context) error,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		if healthCheck != nil {
			if err := healthCheck(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := JWTAuthMiddleware(jwtServ)

	auth := r.Group("/api/auth")
	auth.POST("/signup", authH.SignUp)
	auth.GET("/verify-email", authH.VerifyEmail)
	auth.POST("/resend-verification", authH.ResendVerification)
	auth.POST("/forgot-password", authH.ForgotPassword)
	auth.GET("/reset-password", authH.ValidateResetToken)
	auth.POST("/reset-password", authH.ResetPassword)
	auth.POST("/login", authH.Login)
	auth.POST("/oauth", authH.OAuthLogin)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)

	trainer := r.Group("/api/trainer")
	trainer.GET("", trainerH.ListTrainers)
	trainer.POST("", requireAuth, trainerH.SaveProfile)
	trainer.GET("/:id", trainerH.GetTrainer)
	trainer.GET("/:id/pokedex", trainerH.ListPokedex)
	trainer.POST("/:id/pokedex", requireAuth, trainerH.AddPokemon)
	trainer.DELETE("/:id/pokedex/:pokemonId", requireAuth, trainerH.RemovePokemon)

	pokemon := r.Group("/api/pokemon")
	pokemon.GET("", pokemonH.List)
	pokemon.GET("/:idOrName", pokemonH.Get)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
