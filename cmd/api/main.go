package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"pokedex-api/internal/config"
	"pokedex-api/internal/db"
	"pokedex-api/internal/email"
	apihttp "pokedex-api/internal/http"
	"pokedex-api/internal/oauth"
	"pokedex-api/internal/pokeapi"
	"pokedex-api/internal/repository"
	"pokedex-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	trainerRepo := repository.NewPgTrainerRepository(pool)
	pokedexRepo := repository.NewPgTrainerPokemonRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		issuanceLimiter service.RateLimiter
		tokenStore      service.RefreshTokenStore
		detailCache     pokeapi.DetailCache
		redisClient     *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			issuanceLimiter = service.NewRedisIssuanceRateLimiter(redisClient, 10*time.Minute, 3)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			detailCache = pokeapi.NewRedisDetailCache(redisClient)
		}
		cancel()
	}
	if detailCache == nil {
		detailCache = pokeapi.NewMemoryDetailCache()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	var googleVerifier oauth.Verifier
	if cfg.GoogleClientID != "" {
		googleVerifier = oauth.NewGoogleVerifier(cfg.GoogleClientID, "")
	} else {
		logger.Warn("google client id not configured, oauth login disabled")
	}

	authSvc := service.NewAuthService(logger, userRepo, trainerRepo, emailSender, googleVerifier, issuanceLimiter, cfg.AppURL, cfg.BcryptCost)
	trainerSvc := service.NewTrainerService(logger, trainerRepo, pokedexRepo, userRepo)
	pokeClient := pokeapi.NewCachingClient(pokeapi.NewHTTPClient(cfg.PokeAPIBaseURL, logger), detailCache)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, jwtSvc, cfg.AppURL)
	trainerHandler := apihttp.NewTrainerHandler(logger, trainerSvc)
	pokemonHandler := apihttp.NewPokemonHandler(logger, pokeClient)

	router := apihttp.NewRouter(logger, jwtSvc, authHandler, trainerHandler, pokemonHandler, func(c *gin.Context) error {
		return db.Ping(c.Request.Context(), pool)
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
