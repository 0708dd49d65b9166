package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pokedex-api/internal/domain"
	"pokedex-api/internal/service"
)

// TrainerHandler mantiene dependencias para endpoints de entrenadores.
type TrainerHandler struct {
	logger      *zap.Logger
	trainerServ *service.TrainerService
}

func NewTrainerHandler(logger *zap.Logger, trainerServ *service.TrainerService) *TrainerHandler {
	return &TrainerHandler{
		logger:      logger,
		trainerServ: trainerServ,
	}
}

// ListTrainers maneja GET /api/trainer.
func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	trainers, err := h.trainerServ.ListTrainers(c.Request.Context())
	if err != nil {
		h.logger.Error("list trainers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An internal server error occurred."})
		return
	}
	if trainers == nil {
		trainers = []domain.Trainer{}
	}
	c.JSON(http.StatusOK, trainers)
}

// GetTrainer maneja GET /api/trainer/:id.
func (h *TrainerHandler) GetTrainer(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Invalid trainer ID format: %q", id)})
		return
	}

	trainer, err := h.trainerServ.GetTrainer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTrainerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Trainer with ID %q not found.", id)})
			return
		}
		h.logger.Error("get trainer failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An internal server error occurred."})
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// SaveProfile maneja POST /api/trainer: crea o actualiza el perfil del usuario
// autenticado.
func (h *TrainerHandler) SaveProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	var req struct {
		Name   string `json:"name" binding:"required"`
		Age    string `json:"age" binding:"required"`
		Region string `json:"region" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form data", "errors": fieldErrors(err)})
		return
	}

	trainer, err := h.trainerServ.SaveProfile(c.Request.Context(), claims.UserID, service.ProfileInput{
		Name:   req.Name,
		Age:    req.Age,
		Region: req.Region,
	})
	if err != nil {
		h.logger.Error("save trainer profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An internal server error occurred."})
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// ListPokedex maneja GET /api/trainer/:id/pokedex.
func (h *TrainerHandler) ListPokedex(c *gin.Context) {
	entries, err := h.trainerServ.ListPokedex(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("list pokedex failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An internal server error occurred."})
		return
	}
	if entries == nil {
		entries = []domain.TrainerPokemon{}
	}
	c.JSON(http.StatusOK, entries)
}

// AddPokemon maneja POST /api/trainer/:id/pokedex. El alta se hace contra el
// entrenador de la sesión, no contra el id del path.
func (h *TrainerHandler) AddPokemon(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}
	if claims.TrainerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No trainer profile for this session. Save your trainer profile first."})
		return
	}

	var req struct {
		PokemonID   int    `json:"pokemon_id" binding:"required"`
		PokemonName string `json:"pokemon_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid form data", "errors": fieldErrors(err)})
		return
	}

	entry, err := h.trainerServ.AddPokemon(c.Request.Context(), claims.TrainerID, req.PokemonID, req.PokemonName)
	if err != nil {
		h.logger.Error("add pokemon failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An internal server error occurred."})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemovePokemon maneja DELETE /api/trainer/:id/pokedex/:pokemonId.
func (h *TrainerHandler) RemovePokemon(c *gin.Context) {
	trainerID := c.Param("id")
	pokemonID, err := strconv.Atoi(c.Param("pokemonId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid pokemon ID"})
		return
	}

	if err := h.trainerServ.RemovePokemon(c.Request.Context(), trainerID, pokemonID); err != nil {
		if errors.Is(err, service.ErrPokemonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": fmt.Sprintf("Pokemon with ID %d for Trainer %q not found to delete.", pokemonID, trainerID),
			})
			return
		}
		h.logger.Error("remove pokemon failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An internal server error occurred."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully deleted pokemon %d for trainer %s.", pokemonID, trainerID),
	})
}
