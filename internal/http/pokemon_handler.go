package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pokedex-api/internal/pokeapi"
)

// PokemonHandler expone el catálogo de pokemon servido desde la API pública.
type PokemonHandler struct {
	logger *zap.Logger
	client pokeapi.Client
}

func NewPokemonHandler(logger *zap.Logger, client pokeapi.Client) *PokemonHandler {
	return &PokemonHandler{
		logger: logger,
		client: client,
	}
}

// List maneja GET /api/pokemon con paginación limit/offset.
func (h *PokemonHandler) List(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid offset parameter"})
			return
		}
		offset = parsed
	}

	page, err := h.client.ListPokemon(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list pokemon failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch pokemon list."})
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get maneja GET /api/pokemon/:idOrName.
func (h *PokemonHandler) Get(c *gin.Context) {
	idOrName := c.Param("idOrName")

	pokemon, err := h.client.GetPokemon(c.Request.Context(), idOrName)
	if err != nil {
		if errors.Is(err, pokeapi.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Pokemon not found"})
			return
		}
		h.logger.Error("get pokemon failed", zap.String("idOrName", idOrName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch pokemon."})
		return
	}
	c.JSON(http.StatusOK, pokemon)
}
