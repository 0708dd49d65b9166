package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client define la interfaz para consultar el catálogo público de Pokémon.
type Client interface {
	ListPokemon(ctx context.Context, limit, offset int) (Page, error)
	GetPokemon(ctx context.Context, idOrName string) (Pokemon, error)
}

var ErrNotFound = errors.New("pokemon not found")

type Ref struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Page struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []Ref   `json:"results"`
}

type Pokemon struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
	Types []struct {
		Slot int `json:"slot"`
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
}

// HTTPClient implementa Client contra la API REST pública.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://pokeapi.co/api/v2"
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (c *HTTPClient) ListPokemon(ctx context.Context, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	endpoint := fmt.Sprintf("%s/pokemon?limit=%d&offset=%d", c.baseURL, limit, offset)

	var page Page
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (c *HTTPClient) GetPokemon(ctx context.Context, idOrName string) (Pokemon, error) {
	idOrName = strings.ToLower(strings.TrimSpace(idOrName))
	if idOrName == "" {
		return Pokemon{}, ErrNotFound
	}
	endpoint := c.baseURL + "/pokemon/" + url.PathEscape(idOrName)

	var p Pokemon
	if err := c.getJSON(ctx, endpoint, &p); err != nil {
		return Pokemon{}, err
	}
	return p, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("pokeapi error",
				zap.Int("status", resp.StatusCode),
				zap.String("endpoint", endpoint),
			)
		}
		return fmt.Errorf("pokeapi http error: status=%d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
