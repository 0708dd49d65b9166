package oauth

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
)

// Claims son los datos de identidad que entrega el proveedor federado.
type Claims struct {
	Provider      string
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// Verifier valida un ID token y devuelve los claims del proveedor.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (Claims, error)
}

var ErrTokenRejected = errors.New("oauth token rejected")

const defaultTokeninfoEndpoint = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier valida ID tokens de Google contra el endpoint tokeninfo y
// comprueba que la audiencia sea el client id propio.
type GoogleVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
}

func NewGoogleVerifier(clientID, endpoint string) *GoogleVerifier {
	if endpoint == "" {
		endpoint = defaultTokeninfoEndpoint
	}
	return &GoogleVerifier{
		clientID: clientID,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (Claims, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Claims{}, ErrTokenRejected
	}

	reqURL := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Claims{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Claims{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Claims{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Claims{}, ErrTokenRejected
	}

	var info tokeninfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return Claims{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if v.clientID == "" || info.Aud != v.clientID {
		return Claims{}, ErrTokenRejected
	}
	if info.Sub == "" {
		return Claims{}, ErrTokenRejected
	}

	return Claims{
		Provider:      "google",
		Subject:       info.Sub,
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		EmailVerified: info.EmailVerified == "true",
	}, nil
}

// tokeninfo devuelve los booleanos como strings.
type tokeninfoResponse struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
